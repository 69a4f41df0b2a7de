package kdcclient

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/asn1"
	"encoding/binary"

	"github.com/kdcflow/krbtgs/pkg/asn1krb5"
	"github.com/kdcflow/krbtgs/pkg/principal"
	"github.com/kdcflow/krbtgs/pkg/tgs"
)

// ChecksumHMACMD5 is cksumtype -138 (KERB_CHECKSUM_HMAC_MD5), the type
// MS-SFU mandates for PA-FOR-USER.
const ChecksumHMACMD5 int32 = -138

// checksumKeyUsage is the key-usage value MS-SFU specifies for the
// PA-FOR-USER checksum (RFC 4757's Ksign derivation, usage 17).
const checksumKeyUsage = 17

// PreauthBuilder builds PA-FOR-USER for S4U2self. It implements
// tgs.PreauthBuilder.
type PreauthBuilder struct{}

// ForUser builds the PA-FOR-USER element (MS-SFU 2.2.1): the impersonated
// principal plus a keyed checksum over (name-type, username, realm,
// "Kerberos") proving the middle tier holds middleTgtSessionKey.
func (PreauthBuilder) ForUser(impersonated principal.Name, middleTgtSessionKey []byte) (tgs.PAData, error) {
	checksumData := buildForUserChecksumData(impersonated)
	cksum := hmacMD5KerberosSignature(middleTgtSessionKey, checksumData, checksumKeyUsage)

	value := asn1krb5.PAForUserValue{
		UserName:    asn1krb5.PrincipalName{NameType: impersonated.NameType, NameString: impersonated.NameString},
		UserRealm:   string(impersonated.Realm),
		Cksum:       asn1krb5.Checksum{CksumType: ChecksumHMACMD5, Checksum: cksum},
		AuthPackage: "Kerberos",
	}

	encoded, err := asn1.Marshal(value)
	if err != nil {
		return tgs.PAData{}, err
	}
	return tgs.PAData{Type: asn1krb5.PADataForUser, Value: encoded}, nil
}

// buildForUserChecksumData lays out the bytes MS-SFU checksums: a 4-byte
// little-endian name-type followed by the username, realm, and the literal
// "Kerberos" auth-package name, all concatenated without length prefixes.
func buildForUserChecksumData(impersonated principal.Name) []byte {
	var data []byte
	nameType := make([]byte, 4)
	binary.LittleEndian.PutUint32(nameType, uint32(impersonated.NameType))
	data = append(data, nameType...)
	for _, part := range impersonated.NameString {
		data = append(data, []byte(part)...)
	}
	data = append(data, []byte(impersonated.Realm)...)
	data = append(data, []byte("Kerberos")...)
	return data
}

// hmacMD5KerberosSignature computes the RFC 4757 keyed checksum used
// throughout RC4-HMAC Kerberos (Ksign = HMAC-MD5(key, "signaturekey\x00");
// checksum = HMAC-MD5(Ksign, MD5(usage-LE32 || data))).
func hmacMD5KerberosSignature(key, data []byte, usage int) []byte {
	ksignMac := hmac.New(md5.New, key)
	ksignMac.Write([]byte("signaturekey\x00"))
	ksign := ksignMac.Sum(nil)

	usageBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(usageBytes, uint32(usage))
	tmp := md5.New()
	tmp.Write(usageBytes)
	tmp.Write(data)
	digest := tmp.Sum(nil)

	out := hmac.New(md5.New, ksign)
	out.Write(digest)
	return out.Sum(nil)
}
