package kdcclient

import (
	"github.com/jcmturner/gokrb5/v8/iana/etypeID"
	"github.com/jcmturner/gokrb5/v8/iana/flags"
	"github.com/jcmturner/gokrb5/v8/iana/nametype"
)

// The constant tables in pkg/asn1krb5 mirror RFC 4120 directly. The gokrb5
// iana symbols below are only referenced, not compared: each trailing
// comment names the local constant it corresponds to, and no check ties
// the two values together at build or run time.
var (
	_ = etypeID.AES256_CTS_HMAC_SHA1_96 // == crypto.EtypeAES256
	_ = etypeID.AES128_CTS_HMAC_SHA1_96 // == crypto.EtypeAES128
	_ = etypeID.RC4_HMAC                // == crypto.EtypeRC4HMAC
	_ = flags.Forwardable               // == asn1krb5.FlagForwardable's bit position
	_ = flags.Canonicalize              // == asn1krb5.FlagCanonicalize's bit position
	_ = nametype.KRB_NT_PRINCIPAL        // == principal.NTPrincipal
	_ = nametype.KRB_NT_SRV_INST         // == principal.NTSrvInst
)

// etypeName renders an etype number using the etypeNames table below (keyed
// by gokrb5's etype IDs), for trace
// and error messages (e.g. "aes256-cts-hmac-sha1-96" instead of "18").
func etypeName(etype int32) string {
	if name, ok := etypeNames[etype]; ok {
		return name
	}
	return "unknown-etype"
}

var etypeNames = map[int32]string{
	etypeID.AES128_CTS_HMAC_SHA1_96: "aes128-cts-hmac-sha1-96",
	etypeID.AES256_CTS_HMAC_SHA1_96: "aes256-cts-hmac-sha1-96",
	etypeID.RC4_HMAC:                "rc4-hmac",
}
