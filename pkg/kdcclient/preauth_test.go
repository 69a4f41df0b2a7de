package kdcclient

import (
	"encoding/asn1"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdcflow/krbtgs/pkg/asn1krb5"
	"github.com/kdcflow/krbtgs/pkg/principal"
)

func TestForUserIsDeterministic(t *testing.T) {
	impersonated := principal.New(principal.NTPrincipal, "A.EXAMPLE", "alice")
	key := []byte("0123456789abcdef")

	a, err := PreauthBuilder{}.ForUser(impersonated, key)
	require.NoError(t, err)
	b, err := PreauthBuilder{}.ForUser(impersonated, key)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestForUserChecksumVariesWithSessionKey(t *testing.T) {
	impersonated := principal.New(principal.NTPrincipal, "A.EXAMPLE", "alice")

	a, err := PreauthBuilder{}.ForUser(impersonated, []byte("key-one-016-bytes"))
	require.NoError(t, err)
	b, err := PreauthBuilder{}.ForUser(impersonated, []byte("key-two-016-bytes"))
	require.NoError(t, err)

	assert.NotEqual(t, a.Value, b.Value)
}

func TestForUserEncodesExpectedPrincipalAndRealm(t *testing.T) {
	impersonated := principal.New(principal.NTPrincipal, "A.EXAMPLE", "alice")
	key := []byte("0123456789abcdef")

	paData, err := PreauthBuilder{}.ForUser(impersonated, key)
	require.NoError(t, err)
	assert.Equal(t, int32(asn1krb5.PADataForUser), paData.Type)

	var decoded asn1krb5.PAForUserValue
	_, err = asn1.Unmarshal(paData.Value, &decoded)
	require.NoError(t, err)

	assert.Equal(t, "A.EXAMPLE", decoded.UserRealm)
	assert.Equal(t, []string{"alice"}, decoded.UserName.NameString)
	assert.Equal(t, "Kerberos", decoded.AuthPackage)
	assert.Equal(t, ChecksumHMACMD5, decoded.Cksum.CksumType)
	assert.Len(t, decoded.Cksum.Checksum, 16)
}
