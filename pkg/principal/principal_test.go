package principal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKrbtgtIsTGT(t *testing.T) {
	n := Krbtgt("A.EXAMPLE", "B.EXAMPLE")
	assert.True(t, n.IsTGT())
	assert.Equal(t, Realm("B.EXAMPLE"), n.TargetRealm())
	assert.Equal(t, Realm("A.EXAMPLE"), n.Realm)
}

func TestOrdinaryPrincipalIsNotTGT(t *testing.T) {
	n := New(NTPrincipal, "A.EXAMPLE", "alice")
	assert.False(t, n.IsTGT())
	assert.Equal(t, Realm(""), n.TargetRealm())
}

func TestEqualComparesTypeRealmAndStrings(t *testing.T) {
	a := New(NTSrvInst, "A.EXAMPLE", "http", "host")
	b := New(NTSrvInst, "A.EXAMPLE", "http", "host")
	c := New(NTSrvInst, "A.EXAMPLE", "http", "other")
	d := New(NTSrvInst, "B.EXAMPLE", "http", "host")
	e := New(NTPrincipal, "A.EXAMPLE", "http", "host")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.False(t, a.Equal(e))
}

func TestWithRealmPreservesNameStrings(t *testing.T) {
	orig := New(NTSrvInst, "A.EXAMPLE", "http", "host")
	moved := orig.WithRealm("B.EXAMPLE")

	assert.Equal(t, Realm("B.EXAMPLE"), moved.Realm)
	assert.Equal(t, orig.NameString, moved.NameString)
	assert.Equal(t, Realm("A.EXAMPLE"), orig.Realm, "WithRealm must not mutate the receiver")
}

func TestStringRendersSlashSeparatedNameAtRealm(t *testing.T) {
	n := New(NTSrvInst, "A.EXAMPLE", "http", "host")
	assert.Equal(t, "http/host@A.EXAMPLE", n.String())
}
