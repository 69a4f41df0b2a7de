package tgs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

func TestReferralCacheGetMiss(t *testing.T) {
	c := NewReferralCache()
	_, ok := c.Get(principal.New(principal.NTPrincipal, "A.EXAMPLE", "alice"),
		principal.New(principal.NTSrvInst, "A.EXAMPLE", "host", "svc"), "A.EXAMPLE")
	assert.False(t, ok)
}

func TestReferralCachePutGetRoundTrip(t *testing.T) {
	c := NewReferralCache()
	client := principal.New(principal.NTPrincipal, "A.EXAMPLE", "alice")
	svc := principal.New(principal.NTSrvInst, "A.EXAMPLE", "host", "svc")
	cred := Credential{Server: principal.Krbtgt("B.EXAMPLE", "C.EXAMPLE")}

	c.Put(client, svc, "A.EXAMPLE", "B.EXAMPLE", cred)

	entry, ok := c.Get(client, svc, "A.EXAMPLE")
	assert.True(t, ok)
	assert.Equal(t, principal.Realm("B.EXAMPLE"), entry.ToRealm)
	assert.Equal(t, cred, entry.Credential)
}

func TestReferralCachePutIsFirstWriterWins(t *testing.T) {
	c := NewReferralCache()
	client := principal.New(principal.NTPrincipal, "A.EXAMPLE", "alice")
	svc := principal.New(principal.NTSrvInst, "A.EXAMPLE", "host", "svc")
	first := Credential{Server: principal.Krbtgt("B.EXAMPLE", "C.EXAMPLE")}
	second := Credential{Server: principal.Krbtgt("D.EXAMPLE", "C.EXAMPLE")}

	c.Put(client, svc, "A.EXAMPLE", "B.EXAMPLE", first)
	c.Put(client, svc, "A.EXAMPLE", "D.EXAMPLE", second)

	entry, ok := c.Get(client, svc, "A.EXAMPLE")
	assert.True(t, ok)
	assert.Equal(t, principal.Realm("B.EXAMPLE"), entry.ToRealm)
}
