package tgs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

// A referral TGT: server is krbtgt/to@from, which is exactly how the KDC
// signals "try again in this other realm" per RFC 6806.
func referralCred(client principal.Name, from, to principal.Realm) Credential {
	return Credential{Client: client, Server: principal.Krbtgt(from, to), Flags: Flags{Forwardable: true, OkAsDelegate: true}}
}

// Two-hop referral chasing: KDC-A's direct reply for the service is itself a
// referral TGT into realm B; the follower re-sends the (realm-rewritten)
// request to KDC-B and gets the service ticket back. Exercises C5's
// referral-detection branch and its one referral-cache write.
func TestResolveReferralsChasesOneReferral(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	svc := principal.New(principal.NTSrvInst, "A", "http", "host")
	tgt := newInitialTGT(alice, "A")

	sender := newFakeSender()
	sender.on(svc, referralCred(alice, "A", "B"), nil)
	svcInB := svc.WithRealm("B")
	want := Credential{Client: alice, Server: svcInB, Flags: Flags{Forwardable: true, OkAsDelegate: true}}
	sender.on(svcInB, want, nil)

	e := NewEngine(sender, newFakeCapath(), nil, DefaultConfig())
	got, err := e.resolveReferrals(context.Background(), 0, tgt, alice, svc, nil, nil)

	require.NoError(t, err)
	assert.True(t, got.Server.Equal(svcInB))
	assert.Equal(t, 2, len(sender.calls))

	entry, ok := e.cache.Get(alice, svc, "A")
	require.True(t, ok)
	assert.Equal(t, principal.Realm("B"), entry.ToRealm)
}

// Scenario 3: KDC-A refers to B, KDC-B refers back to A. Back in A, the
// referral cache steers the follower to B again, a realm it already
// visited, so the follower must fail with ReferralLoop and must not return
// a partial credential.
func TestResolveReferralsLoopDetected(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	svc := principal.New(principal.NTSrvInst, "A", "http", "host")
	tgt := newInitialTGT(alice, "A")

	sender := newFakeSender()
	sender.on(svc, referralCred(alice, "A", "B"), nil)
	sender.on(svc.WithRealm("B"), referralCred(alice, "B", "A"), nil)

	e := NewEngine(sender, newFakeCapath(), nil, DefaultConfig())
	got, err := e.resolveReferrals(context.Background(), 0, tgt, alice, svc, nil, nil)

	require.Error(t, err)
	kind, ok := ErrorKind(err)
	require.True(t, ok)
	assert.Equal(t, KindReferralLoop, kind)
	assert.Equal(t, Credential{}, got)
}

// P5: the follower never makes more than MaxReferrals+1 round trips and
// never revisits a realm, even chasing an endless chain of distinct
// referrals.
func TestResolveReferralsBoundedByMaxReferrals(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	svc := principal.New(principal.NTSrvInst, "A", "http", "host")
	tgt := newInitialTGT(alice, "A")

	chain := []principal.Realm{"A", "B", "C", "D", "E", "F", "G", "H"}
	sender := newFakeSender()
	for i := 0; i < len(chain)-1; i++ {
		sender.on(svc.WithRealm(chain[i]), referralCred(alice, chain[i], chain[i+1]), nil)
	}

	cfg := Config{ReferralsEnabled: true, MaxReferrals: 3}
	e := NewEngine(sender, newFakeCapath(), nil, cfg)
	_, err := e.resolveReferrals(context.Background(), 0, tgt, alice, svc, nil, nil)

	require.NoError(t, err)
	assert.LessOrEqual(t, len(sender.calls), int(cfg.MaxReferrals)+1)
}

// A referral already in the cache is followed without asking KDC-A again:
// only the request to B reaches the sender.
func TestResolveReferralsCacheHitSkipsRedundantKdcCall(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	svc := principal.New(principal.NTSrvInst, "A", "http", "host")
	tgt := newInitialTGT(alice, "A")

	cache := NewReferralCache()
	referral := referralCred(alice, "A", "B")
	cache.Put(alice, svc, "A", "B", referral)

	sender := newFakeSender()
	svcInB := svc.WithRealm("B")
	want := Credential{Client: alice, Server: svcInB, Flags: Flags{Forwardable: true}}
	sender.on(svcInB, want, nil)

	e := NewEngine(sender, newFakeCapath(), cache, DefaultConfig())
	got, err := e.resolveReferrals(context.Background(), 0, tgt, alice, svc, nil, nil)

	require.NoError(t, err)
	assert.True(t, got.Server.Equal(svcInB))
	// The first hop was served from cache; only the second KDC round trip
	// actually went over the wire.
	assert.Equal(t, 1, len(sender.calls))
}
