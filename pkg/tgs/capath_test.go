package tgs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

func crossRealmTGT(client principal.Name, from, to principal.Realm, okAsDelegate bool) Credential {
	return Credential{Client: client, Server: principal.Krbtgt(from, to), Flags: Flags{Forwardable: true, OkAsDelegate: okAsDelegate}}
}

// Edge case in §4.4: an empty or singleton realms list never enters the
// traversal loop and reports "not reached" without any KDC call.
func TestTgtForRealmEmptyRealmsListNeverReached(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	tgt := newInitialTGT(alice, "A")

	sender := newFakeSender()
	e := NewEngine(sender, newFakeCapath(), nil, DefaultConfig())

	_, ok, err := e.tgtForRealm(context.Background(), "A", "Z", tgt)
	assert.True(t, ok) // okAsDelegate default, unrelated to reachability
	assert.ErrorIs(t, err, ErrNotReached)
	assert.Equal(t, 0, len(sender.calls))
}

// P6: a multi-hop capath (A -> C -> B) is walked strictly in the configured
// order; the traverser never asks a realm outside realmsList's output.
func TestTgtForRealmMultiHop(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	tgt := newInitialTGT(alice, "A")

	capath := newFakeCapath()
	capath.set("A", "B", []principal.Realm{"A", "C", "B"})

	sender := newFakeSender()
	sender.on(principal.Krbtgt("A", "B"), crossRealmTGT(alice, "A", "C", true), nil)
	sender.on(principal.Krbtgt("C", "B"), crossRealmTGT(alice, "C", "B", true), nil)

	e := NewEngine(sender, capath, nil, DefaultConfig())
	got, delegate, err := e.tgtForRealm(context.Background(), "A", "B", tgt)

	require.NoError(t, err)
	assert.True(t, delegate)
	assert.Equal(t, principal.Realm("B"), got.TargetRealm())

	for _, call := range sender.calls {
		assert.Contains(t, []principal.Realm{"A", "C", "B"}, call.RequestedServerName.Realm)
	}
}

// Scenario 4: referrals disabled, path A -> C -> B, intermediate TGT C -> B
// has ok-as-delegate=false. The aggregate flag must come back false without
// the traversal itself failing.
func TestTgtForRealmAggregatesOkAsDelegateFalse(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	tgt := newInitialTGT(alice, "A")

	capath := newFakeCapath()
	capath.set("A", "B", []principal.Realm{"A", "C", "B"})

	sender := newFakeSender()
	sender.on(principal.Krbtgt("A", "B"), crossRealmTGT(alice, "A", "C", true), nil)
	sender.on(principal.Krbtgt("C", "B"), crossRealmTGT(alice, "C", "B", false), nil)

	e := NewEngine(sender, capath, nil, DefaultConfig())
	_, delegate, err := e.tgtForRealm(context.Background(), "A", "B", tgt)

	require.NoError(t, err)
	assert.False(t, delegate)
}

// The inner fallback scan tries other reachable hops left-to-right before
// giving up on a realm that refuses the direct probe.
func TestTgtForRealmInnerFallbackScan(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	tgt := newInitialTGT(alice, "A")

	capath := newFakeCapath()
	capath.set("A", "B", []principal.Realm{"A", "C", "D", "B"})

	sender := newFakeSender()
	// A cannot issue krbtgt/B directly nor krbtgt/C; it can issue krbtgt/D.
	sender.on(principal.Krbtgt("A", "D"), crossRealmTGT(alice, "A", "D", true), nil)
	sender.on(principal.Krbtgt("D", "B"), crossRealmTGT(alice, "D", "B", true), nil)

	e := NewEngine(sender, capath, nil, DefaultConfig())
	got, _, err := e.tgtForRealm(context.Background(), "A", "B", tgt)

	require.NoError(t, err)
	assert.Equal(t, principal.Realm("B"), got.TargetRealm())
}
