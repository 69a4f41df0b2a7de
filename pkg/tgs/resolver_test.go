package tgs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

// Cross-realm direct resolution: C3 pre-fetches a cross-realm TGT via C4,
// then uses it for the actual service request.
func TestResolveOneCrossRealm(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	svcB := principal.New(principal.NTSrvInst, "B", "http", "host")
	tgt := newInitialTGT(alice, "A")

	capath := newFakeCapath()
	capath.set("A", "B", []principal.Realm{"A", "B"})

	sender := newFakeSender()
	sender.on(principal.Krbtgt("A", "B"), crossRealmTGT(alice, "A", "B", true), nil)
	want := Credential{Client: alice, Server: svcB, Flags: Flags{Forwardable: true, OkAsDelegate: true}}
	sender.on(svcB, want, nil)

	e := NewEngine(sender, capath, nil, DefaultConfig())
	got, err := e.resolveOne(context.Background(), 0, tgt, alice, principal.Name{}, svcB, svcB, nil, nil)

	require.NoError(t, err)
	assert.True(t, got.Server.Equal(svcB))
	assert.Equal(t, 2, len(sender.calls))
}

// Scenario 4: ok-as-delegate cleared by an intermediate hop propagates onto
// the final returned credential, without NoServiceCreds being raised.
func TestResolveOneClearsDelegateFromCapath(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	svcB := principal.New(principal.NTSrvInst, "B", "http", "host")
	tgt := newInitialTGT(alice, "A")

	capath := newFakeCapath()
	capath.set("A", "B", []principal.Realm{"A", "C", "B"})

	sender := newFakeSender()
	sender.on(principal.Krbtgt("A", "B"), crossRealmTGT(alice, "A", "C", true), nil)
	sender.on(principal.Krbtgt("C", "B"), crossRealmTGT(alice, "C", "B", false), nil)
	want := Credential{Client: alice, Server: svcB, Flags: Flags{Forwardable: true, OkAsDelegate: true}}
	sender.on(svcB, want, nil)

	e := NewEngine(sender, capath, nil, DefaultConfig())
	got, err := e.resolveOne(context.Background(), 0, tgt, alice, principal.Name{}, svcB, svcB, nil, nil)

	require.NoError(t, err)
	assert.False(t, got.Flags.OkAsDelegate)
}

// When C4 cannot reach the service realm at all, C3 fails with
// NoServiceCreds rather than attempting the service request anyway.
func TestResolveOneFailsWithNoServiceCredsWhenCapathExhausted(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	svcZ := principal.New(principal.NTSrvInst, "Z", "http", "host")
	tgt := newInitialTGT(alice, "A")

	e := NewEngine(newFakeSender(), newFakeCapath(), nil, DefaultConfig())
	_, err := e.resolveOne(context.Background(), 0, tgt, alice, principal.Name{}, svcZ, svcZ, nil, nil)

	require.Error(t, err)
	kind, ok := ErrorKind(err)
	require.True(t, ok)
	assert.Equal(t, KindNoServiceCreds, kind)
}
