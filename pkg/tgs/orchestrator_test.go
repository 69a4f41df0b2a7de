package tgs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

func newInitialTGT(client principal.Name, realm principal.Realm) Credential {
	return Credential{
		Client: client,
		Server: principal.Krbtgt(realm, realm),
		Flags:  Flags{Forwardable: true, OkAsDelegate: true},
	}
}

// Scenario 1: same-realm direct request.
func TestAcquireServiceSameRealmDirect(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	svc := principal.New(principal.NTSrvInst, "A", "http", "host")
	tgt := newInitialTGT(alice, "A")

	sender := newFakeSender()
	want := Credential{Client: alice, Server: svc, Flags: Flags{Forwardable: true, OkAsDelegate: true}}
	sender.on(svc, want, nil)

	e := NewEngine(sender, newFakeCapath(), nil, DefaultConfig())
	got, err := e.AcquireService(context.Background(), svc, tgt)

	require.NoError(t, err)
	assert.True(t, got.Server.Equal(svc))
	assert.Equal(t, 1, len(sender.calls))
}

// Scenario 5: legacy KDC rejects CANONICALIZE; C6 falls back to a direct
// request with empty options.
func TestAcquireServiceFallsBackOnKdcError(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	svc := principal.New(principal.NTSrvInst, "A", "http", "host")
	tgt := newInitialTGT(alice, "A")

	sender := newFakeSender()
	// First call (via resolveReferrals, CANONICALIZE set) fails.
	sender.on(svc, Credential{}, newErr(KindKdcError, "KDC_ERR_C_PRINCIPAL_UNKNOWN"))
	// Fallback direct request succeeds.
	want := Credential{Client: alice, Server: svc, Flags: Flags{Forwardable: true}}
	sender.on(svc, want, nil)

	e := NewEngine(sender, newFakeCapath(), nil, DefaultConfig())
	got, err := e.AcquireService(context.Background(), svc, tgt)

	require.NoError(t, err)
	assert.True(t, got.Server.Equal(svc))
	assert.Equal(t, 2, len(sender.calls))
}

// A transport-level (non-KDC) error must propagate without a fallback retry.
func TestAcquireServiceDoesNotFallBackOnTransportError(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	svc := principal.New(principal.NTSrvInst, "A", "http", "host")
	tgt := newInitialTGT(alice, "A")

	sender := newFakeSender()
	sender.on(svc, Credential{}, newErr(KindIo, "connection reset"))

	e := NewEngine(sender, newFakeCapath(), nil, DefaultConfig())
	_, err := e.AcquireService(context.Background(), svc, tgt)

	require.Error(t, err)
	kind, ok := ErrorKind(err)
	require.True(t, ok)
	assert.Equal(t, KindIo, kind)
	assert.Equal(t, 1, len(sender.calls))
}
