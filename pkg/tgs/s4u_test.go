package tgs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

// Scenario 6: a non-forwardable middle-tier TGT must be rejected before any
// network I/O — no PreauthBuilder is even configured, so a panic there would
// expose an ordering bug.
func TestAcquireS4U2selfRejectsNonForwardableWithoutNetworkIO(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	service := principal.New(principal.NTPrincipal, "A", "svc")
	middleTgt := Credential{Client: service, Server: principal.Krbtgt("A", "A"), Flags: Flags{Forwardable: false}}

	sender := newFakeSender()
	e := NewEngine(sender, newFakeCapath(), nil, DefaultConfig())

	_, err := e.AcquireS4U2self(context.Background(), alice, middleTgt)

	require.Error(t, err)
	kind, ok := ErrorKind(err)
	require.True(t, ok)
	assert.Equal(t, KindPreconditionViolation, kind)
	assert.Equal(t, 0, len(sender.calls))
}

func TestAcquireS4U2selfRejectsCrossRealmImpersonation(t *testing.T) {
	bob := principal.New(principal.NTPrincipal, "B", "bob")
	service := principal.New(principal.NTPrincipal, "A", "svc")
	middleTgt := Credential{Client: service, Server: principal.Krbtgt("A", "A"), Flags: Flags{Forwardable: true}}

	e := NewEngine(newFakeSender(), newFakeCapath(), nil, DefaultConfig())
	_, err := e.AcquireS4U2self(context.Background(), bob, middleTgt)

	require.Error(t, err)
	kind, ok := ErrorKind(err)
	require.True(t, ok)
	assert.Equal(t, KindUnsupportedCrossRealm, kind)
}

// P3: a successful S4U2self reply's client matches the impersonated
// principal and stays forwardable.
func TestAcquireS4U2selfSuccess(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	service := principal.New(principal.NTPrincipal, "A", "svc")
	middleTgt := Credential{
		Client:     service,
		Server:     principal.Krbtgt("A", "A"),
		SessionKey: []byte("middle-session-key"),
		Flags:      Flags{Forwardable: true},
	}

	sender := newFakeSender()
	want := Credential{Client: alice, Server: service, Flags: Flags{Forwardable: true}}
	sender.on(service, want, nil)

	e := NewEngine(sender, newFakeCapath(), nil, DefaultConfig()).
		WithPreauthBuilder(fakePreauth{data: PAData{Type: PADataForUser, Value: []byte("paforuser")}})

	got, err := e.AcquireS4U2self(context.Background(), alice, middleTgt)

	require.NoError(t, err)
	assert.True(t, got.Client.Equal(alice))
	assert.True(t, got.Forwardable())

	require.Len(t, sender.calls, 1)
	require.Len(t, sender.calls[0].ExtraPreauth, 1)
	assert.Equal(t, int32(PADataForUser), sender.calls[0].ExtraPreauth[0].Type)
}

func TestAcquireS4U2selfPropagatesPreauthBuildError(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	service := principal.New(principal.NTPrincipal, "A", "svc")
	middleTgt := Credential{Client: service, Server: principal.Krbtgt("A", "A"), Flags: Flags{Forwardable: true}}

	e := NewEngine(newFakeSender(), newFakeCapath(), nil, DefaultConfig()).
		WithPreauthBuilder(fakePreauth{err: errPreauth})

	_, err := e.AcquireS4U2self(context.Background(), alice, middleTgt)

	require.Error(t, err)
	kind, ok := ErrorKind(err)
	require.True(t, ok)
	assert.Equal(t, KindProtocol, kind)
}

// P4: a successful S4U2proxy reply's client matches the evidence ticket's
// expected client.
func TestAcquireS4U2proxySuccess(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	middle := principal.New(principal.NTPrincipal, "A", "svc")
	backend := principal.New(principal.NTSrvInst, "A", "cifs", "fileserver")
	middleTgt := Credential{Client: middle, Server: principal.Krbtgt("A", "A"), Flags: Flags{Forwardable: true}}
	evidence := Ticket{Realm: "A", SName: middle, Payload: []byte("evidence-ticket-bytes")}

	sender := newFakeSender()
	want := Credential{Client: alice, Server: backend, Flags: Flags{Forwardable: true}}
	sender.on(backend, want, nil)

	e := NewEngine(sender, newFakeCapath(), nil, DefaultConfig())
	got, err := e.AcquireS4U2proxy(context.Background(), backend, evidence, alice, middleTgt)

	require.NoError(t, err)
	assert.True(t, got.Client.Equal(alice))

	require.Len(t, sender.calls, 1)
	require.Len(t, sender.calls[0].AdditionalTickets, 1)
	assert.Equal(t, evidence, sender.calls[0].AdditionalTickets[0])
	assert.True(t, sender.calls[0].Options.Has(OptCnameInAddlTkt))
	assert.True(t, sender.calls[0].Options.Has(OptForwardable))
}

func TestAcquireS4U2proxyRejectsClientMismatch(t *testing.T) {
	alice := principal.New(principal.NTPrincipal, "A", "alice")
	mallory := principal.New(principal.NTPrincipal, "A", "mallory")
	middle := principal.New(principal.NTPrincipal, "A", "svc")
	backend := principal.New(principal.NTSrvInst, "A", "cifs", "fileserver")
	middleTgt := Credential{Client: middle, Server: principal.Krbtgt("A", "A"), Flags: Flags{Forwardable: true}}
	evidence := Ticket{Realm: "A", SName: middle, Payload: []byte("evidence-ticket-bytes")}

	sender := newFakeSender()
	sender.on(backend, Credential{Client: mallory, Server: backend}, nil)

	e := NewEngine(sender, newFakeCapath(), nil, DefaultConfig())
	_, err := e.AcquireS4U2proxy(context.Background(), backend, evidence, alice, middleTgt)

	require.Error(t, err)
	kind, ok := ErrorKind(err)
	require.True(t, ok)
	assert.Equal(t, KindKdcRefused, kind)
}
