// Package tgs implements Kerberos v5 TGS-exchange orchestration: turning an
// initial ticket-granting ticket into a service ticket for a named service
// principal, across realms, referrals, and S4U delegation.
//
// The engine never touches ASN.1, a crypto package, or net — it drives the
// protocol state machine and calls out to a KDCSender for each round trip.
// Package kdcclient provides a concrete KDCSender built on the wire codec,
// crypto, and transport collaborators.
package tgs

import (
	"context"
	"time"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

// KDCOptions is the Kerberos KDC-OPTIONS bit set. Only the bits the core
// cares about are named; everything else is opaque and passed through.
type KDCOptions uint32

const (
	OptForwardable    KDCOptions = 1 << 30 // bit 1
	OptProxiable      KDCOptions = 1 << 28 // bit 3
	OptCanonicalize   KDCOptions = 1 << 16 // bit 15
	OptCnameInAddlTkt KDCOptions = 1 << 14 // bit 17
	OptRenewable      KDCOptions = 1 << 23 // bit 8
	OptEncTktInSkey   KDCOptions = 1 << 3  // bit 28
)

// Has reports whether all bits in mask are set in o.
func (o KDCOptions) Has(mask KDCOptions) bool { return o&mask == mask }

// With returns o with mask's bits set.
func (o KDCOptions) With(mask KDCOptions) KDCOptions { return o | mask }

// Flags are the ticket flags carried on an issued credential. Only the
// flags the spec's invariants reference are named.
type Flags struct {
	Forwardable  bool
	OkAsDelegate bool
}

// Ticket is an opaque, already-encoded Kerberos ticket. The core never
// inspects its bytes; it is handed back to a KDCSender verbatim (e.g. as an
// additional-ticket for S4U2proxy).
type Ticket struct {
	Realm   principal.Realm
	SName   principal.Name
	Payload []byte
}

// PAData is a single pre-authentication element: (type, opaque bytes).
type PAData struct {
	Type  int32
	Value []byte
}

// PA-DATA type tags the core constructs directly.
const (
	PADataForUser = 129 // PA-FOR-USER, MS-SFU S4U2self payload
)

// Credential is a decoded Kerberos credential: a ticket plus its associated
// session information, as returned by a successful TGS exchange.
type Credential struct {
	Client      principal.Name
	ClientAlias principal.Name // may be zero-value when the KDC did not rewrite the client
	Server      principal.Name
	SessionKey  []byte
	EType       int32 // encryption type the session key was issued under (RFC 3961 etype number)
	Flags       Flags
	StartTime   time.Time
	EndTime     time.Time
	TicketBytes []byte
	Ticket      Ticket
}

// IsTGT reports whether this credential is a ticket-granting ticket (its
// server names krbtgt/X).
func (c Credential) IsTGT() bool { return c.Server.IsTGT() }

// TargetRealm returns the realm a TGT credential grants access to.
func (c Credential) TargetRealm() principal.Realm { return c.Server.TargetRealm() }

// Forwardable reports the credential's FORWARDABLE flag.
func (c Credential) Forwardable() bool { return c.Flags.Forwardable }

// clearDelegate returns a copy of c with OkAsDelegate cleared, used when an
// aggregate delegation chain is broken by an intermediate TGT (spec
// invariant 4).
func (c Credential) clearDelegate() Credential {
	c.Flags.OkAsDelegate = false
	return c
}

// SendParams is everything C1 (the KDC exchange) needs to build one TGS-REQ.
// It mirrors §4.1's send(options, asTgt, clientName, clientAlias,
// requestedServerName, canonicalServerName, additionalTickets, extraPreauth).
type SendParams struct {
	Options             KDCOptions
	AsTGT               Credential
	ClientName          principal.Name
	ClientAlias         principal.Name
	RequestedServerName principal.Name
	CanonicalServerName principal.Name
	AdditionalTickets   []Ticket
	ExtraPreauth        []PAData
}

// KDCSender performs one TGS-REQ/TGS-REP round trip and decodes the result
// into a Credential. It is the only network-facing collaborator the core
// depends on (§4.1, §6). Implementations fail with *Error{Kind: KdcError}
// on a KDC error reply, KindIo on transport failure, and KindProtocol on a
// malformed reply — never by panicking.
type KDCSender interface {
	Send(ctx context.Context, p SendParams) (Credential, error)
}

// RealmPath resolves the ordered list of realms (including both endpoints)
// to traverse between two realms via the configured capath hierarchy (§6).
// Callers must tolerate an empty or singleton result.
type RealmPath interface {
	RealmsList(from, to principal.Realm) []principal.Realm
}

// PreauthBuilder constructs the PA-FOR-USER pre-authentication element for
// S4U2self (§4.7). Building it requires a keyed checksum over the
// impersonated name using the middle tier's session key — a cryptographic
// primitive the core deliberately does not touch (§1 Out of Scope); package
// kdcclient supplies the concrete implementation.
type PreauthBuilder interface {
	ForUser(impersonated principal.Name, middleTgtSessionKey []byte) (PAData, error)
}

// Config carries the engine-wide toggles named in §6.
type Config struct {
	ReferralsEnabled bool
	MaxReferrals     uint32
}

// DefaultConfig returns the spec's suggested default (referrals on, 5
// referrals).
func DefaultConfig() Config {
	return Config{ReferralsEnabled: true, MaxReferrals: 5}
}
