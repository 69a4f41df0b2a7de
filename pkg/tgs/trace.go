package tgs

import (
	"log"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

// Trace receives structured, typed events describing a traversal in
// progress. It replaces the debug-print side channel the Java original uses
// (DEBUG System.out.println calls throughout CredentialsUtil); a host may
// wire it to whatever logging framework it uses. Traces are informational
// only (§6) and must never carry session-key material (§7).
type Trace interface {
	ProbeAttempt(from, to principal.Realm)
	ReferralObserved(realm principal.Realm)
	DelegateFlagCleared(at principal.Realm)
	Resolved(server principal.Name)
}

// NoopTrace discards every event. NewEngine installs it until WithTrace
// replaces it.
type NoopTrace struct{}

func (NoopTrace) ProbeAttempt(from, to principal.Realm)    {}
func (NoopTrace) ReferralObserved(realm principal.Realm)   {}
func (NoopTrace) DelegateFlagCleared(at principal.Realm)   {}
func (NoopTrace) Resolved(server principal.Name)           {}

// LogTrace adapts Trace onto a standard *log.Logger, the way the teacher's
// CLI gates its own verbose output behind a -v flag.
type LogTrace struct {
	Logger *log.Logger
}

func (t LogTrace) ProbeAttempt(from, to principal.Realm) {
	t.Logger.Printf("tgs: probing TGS for %s via %s", to, from)
}

func (t LogTrace) ReferralObserved(realm principal.Realm) {
	t.Logger.Printf("tgs: referral to realm %s", realm)
}

func (t LogTrace) DelegateFlagCleared(at principal.Realm) {
	t.Logger.Printf("tgs: ok-as-delegate cleared at realm %s", at)
}

func (t LogTrace) Resolved(server principal.Name) {
	t.Logger.Printf("tgs: resolved service credential for %s", server)
}
