package tgs

import (
	"context"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

// tgtForRealm walks the configured realm hierarchy to obtain a TGT in
// serviceRealm, starting from startingTgt (valid in localRealm), per §4.4.
// It never raises an error itself: KDC and transport errors from individual
// probes are swallowed and treated as "no path here" (§4.4, §7), letting
// alternative hops in the hierarchy be tried. The bool result is the
// aggregate ok-as-delegate flag across every intermediate TGT used.
func (e *Engine) tgtForRealm(ctx context.Context, localRealm, serviceRealm principal.Realm, startingTgt Credential) (Credential, bool, error) {
	realms := e.realms.RealmsList(localRealm, serviceRealm)
	if len(realms) < 2 {
		return Credential{}, true, ErrNotReached
	}

	okAsDelegate := true
	cTgt := startingTgt
	i := 0

	for i < len(realms) {
		e.trace.ProbeAttempt(realms[i], serviceRealm)

		tgsName := principal.Krbtgt(realms[i], serviceRealm)
		newTgt, ok := e.probeTGS(ctx, cTgt, tgsName)

		if !ok {
			// Inner fallback: scan left-to-right for any intermediate realm
			// this realm can issue a referral/TGT for.
			for k := i + 1; k < len(realms) && !ok; k++ {
				e.trace.ProbeAttempt(realms[i], realms[k])
				midName := principal.Krbtgt(realms[i], realms[k])
				newTgt, ok = e.probeTGS(ctx, cTgt, midName)
			}
		}

		if !ok {
			return Credential{}, okAsDelegate, ErrNotReached
		}

		if okAsDelegate && !newTgt.Flags.OkAsDelegate {
			okAsDelegate = false
			e.trace.DelegateFlagCleared(realms[i])
		}

		newTgtRealm := newTgt.TargetRealm()
		if newTgtRealm == serviceRealm {
			return newTgt, okAsDelegate, nil
		}

		// Re-anchor the main loop at the realm the new TGT actually
		// reaches, if it's one of the configured hops; otherwise refuse to
		// follow outside the configured hierarchy (§4.4 tie-break).
		k := -1
		for j := i + 1; j < len(realms); j++ {
			if realms[j] == newTgtRealm {
				k = j
				break
			}
		}
		if k < 0 {
			return Credential{}, okAsDelegate, ErrNotReached
		}
		i = k
		cTgt = newTgt
	}

	return Credential{}, okAsDelegate, ErrNotReached
}

// probeTGS attempts a single TGS request for tgsName using cTgt, swallowing
// any error as "no TGT here" per §4.4's failure semantics.
func (e *Engine) probeTGS(ctx context.Context, cTgt Credential, tgsName principal.Name) (Credential, bool) {
	cred, err := e.sender.Send(ctx, SendParams{
		Options:             0,
		AsTGT:               cTgt,
		ClientName:          cTgt.Client,
		ClientAlias:         cTgt.ClientAlias,
		RequestedServerName: tgsName,
		CanonicalServerName: tgsName,
	})
	if err != nil {
		return Credential{}, false
	}
	return cred, true
}
