package tgs

import (
	"context"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

// AcquireService is the top-level public entry (§4.6, C6): turn an initial
// TGT into a service credential for serviceName. When referrals are
// enabled it tries the RFC 6806 referral path first (C5) and falls back to
// the legacy capath path (C3, no CANONICALIZE) on a KdcError — this
// preserves compatibility with KDCs that reject canonicalisation. Any other
// error surfaces unchanged.
func (e *Engine) AcquireService(ctx context.Context, serviceName principal.Name, initialTgt Credential) (Credential, error) {
	if e.config.ReferralsEnabled {
		cred, err := e.resolveReferrals(ctx, 0, initialTgt, initialTgt.Client, serviceName, nil, nil)
		if err == nil {
			e.trace.Resolved(cred.Server)
			return cred, nil
		}
		if !isKdcError(err) {
			return Credential{}, err
		}
		// Fall through to the legacy path below.
	}

	cred, err := e.resolveOne(ctx, 0, initialTgt, initialTgt.Client, initialTgt.ClientAlias,
		serviceName, serviceName, nil, nil)
	if err != nil {
		return Credential{}, err
	}
	e.trace.Resolved(cred.Server)
	return cred, nil
}
