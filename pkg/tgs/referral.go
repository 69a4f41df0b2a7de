package tgs

import (
	"context"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

// resolveReferrals iteratively resolves a service request through RFC 6806
// referrals (§4.5), bounded by Config.MaxReferrals and loop-checked. It
// mirrors sun.security.krb5.internal.CredentialsUtil#serviceCredsReferrals
// line for line: a cache hit short-circuits the KDC round trip; a cache
// miss calls resolveOne (C3) and inspects the returned server name for the
// krbtgt/X-where-X-differs-from-the-requested-realm referral shape.
func (e *Engine) resolveReferrals(ctx context.Context, options KDCOptions, asTgt Credential,
	clientName, serviceName principal.Name, additionalTickets []Ticket, extraPreauth []PAData) (Credential, error) {

	options = options.With(OptCanonicalize)
	currentAsTgt := asTgt
	currentRef := serviceName
	canonicalSvc := serviceName
	clientAlias := asTgt.ClientAlias

	var referrals []principal.Realm
	var creds Credential
	var haveCreds bool

	maxIterations := int(e.config.MaxReferrals) + 1
	for iter := 0; iter < maxIterations; iter++ {
		var toRealm principal.Realm
		isReferral := false

		if entry, ok := e.cache.Get(clientName, serviceName, currentRef.Realm); ok {
			toRealm = entry.ToRealm
			currentAsTgt = entry.Credential
			creds = entry.Credential
			haveCreds = true
			isReferral = true
		} else {
			resolved, err := e.resolveOne(ctx, options, currentAsTgt, clientName, clientAlias,
				currentRef, canonicalSvc, additionalTickets, extraPreauth)
			if err != nil {
				return Credential{}, err
			}
			creds = resolved
			haveCreds = true

			server := creds.Server
			if server.Equal(currentRef) {
				// Not a referral: exactly what was asked for.
				return creds, nil
			}
			if server.IsTGT() && principal.Realm(server.NameString[1]) != currentRef.Realm {
				toRealm = principal.Realm(server.NameString[1])
				e.cache.Put(clientName, serviceName, server.Realm, toRealm, creds)
				currentAsTgt = creds
				isReferral = true
			} else {
				// Not a referral, not the target: return as-is.
				return creds, nil
			}
		}

		if !isReferral {
			break
		}

		if containsRealm(referrals, toRealm) {
			return Credential{}, newErr(KindReferralLoop, "referral target "+string(toRealm)+" seen twice")
		}
		e.trace.ReferralObserved(toRealm)
		referrals = append(referrals, toRealm)
		currentRef = currentRef.WithRealm(toRealm)
	}

	// Exhaustion: return the last observed credential (best effort), per
	// spec's explicit codification of this behaviour (§9 Open Questions). A
	// cache hit updates creds too, so this is never a silent zero-value
	// success — if the loop never resolved anything at all, fail instead.
	if !haveCreds {
		return Credential{}, newErr(KindNoServiceCreds, "referral resolution exhausted without obtaining a credential")
	}
	return creds, nil
}

func containsRealm(realms []principal.Realm, r principal.Realm) bool {
	for _, x := range realms {
		if x == r {
			return true
		}
	}
	return false
}
