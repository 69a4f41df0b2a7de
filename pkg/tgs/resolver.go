package tgs

import (
	"context"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

// resolveOne performs one logical TGS acquisition (§4.3): a direct request
// if the TGT is already valid in the service's realm, or a capath-mediated
// cross-realm TGT prefetch (C4) followed by the direct request otherwise.
func (e *Engine) resolveOne(ctx context.Context, options KDCOptions, asTgt Credential,
	clientName, clientAlias, refServerName, canonicalServerName principal.Name,
	additionalTickets []Ticket, extraPreauth []PAData) (Credential, error) {

	tgtTargetRealm := asTgt.TargetRealm()
	serviceRealm := refServerName.Realm

	okAsDelegate := true
	if serviceRealm != tgtTargetRealm {
		newTgt, delegate, err := e.tgtForRealm(ctx, tgtTargetRealm, serviceRealm, asTgt)
		if err != nil {
			return Credential{}, wrapErr(KindNoServiceCreds, "capath exhausted reaching "+string(serviceRealm), err)
		}
		asTgt = newTgt
		clientName = newTgt.Client
		okAsDelegate = delegate
	}

	cred, err := e.sender.Send(ctx, SendParams{
		Options:             options,
		AsTGT:               asTgt,
		ClientName:          clientName,
		ClientAlias:         clientAlias,
		RequestedServerName: refServerName,
		CanonicalServerName: canonicalServerName,
		AdditionalTickets:   additionalTickets,
		ExtraPreauth:        extraPreauth,
	})
	if err != nil {
		return Credential{}, err
	}

	if !okAsDelegate {
		if cred.Flags.OkAsDelegate {
			e.trace.DelegateFlagCleared(asTgt.Server.Realm)
		}
		cred = cred.clearDelegate()
	}

	return cred, nil
}
