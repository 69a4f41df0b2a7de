package tgs

import (
	"context"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

// AcquireS4U2self lets a service, holding its own forwardable TGT, obtain a
// ticket to itself on behalf of impersonated without that user's secrets
// (§4.7, C7). Cross-realm impersonation is unsupported.
func (e *Engine) AcquireS4U2self(ctx context.Context, impersonated principal.Name, middleTgt Credential) (Credential, error) {
	if impersonated.Realm != middleTgt.Client.Realm {
		return Credential{}, newErr(KindUnsupportedCrossRealm, "S4U2self across realms is unsupported")
	}
	if !middleTgt.Forwardable() {
		return Credential{}, newErr(KindPreconditionViolation, "S4U2self needs FORWARDABLE")
	}

	paForUser, err := e.preauth.ForUser(impersonated, middleTgt.SessionKey)
	if err != nil {
		return Credential{}, wrapErr(KindProtocol, "building PA-FOR-USER", err)
	}

	sname := middleTgt.Client
	cred, err := e.resolveOne(ctx, OptForwardable, middleTgt, middleTgt.Client, middleTgt.ClientAlias,
		sname, sname, nil, []PAData{paForUser})
	if err != nil {
		return Credential{}, err
	}

	if !cred.Client.Equal(impersonated) || !cred.Forwardable() {
		return Credential{}, newErr(KindKdcRefused, "S4U2self reply did not match impersonated principal or lost FORWARDABLE")
	}
	e.trace.Resolved(cred.Server)
	return cred, nil
}

// AcquireS4U2proxy lets a service present a user's ticket (evidenceTicket)
// as proof while obtaining a further ticket to backendName on the user's
// behalf (§4.7, C7): constrained delegation.
func (e *Engine) AcquireS4U2proxy(ctx context.Context, backendName principal.Name, evidenceTicket Ticket,
	expectedClient principal.Name, middleTgt Credential) (Credential, error) {

	options := OptCnameInAddlTkt.With(OptForwardable)
	cred, err := e.resolveOne(ctx, options, middleTgt, middleTgt.Client, middleTgt.ClientAlias,
		backendName, backendName, []Ticket{evidenceTicket}, nil)
	if err != nil {
		return Credential{}, err
	}

	if !cred.Client.Equal(expectedClient) {
		return Credential{}, newErr(KindKdcRefused, "S4U2proxy reply client did not match evidence ticket's client")
	}
	e.trace.Resolved(cred.Server)
	return cred, nil
}
