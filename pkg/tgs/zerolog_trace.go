package tgs

import (
	"github.com/rs/zerolog"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

// ZerologTrace adapts Trace onto a *zerolog.Logger, giving each event
// levelled, structured fields instead of LogTrace's plain prefixed lines.
type ZerologTrace struct {
	Logger zerolog.Logger
}

func (t ZerologTrace) ProbeAttempt(from, to principal.Realm) {
	t.Logger.Debug().Str("from", string(from)).Str("to", string(to)).Msg("tgs: probing TGS")
}

func (t ZerologTrace) ReferralObserved(realm principal.Realm) {
	t.Logger.Info().Str("realm", string(realm)).Msg("tgs: referral observed")
}

func (t ZerologTrace) DelegateFlagCleared(at principal.Realm) {
	t.Logger.Warn().Str("realm", string(at)).Msg("tgs: ok-as-delegate cleared")
}

func (t ZerologTrace) Resolved(server principal.Name) {
	t.Logger.Info().Str("server", server.String()).Msg("tgs: service credential resolved")
}
