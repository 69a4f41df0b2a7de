package tgs

// Engine is the entry point for service-ticket acquisition: it wires a
// KDCSender, a RealmPath resolver, a referral cache, and a Config together
// and exposes the three public operations (§6).
type Engine struct {
	sender  KDCSender
	realms  RealmPath
	cache   *ReferralCache
	config  Config
	trace   Trace
	preauth PreauthBuilder
}

// NewEngine builds an Engine. cache may be nil, in which case a fresh
// process-local cache is created; pass a shared *ReferralCache to reuse one
// across Engines (e.g. across concurrent acquisitions for the same client).
func NewEngine(sender KDCSender, realms RealmPath, cache *ReferralCache, config Config) *Engine {
	if cache == nil {
		cache = NewReferralCache()
	}
	return &Engine{
		sender: sender,
		realms: realms,
		cache:  cache,
		config: config,
		trace:  NoopTrace{},
	}
}

// WithTrace attaches a Trace sink and returns the engine for chaining,
// mirroring the teacher's NewClient(...).WithKDC(...).WithVerbose(...) style.
func (e *Engine) WithTrace(t Trace) *Engine {
	if t == nil {
		t = NoopTrace{}
	}
	e.trace = t
	return e
}

// WithPreauthBuilder attaches the collaborator used to construct the
// PA-FOR-USER element required by AcquireS4U2self, and returns the engine
// for chaining.
func (e *Engine) WithPreauthBuilder(b PreauthBuilder) *Engine {
	e.preauth = b
	return e
}
