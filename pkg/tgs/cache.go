package tgs

import (
	"sync"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

// referralCacheKey is the comparable lookup key for one referral cache slot:
// the client principal, the original requested service, and the realm the
// lookup is being made from. principal.Name itself is not comparable (its
// NameString is a slice), so the key is built from its rendered form instead
// of embedding the Name directly.
type referralCacheKey struct {
	Client          string
	OriginalService string
	CurrentRealm    principal.Realm
}

func newReferralCacheKey(client, origService principal.Name, currentRealm principal.Realm) referralCacheKey {
	return referralCacheKey{
		Client:          client.String(),
		OriginalService: origService.String(),
		CurrentRealm:    currentRealm,
	}
}

// ReferralCacheEntry records where a referral pointed and the cross-realm
// TGT credential the KDC handed back for it.
type ReferralCacheEntry struct {
	ToRealm    principal.Realm
	Credential Credential
}

// ReferralCache maps (client, original service, current realm) to
// ReferralCacheEntry. It is process-wide state in the Java original (a
// single static ReferralsCache); here it is an owned value a caller
// constructs once and hands to an Engine, so tests can use a fresh cache per
// run (Design Notes §9).
//
// Safe for concurrent Get and Put: readers take a read lock, writers a
// write lock. Put never overwrites an existing entry for the same key
// (first-writer-wins) — KDC replies for an identical key are expected to
// agree, so the race is benign and the cache stays idempotent (§5, P7).
type ReferralCache struct {
	mu      sync.RWMutex
	entries map[referralCacheKey]ReferralCacheEntry
}

// NewReferralCache returns an empty cache ready for use.
func NewReferralCache() *ReferralCache {
	return &ReferralCache{entries: make(map[referralCacheKey]ReferralCacheEntry)}
}

// Get returns the cached entry for the key, if any.
func (c *ReferralCache) Get(client, origService principal.Name, currentRealm principal.Realm) (ReferralCacheEntry, bool) {
	key := newReferralCacheKey(client, origService, currentRealm)
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Put records toRealm/credential under the key, unless an entry already
// exists there.
func (c *ReferralCache) Put(client, origService principal.Name, currentRealm, toRealm principal.Realm, cred Credential) {
	key := newReferralCacheKey(client, origService, currentRealm)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		return
	}
	c.entries[key] = ReferralCacheEntry{ToRealm: toRealm, Credential: cred}
}
