package kdcclient

import "github.com/kdcflow/krbtgs/pkg/principal"

// StaticCapath implements tgs.RealmPath from a fixed adjacency map, the way
// a real client reads capath stanzas out of /etc/krb5.conf: `capath[A][B]`
// names the intermediate realm used to go from A to B ("." means direct).
type StaticCapath struct {
	// Capath[from][to] is the realm list to traverse, endpoints included.
	// A missing entry means no configured path.
	Capath map[principal.Realm]map[principal.Realm][]principal.Realm
}

// NewStaticCapath returns an empty StaticCapath ready to populate.
func NewStaticCapath() *StaticCapath {
	return &StaticCapath{Capath: make(map[principal.Realm]map[principal.Realm][]principal.Realm)}
}

// Add registers the realm path (endpoints included) to use between from
// and to.
func (c *StaticCapath) Add(from, to principal.Realm, path []principal.Realm) {
	if c.Capath[from] == nil {
		c.Capath[from] = make(map[principal.Realm][]principal.Realm)
	}
	c.Capath[from][to] = path
}

// RealmsList implements tgs.RealmPath.
func (c *StaticCapath) RealmsList(from, to principal.Realm) []principal.Realm {
	if from == to {
		return []principal.Realm{from}
	}
	if path, ok := c.Capath[from][to]; ok {
		return path
	}
	// No configured hierarchy: direct hop only, matching a krb5.conf with
	// no capath stanza for this pair.
	return []principal.Realm{from, to}
}
