// Package principal implements Kerberos principal names and realms.
//
// # Overview
//
// A Kerberos principal identifies a client or server: a name-type, one or
// more name components, and the realm that issued it. The core orchestration
// engine in pkg/tgs never touches ASN.1 — it only compares and builds Name
// values through this package.
package principal

// Name-type constants, per RFC 4120 section 6.2.
const (
	NTUnknown       = 0
	NTPrincipal     = 1
	NTSrvInst       = 2
	NTSrvHst        = 3
	NTSrvXHst       = 4
	NTUID           = 5
	NTX500Principal = 6
	NTSMTPName      = 7
	NTEnterprise    = 10
)

// KrbtgtService is the first name-string component of every TGT's server
// name: krbtgt/<realm>.
const KrbtgtService = "krbtgt"

// Realm is a Kerberos realm name. Comparisons are case-sensitive; callers
// are expected to canonicalize (uppercase) before constructing a Realm, the
// way the teacher's client.NewClient does with strings.ToUpper(domain).
type Realm string

// Name is a Kerberos principal name: (name-type, name-strings, realm).
type Name struct {
	NameType   int32
	NameString []string
	Realm      Realm
}

// New builds a Name from its three parts.
func New(nameType int32, realm Realm, nameString ...string) Name {
	return Name{
		NameType:   nameType,
		NameString: append([]string(nil), nameString...),
		Realm:      realm,
	}
}

// Krbtgt builds the TGS service principal krbtgt/toRealm@issuingRealm.
func Krbtgt(issuingRealm, toRealm Realm) Name {
	return Name{
		NameType:   NTSrvInst,
		NameString: []string{KrbtgtService, string(toRealm)},
		Realm:      issuingRealm,
	}
}

// Equal compares all three fields, per the spec's PrincipalName invariant.
func (n Name) Equal(o Name) bool {
	if n.NameType != o.NameType || n.Realm != o.Realm {
		return false
	}
	if len(n.NameString) != len(o.NameString) {
		return false
	}
	for i := range n.NameString {
		if n.NameString[i] != o.NameString[i] {
			return false
		}
	}
	return true
}

// IsTGT reports whether n names a ticket-granting service: its name-strings
// are exactly ("krbtgt", X) for some realm X.
func (n Name) IsTGT() bool {
	return len(n.NameString) == 2 && n.NameString[0] == KrbtgtService
}

// TargetRealm returns the realm a TGT grants access to — the second
// name-string of a krbtgt/X principal. Only meaningful when IsTGT is true.
func (n Name) TargetRealm() Realm {
	if !n.IsTGT() {
		return ""
	}
	return Realm(n.NameString[1])
}

// WithRealm returns a copy of n with the realm replaced, keeping name-type
// and name-strings. Used by the referral follower to re-anchor the
// requested service name to a referred-to realm.
func (n Name) WithRealm(realm Realm) Name {
	return Name{
		NameType:   n.NameType,
		NameString: append([]string(nil), n.NameString...),
		Realm:      realm,
	}
}

// String renders "name1/name2@REALM" for logs and error messages. It is
// never used to carry session-key material, matching the no-secrets-in-
// traces rule in the spec's error handling design.
func (n Name) String() string {
	s := ""
	for i, part := range n.NameString {
		if i > 0 {
			s += "/"
		}
		s += part
	}
	if n.Realm != "" {
		s += "@" + string(n.Realm)
	}
	return s
}
