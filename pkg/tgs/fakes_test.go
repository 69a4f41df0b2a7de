package tgs

import (
	"context"
	"errors"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

// fakeSender is a scripted KDCSender: each call to Send is matched against
// a queue of canned responses keyed by the requested server name, so a test
// can drive a multi-hop exchange without a real KDC.
type fakeSender struct {
	replies map[string][]sendReply
	calls   []SendParams
}

type sendReply struct {
	cred Credential
	err  error
}

func newFakeSender() *fakeSender {
	return &fakeSender{replies: make(map[string][]sendReply)}
}

func nameKey(n principal.Name) string {
	return n.String() + "@" + string(n.Realm)
}

func (f *fakeSender) on(server principal.Name, cred Credential, err error) {
	key := nameKey(server)
	f.replies[key] = append(f.replies[key], sendReply{cred: cred, err: err})
}

func (f *fakeSender) Send(ctx context.Context, p SendParams) (Credential, error) {
	f.calls = append(f.calls, p)
	key := nameKey(p.RequestedServerName)
	queue := f.replies[key]
	if len(queue) == 0 {
		return Credential{}, newErr(KindKdcError, "no scripted reply for "+key)
	}
	next := queue[0]
	f.replies[key] = queue[1:]
	return next.cred, next.err
}

// fakeCapath is a tgs.RealmPath backed by a static map, mirroring
// kdcclient.StaticCapath without pulling that package into the core's
// tests.
type fakeCapath struct {
	paths map[string][]principal.Realm
}

func newFakeCapath() *fakeCapath {
	return &fakeCapath{paths: make(map[string][]principal.Realm)}
}

func (c *fakeCapath) set(from, to principal.Realm, path []principal.Realm) {
	c.paths[string(from)+"->"+string(to)] = path
}

func (c *fakeCapath) RealmsList(from, to principal.Realm) []principal.Realm {
	return c.paths[string(from)+"->"+string(to)]
}

// fakePreauth returns a fixed PAData or a scripted error, for exercising
// AcquireS4U2self without real HMAC-MD5 machinery.
type fakePreauth struct {
	data PAData
	err  error
}

func (f fakePreauth) ForUser(impersonated principal.Name, sessionKey []byte) (PAData, error) {
	return f.data, f.err
}

var errPreauth = errors.New("fake preauth failure")
