package kdcclient

import (
	"time"

	"github.com/kdcflow/krbtgs/pkg/principal"
)

// ClientConfig carries the per-realm dial settings a Client needs,
// constructed with functional setters in the teacher's
// NewClient(domain).WithKDC(kdc).WithVerbose(v) chaining style.
type ClientConfig struct {
	Realm          principal.Realm
	KDCAddr        string
	Timeout        time.Duration
	PreferredEType int32
}

// NewClientConfig returns a ClientConfig for realm with the package
// defaults (10s timeout, AES256 preferred).
func NewClientConfig(realm principal.Realm) *ClientConfig {
	return &ClientConfig{Realm: realm, Timeout: 10 * time.Second, PreferredEType: 18}
}

// WithKDC sets an explicit KDC address, skipping DNS SRV discovery.
func (c *ClientConfig) WithKDC(addr string) *ClientConfig {
	c.KDCAddr = addr
	return c
}

// WithTimeout overrides the default per-exchange timeout.
func (c *ClientConfig) WithTimeout(d time.Duration) *ClientConfig {
	c.Timeout = d
	return c
}

// Build returns the Client this configuration describes.
func (c *ClientConfig) Build() *Client {
	return &Client{Realm: c.Realm, KDCAddr: c.KDCAddr, Timeout: c.Timeout}
}
