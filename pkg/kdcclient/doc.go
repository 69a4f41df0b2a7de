// Package kdcclient is the concrete tgs.KDCSender: it builds a TGS-REQ,
// sends it to a KDC over internal/network, and decodes the TGS-REP (or
// KRB-ERROR) into a tgs.Credential.
//
// This is where the ASN.1 codec, crypto, and transport collaborators the
// orchestration engine in pkg/tgs deliberately does not import all come
// together, the same separation the engine's KDCSender interface exists
// to draw.
package kdcclient
