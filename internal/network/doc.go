// Package network provides Kerberos network communication utilities.
//
// This package handles:
//   - KDC discovery via DNS SRV records
//   - Sending/receiving Kerberos messages over TCP/UDP
//   - Error handling for network operations
package network
