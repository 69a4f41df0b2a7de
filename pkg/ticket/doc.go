// Package ticket provides Kerberos ticket format handling and analysis.
//
// # Overview
//
// This package handles the three main ticket formats used in Kerberos:
//
//   - .kirbi: Windows native format (KRB-CRED ASN.1 message)
//   - .ccache: MIT Kerberos credential cache (Linux/Unix format)
//   - Base64: Encoded .kirbi for command-line passing
//
// # Format Conversion
//
// All formats can be converted between each other:
//
//	kirbi → ccache: For use with Linux tools (Impacket, etc.)
//	ccache → kirbi: For use with Windows tools (Rubeus, etc.)
//	kirbi ↔ base64: For command-line passing and PTT
//
// # Ticket Analysis
//
// The ViewTicket function provides rich, educational ticket analysis:
//
//	view := ticket.ViewTicket(kirbi, ticket.ViewOptions{})
//	fmt.Println(view.String())
//
// This displays a formatted analysis of the ticket's identity, flags,
// times and encryption type, with flag meanings and security implications.
// The PAC is not decoded, and the output does not depend on ViewOptions.
package ticket
