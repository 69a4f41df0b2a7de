package main

import (
	"fmt"
	"os"

	"github.com/mjwhitta/cli"
)

var version = "0.1.0"

// Exit codes
const (
	ExitSuccess = iota
	ExitError
	ExitMissingArg
)

var flags struct {
	domain   string
	kdc      string
	ticket   string
	outfile  string
	service  string
	backend  string
	evidence string
	asUser   string
	expected string
	verbose  bool
}

var command string
var cmdArgs []string

func init() {
	cli.Align = true
	cli.Authors = []string{"krbtgs authors"}
	cli.Banner = fmt.Sprintf("%s [OPTIONS] <command> [args...]", os.Args[0])
	cli.Info(
		"krbtgs - Kerberos TGS-exchange orchestration demo",
		"",
		"Drives pkg/tgs.Engine against a real KDC: same-realm requests,",
		"cross-realm capath traversal, RFC 6806 referrals, and S4U2self/proxy.",
	)
	cli.ExitStatus(
		"0 - Success",
		"1 - Error",
		"2 - Missing command",
	)

	cli.Flag(&flags.domain, "d", "domain", "", "Realm name")
	cli.Flag(&flags.kdc, "k", "kdc", "", "Explicit KDC host:port (auto-discovered if empty)")
	cli.Flag(&flags.ticket, "t", "ticket", "", "Initial TGT: .kirbi path or base64")
	cli.Flag(&flags.outfile, "o", "out", "", "Output .kirbi path")
	cli.Flag(&flags.service, "service", "service", "", "Target service principal (acquire)")
	cli.Flag(&flags.backend, "backend", "backend", "", "Backend service principal (s4u proxy)")
	cli.Flag(&flags.evidence, "evidence", "evidence", "", "Evidence ticket: .kirbi path or base64 (s4u proxy)")
	cli.Flag(&flags.asUser, "as-user", "as-user", "", "Impersonated principal (s4u self)")
	cli.Flag(&flags.expected, "expected-client", "expected-client", "", "Expected client in the s4u proxy reply")
	cli.Flag(&flags.verbose, "v", "verbose", false, "Verbose trace output")

	cli.Section("Commands",
		"  acquire   Acquire a service ticket (direct, cross-realm, or referral)\n",
		"  s4u-self  S4U2self: obtain a ticket to self impersonating a user\n",
		"  s4u-proxy S4U2proxy: constrained delegation to a backend service\n",
		"  describe  Print an annotated breakdown of a .kirbi ticket",
	)

	cli.Parse()

	if cli.NArg() == 0 {
		cli.Usage(ExitMissingArg)
	}
	command = cli.Arg(0)
	if cli.NArg() > 1 {
		cmdArgs = cli.Args()[1:]
	}
}

func main() {
	var err error
	switch command {
	case "acquire":
		err = cmdAcquire(cmdArgs)
	case "s4u-self":
		err = cmdS4USelf(cmdArgs)
	case "s4u-proxy":
		err = cmdS4UProxy(cmdArgs)
	case "describe":
		err = cmdDescribe(cmdArgs)
	case "help":
		cli.Usage(ExitSuccess)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		cli.Usage(ExitError)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
