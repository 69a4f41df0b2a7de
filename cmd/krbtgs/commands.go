package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/kdcflow/krbtgs/pkg/kdcclient"
	"github.com/kdcflow/krbtgs/pkg/principal"
	"github.com/kdcflow/krbtgs/pkg/tgs"
	"github.com/kdcflow/krbtgs/pkg/ticket"
)

func newEngine() (*tgs.Engine, error) {
	if flags.domain == "" {
		return nil, fmt.Errorf("realm is required (-d)")
	}
	realm := principal.Realm(flags.domain)

	client := kdcclient.NewClientConfig(realm).WithKDC(flags.kdc).Build()
	capath := kdcclient.NewStaticCapath()

	engine := tgs.NewEngine(client, capath, nil, tgs.DefaultConfig()).
		WithPreauthBuilder(kdcclient.PreauthBuilder{})

	if flags.verbose {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		engine = engine.WithTrace(tgs.ZerologTrace{Logger: logger})
	}

	return engine, nil
}

func loadInitialTGT() (tgs.Credential, error) {
	if flags.ticket == "" {
		return tgs.Credential{}, fmt.Errorf("initial TGT required (-t)")
	}
	kirbi, err := loadKirbi(flags.ticket)
	if err != nil {
		return tgs.Credential{}, fmt.Errorf("loading initial TGT: %w", err)
	}
	return kdcclient.CredentialFromKirbi(kirbi)
}

func loadKirbi(pathOrB64 string) (*ticket.Kirbi, error) {
	if _, err := os.Stat(pathOrB64); err == nil {
		return ticket.LoadKirbi(pathOrB64)
	}
	return ticket.FromBase64(pathOrB64)
}

func saveResult(cred tgs.Credential) error {
	kirbi, err := kdcclient.KirbiFromCredential(cred)
	if err != nil {
		return fmt.Errorf("packaging result: %w", err)
	}
	if flags.outfile == "" {
		b64, err := kirbi.ToBase64()
		if err != nil {
			return err
		}
		fmt.Println(b64)
		return nil
	}
	return ticket.SaveKirbi(kirbi, flags.outfile)
}

func parseSPN(spn string, realm principal.Realm) principal.Name {
	parts := []string{}
	current := ""
	for _, c := range spn {
		if c == '/' {
			parts = append(parts, current)
			current = ""
			continue
		}
		current += string(c)
	}
	parts = append(parts, current)
	return principal.New(principal.NTSrvInst, realm, parts...)
}

func cmdAcquire(args []string) error {
	if flags.service == "" {
		return fmt.Errorf("target service is required (-service)")
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}
	initialTgt, err := loadInitialTGT()
	if err != nil {
		return err
	}

	serviceName := parseSPN(flags.service, principal.Realm(flags.domain))
	cred, err := engine.AcquireService(context.Background(), serviceName, initialTgt)
	if err != nil {
		return err
	}
	return saveResult(cred)
}

func cmdS4USelf(args []string) error {
	if flags.asUser == "" {
		return fmt.Errorf("impersonated principal is required (-as-user)")
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}
	middleTgt, err := loadInitialTGT()
	if err != nil {
		return err
	}

	impersonated := principal.New(principal.NTPrincipal, principal.Realm(flags.domain), flags.asUser)
	cred, err := engine.AcquireS4U2self(context.Background(), impersonated, middleTgt)
	if err != nil {
		return err
	}
	return saveResult(cred)
}

func cmdS4UProxy(args []string) error {
	if flags.backend == "" {
		return fmt.Errorf("backend service is required (-backend)")
	}
	if flags.evidence == "" {
		return fmt.Errorf("evidence ticket is required (-evidence)")
	}
	if flags.expected == "" {
		return fmt.Errorf("expected client is required (-expected-client)")
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}
	middleTgt, err := loadInitialTGT()
	if err != nil {
		return err
	}
	evidenceKirbi, err := loadKirbi(flags.evidence)
	if err != nil {
		return fmt.Errorf("loading evidence ticket: %w", err)
	}
	evidenceCred, err := kdcclient.CredentialFromKirbi(evidenceKirbi)
	if err != nil {
		return err
	}

	realm := principal.Realm(flags.domain)
	backendName := parseSPN(flags.backend, realm)
	expectedClient := principal.New(principal.NTPrincipal, realm, flags.expected)

	cred, err := engine.AcquireS4U2proxy(context.Background(), backendName, evidenceCred.Ticket, expectedClient, middleTgt)
	if err != nil {
		return err
	}
	return saveResult(cred)
}

func cmdDescribe(args []string) error {
	if flags.ticket == "" {
		return fmt.Errorf("ticket to describe is required (-t)")
	}
	kirbi, err := loadKirbi(flags.ticket)
	if err != nil {
		return fmt.Errorf("loading ticket: %w", err)
	}

	view := ticket.ViewTicket(kirbi, ticket.ViewOptions{Verbose: flags.verbose})
	if view == nil {
		return fmt.Errorf("ticket has no decodable content")
	}
	fmt.Print(view.String())
	return nil
}
