// Command getcrt is a minimal acme-tiny-style certificate issuance
// client: point it at an account key and a CSR and it prints a signed
// certificate to stdout.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"

	"github.com/go-acme/lego-crt/acme"
	"github.com/go-acme/lego-crt/challenge/dns01"
	"github.com/go-acme/lego-crt/challenge/http01"
	"github.com/go-acme/lego-crt/providers/dns01/route53"
)

// config mirrors the flags a user would otherwise have to repeat on
// every invocation; --config loads it once via BurntSushi/toml.
type config struct {
	DirectoryURL string   `toml:"directory_url"`
	AccountKey   string   `toml:"account_key"`
	CSR          string   `toml:"csr"`
	Contact      []string `toml:"contact"`
	Challenge    string   `toml:"challenge"`
	Route53      bool     `toml:"route53"`
}

func main() {
	app := &cli.App{
		Name:  "getcrt",
		Usage: "obtain a certificate from an ACME v1 directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a TOML config file"},
			&cli.StringFlag{Name: "account-key", Usage: "path to the account's RSA private key (PEM)"},
			&cli.StringFlag{Name: "csr", Usage: "path to the certificate signing request (PEM)"},
			&cli.StringFlag{Name: "directory-url", Value: acme.LetsEncryptDirectoryURL, Usage: "ACME directory URL"},
			&cli.StringSliceFlag{Name: "contact", Usage: "contact URIs (e.g. mailto:you@example.com)"},
			&cli.StringFlag{Name: "challenge", Value: "http-01", Usage: "http-01 or dns-01"},
			&cli.BoolFlag{Name: "route53", Usage: "use the Route 53 DNS-01 provider (requires --challenge dns-01)"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.AccountKey == "" || cfg.CSR == "" {
		return cli.Exit("--account-key and --csr are required", 1)
	}

	accountKeyPEM, err := os.ReadFile(cfg.AccountKey)
	if err != nil {
		return fmt.Errorf("read account key: %w", err)
	}
	csrPEM, err := os.ReadFile(cfg.CSR)
	if err != nil {
		return fmt.Errorf("read CSR: %w", err)
	}

	opts := &acme.Options{
		DirectoryURL: cfg.DirectoryURL,
		Contact:      cfg.Contact,
	}

	solver, err := buildSolver(cfg)
	if err != nil {
		return err
	}
	opts.Solver = solver

	acme.Logger = log.New(os.Stderr, "getcrt: ", log.LstdFlags)

	certPEM, err := acme.GetCertificate(accountKeyPEM, csrPEM, opts)
	if err != nil {
		return fmt.Errorf("obtain certificate: %w", err)
	}

	_, err = os.Stdout.Write(certPEM)
	return err
}

func buildSolver(cfg config) (acme.Solver, error) {
	switch cfg.Challenge {
	case "dns-01":
		if cfg.Route53 {
			provider, err := route53.New(context.Background())
			if err != nil {
				return nil, fmt.Errorf("route53 provider: %w", err)
			}
			return dns01.New(provider), nil
		}
		return nil, nil // falls back to acme.SetDefaultSolver's interactive prompt
	case "http-01", "":
		return http01.New(http01.PromptProvider{}), nil
	default:
		return nil, fmt.Errorf("unsupported challenge type %q", cfg.Challenge)
	}
}

func loadConfig(c *cli.Context) (config, error) {
	cfg := config{
		AccountKey:   c.String("account-key"),
		CSR:          c.String("csr"),
		DirectoryURL: c.String("directory-url"),
		Contact:      c.StringSlice("contact"),
		Challenge:    c.String("challenge"),
		Route53:      c.Bool("route53"),
	}

	if path := c.String("config"); path != "" {
		var fileCfg config
		if _, err := toml.DecodeFile(path, &fileCfg); err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
		cfg = mergeConfig(fileCfg, cfg)
	}

	return cfg, nil
}

// mergeConfig lets flags override the file: zero-valued flag fields
// fall back to whatever the file set.
func mergeConfig(file, flags config) config {
	merged := file
	if flags.AccountKey != "" {
		merged.AccountKey = flags.AccountKey
	}
	if flags.CSR != "" {
		merged.CSR = flags.CSR
	}
	if flags.DirectoryURL != "" && flags.DirectoryURL != acme.LetsEncryptDirectoryURL {
		merged.DirectoryURL = flags.DirectoryURL
	} else if merged.DirectoryURL == "" {
		merged.DirectoryURL = acme.LetsEncryptDirectoryURL
	}
	if len(flags.Contact) > 0 {
		merged.Contact = flags.Contact
	}
	if flags.Challenge != "" && flags.Challenge != "http-01" {
		merged.Challenge = flags.Challenge
	} else if merged.Challenge == "" {
		merged.Challenge = "http-01"
	}
	if flags.Route53 {
		merged.Route53 = true
	}
	return merged
}
