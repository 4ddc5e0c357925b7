package dns01

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/go-acme/lego-crt/acme"
)

func init() {
	acme.SetDefaultSolver(func() acme.Solver {
		return New(PromptProvider{})
	})
}

// PromptProvider is the default solver described in spec §4.6: it logs
// the TXT record an operator must publish and blocks for a keypress
// confirming it's live. It never publishes anything itself.
type PromptProvider struct{}

func (PromptProvider) Present(domain, keyAuthDigest string) error {
	fmt.Printf("acme: please create a TXT record:\n\n\t_acme-challenge.%s. 300 IN TXT %q\n\n", domain, keyAuthDigest)
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("dns01: stdin is not a terminal; cannot prompt for confirmation")
	}
	fmt.Print("Press Enter once the record is published... ")
	reader := bufio.NewReader(os.Stdin)
	_, _ = reader.ReadString('\n')
	return nil
}

func (PromptProvider) CleanUp(domain, keyAuthDigest string) error {
	fmt.Printf("acme: you may now remove the TXT record for _acme-challenge.%s.\n", domain)
	return nil
}
