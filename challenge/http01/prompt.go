package http01

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// PromptProvider is the manual fallback described in spec §4.6: log
// the file an operator must publish and block for a keypress
// confirming it's live.
type PromptProvider struct{}

func (PromptProvider) Present(domain, token, keyAuthorization string) error {
	fmt.Printf("acme: please publish a file:\n\n\thttp://%s%s\n\ncontaining exactly:\n\n\t%s\n\n", domain, Path(token), keyAuthorization)
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("http01: stdin is not a terminal; cannot prompt for confirmation")
	}
	fmt.Print("Press Enter once the file is published... ")
	reader := bufio.NewReader(os.Stdin)
	_, _ = reader.ReadString('\n')
	return nil
}

func (PromptProvider) CleanUp(domain, token, keyAuthorization string) error {
	fmt.Printf("acme: you may now remove %s\n", Path(token))
	return nil
}
