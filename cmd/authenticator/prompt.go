package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrymomot/mfakit/pkg/account"
	"github.com/dmitrymomot/mfakit/pkg/approval"
	"github.com/dmitrymomot/mfakit/pkg/credential"
)

// lineReader prompts on out and reads answers line by line from in.
type lineReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newLineReader(in io.Reader, out io.Writer) *lineReader {
	return &lineReader{scanner: bufio.NewScanner(in), out: out}
}

// prompt returns the trimmed answer. End of input counts as cancel.
func (r *lineReader) prompt(question string) (string, error) {
	fmt.Fprint(r.out, question)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", approval.ErrCanceled
	}
	return strings.TrimSpace(r.scanner.Text()), nil
}

func (r *lineReader) confirm(question string) (bool, error) {
	answer, err := r.prompt(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (r *lineReader) pattern(question string) ([]credential.Point, error) {
	answer, err := r.prompt(question)
	if err != nil {
		return nil, err
	}
	if answer == "" {
		return nil, approval.ErrCanceled
	}
	points, err := credential.StringToPattern(answer)
	if err != nil {
		// An unparsable pattern is a wrong pattern, not a cancel.
		return nil, nil
	}
	return points, nil
}

// terminalPrompter answers approval prompts on the terminal.
type terminalPrompter struct {
	in *lineReader
}

func (p *terminalPrompter) ConfirmCode(_ context.Context, acc *account.Account, code string, remaining int) (bool, error) {
	fmt.Fprintf(p.in.out, "Code for %s: %s (%ds left)\n", acc.Label, code, remaining)
	return p.in.confirm("Send this code to approve the login?")
}

func (p *terminalPrompter) PromptPIN(context.Context, *account.Account) (string, error) {
	return p.in.prompt("PIN: ")
}

func (p *terminalPrompter) PromptPattern(_ context.Context, _ *account.Account, gridSize int) ([]credential.Point, error) {
	return p.in.pattern(fmt.Sprintf("Pattern on a %dx%d grid (r,c-r,c-...): ", gridSize, gridSize))
}

func (p *terminalPrompter) PromptPasskey(context.Context, *account.Account) (string, error) {
	return p.in.prompt("Passkey: ")
}
