package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"verisure/internal/confirm"
)

// terminalPrompter shows the confirmation dialog on a terminal. With
// assumeYes the first prompt is accepted without reading input and a failure
// ends the run instead of asking again.
type terminalPrompter struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func newTerminalPrompter(in io.Reader, out io.Writer, assumeYes bool) *terminalPrompter {
	return &terminalPrompter{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

func (p *terminalPrompter) Prompt(ctx context.Context, d confirm.Dialog) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if d.Error != "" {
		fmt.Fprintf(p.out, "Error: %s\n", d.Error)
		if p.assumeYes {
			return false, nil
		}
		fmt.Fprintf(p.out, "Retry? [y/N] ")
		return p.readYes()
	}

	fmt.Fprintf(p.out, "%s\n%s\n", d.Title, d.Message)
	if p.assumeYes {
		return true, nil
	}
	fmt.Fprintf(p.out, "%s? [y/N] ", d.ConfirmLabel)
	return p.readYes()
}

func (p *terminalPrompter) readYes() (bool, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// readLine prompts for a single value, used when a flag was left empty.
func readLine(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
