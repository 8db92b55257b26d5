package module

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter asks the operator for a go/no-go decision.
type Prompter interface {
	Approve(prompt string) bool
}

// ConsolePrompter reads y/N answers from an input stream. Interrupt or EOF
// counts as a decline.
type ConsolePrompter struct {
	reader *bufio.Reader
}

// NewConsolePrompter wraps an input stream, typically os.Stdin.
func NewConsolePrompter(in io.Reader) *ConsolePrompter {
	if in == nil {
		in = os.Stdin
	}
	return &ConsolePrompter{reader: bufio.NewReader(in)}
}

// Approve prints the prompt and blocks for an answer.
func (p *ConsolePrompter) Approve(prompt string) bool {
	fmt.Printf("\n%s [y/N]: ", prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
