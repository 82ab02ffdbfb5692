package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// prompter asks for values missing from flags, one line per answer
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{
		in:  bufio.NewReader(cmd.InOrStdin()),
		out: cmd.OutOrStdout(),
	}
}

// fill prompts for *value when it is empty. Blank answers are rejected.
func (p *prompter) fill(value *string, label string) error {
	if strings.TrimSpace(*value) != "" {
		return nil
	}

	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}
		return fmt.Errorf("%s is required", strings.ToLower(label))
	}

	*value = line
	return nil
}
