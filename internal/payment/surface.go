package payment

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// NavigationSurface hosts the checkout page and reports every URL it
// navigates to. The channel is closed when the surface is closed.
type NavigationSurface interface {
	Open(ctx context.Context, checkout Checkout) (<-chan string, error)
}

// CloseCommand typed on its own line closes a StdinSurface
const CloseCommand = "close"

// StdinSurface is a terminal stand-in for an embedded browser: it writes
// the checkout page to a file for the user to open and reads the URLs the
// browser lands on, one per line.
type StdinSurface struct {
	In  io.Reader
	Out io.Writer
	Dir string // Directory for the checkout page; os.TempDir when empty
}

// Open implements NavigationSurface
func (s *StdinSurface) Open(ctx context.Context, checkout Checkout) (<-chan string, error) {
	html, err := CheckoutForm(checkout)
	if err != nil {
		return nil, err
	}

	file, err := os.CreateTemp(s.Dir, "pomoyka-checkout-*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout page: %w", err)
	}
	if _, err := file.WriteString(html); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write checkout page: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to write checkout page: %w", err)
	}

	fmt.Fprintf(s.Out, "Open %s in a browser to pay.\n", file.Name())
	fmt.Fprintf(s.Out, "Paste each address the payment page lands on, or type %q to abandon the payment.\n", CloseCommand)

	lines := make(chan string)
	stop := make(chan struct{})
	go s.readLines(lines, stop)

	urls := make(chan string)
	go func() {
		defer close(urls)
		defer os.Remove(file.Name())
		defer close(stop)

		for {
			select {
			case <-ctx.Done():
				return
			case line, ok := <-lines:
				if !ok || strings.EqualFold(line, CloseCommand) {
					return
				}
				select {
				case urls <- line:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return urls, nil
}

// readLines forwards non-empty input lines until the input ends or stop is
// closed. A Scan already blocked on the reader cannot be interrupted; the
// line it returns after stop is dropped.
func (s *StdinSurface) readLines(lines chan<- string, stop <-chan struct{}) {
	defer close(lines)

	scanner := bufio.NewScanner(s.In)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case lines <- line:
		case <-stop:
			return
		}
	}
}
