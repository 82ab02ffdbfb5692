package payment

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdinSurface(t *testing.T) {
	var out bytes.Buffer
	surface := &StdinSurface{
		In:  strings.NewReader("https://www.liqpay.ua/api/3/checkout\n\n  https://www.liqpay.ua/checkout/success  \nclose\nhttps://ignored.example\n"),
		Out: &out,
		Dir: t.TempDir(),
	}

	urls, err := surface.Open(context.Background(), Checkout{Data: "d", Signature: "s"})
	require.NoError(t, err)

	var got []string
	for url := range urls {
		got = append(got, url)
	}

	assert.Equal(t, []string{
		"https://www.liqpay.ua/api/3/checkout",
		"https://www.liqpay.ua/checkout/success",
	}, got)
	assert.Contains(t, out.String(), "pomoyka-checkout-")

	entries, err := os.ReadDir(surface.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "checkout page is removed once the surface closes")
}

func TestStdinSurface_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	surface := &StdinSurface{
		In:  strings.NewReader("https://www.liqpay.ua/a\nhttps://www.liqpay.ua/b\n"),
		Out: &bytes.Buffer{},
		Dir: t.TempDir(),
	}

	urls, err := surface.Open(ctx, Checkout{Data: "d", Signature: "s"})
	require.NoError(t, err)
	cancel()

	for range urls {
	}

	entries, err := os.ReadDir(surface.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStdinSurface_CancelWhileWaitingForInput(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{name: "no input yet"},
		{name: "after one address", lines: []string{"https://www.liqpay.ua/api/3/checkout"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, writer := io.Pipe()
			t.Cleanup(func() { writer.Close() })

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			surface := &StdinSurface{In: in, Out: &bytes.Buffer{}, Dir: t.TempDir()}
			urls, err := surface.Open(ctx, Checkout{Data: "d", Signature: "s"})
			require.NoError(t, err)

			for _, line := range tt.lines {
				go writer.Write([]byte(line + "\n"))
				assert.Equal(t, line, <-urls)
			}

			entries, err := os.ReadDir(surface.Dir)
			require.NoError(t, err)
			require.Len(t, entries, 1, "checkout page exists while the surface is open")

			// The input stays open: nothing more will ever be typed.
			cancel()

			select {
			case _, ok := <-urls:
				assert.False(t, ok, "channel closes on cancel")
			case <-time.After(2 * time.Second):
				t.Fatal("surface did not close after cancel")
			}

			assert.Eventually(t, func() bool {
				entries, err := os.ReadDir(surface.Dir)
				return err == nil && len(entries) == 0
			}, 2*time.Second, 10*time.Millisecond, "checkout page is removed after cancel")
		})
	}
}
