package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "shopctl", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"categories", "list"},
		{"categories", "get"},
		{"products", "list"},
		{"products", "get"},
		{"search"},
		{"cart", "show"},
		{"cart", "add"},
		{"cart", "update"},
		{"cart", "remove"},
		{"cart", "clear"},
		{"checkout"},
		{"admin", "login"},
		{"admin", "logout"},
		{"admin", "whoami"},
		{"admin", "dashboard"},
		{"admin", "categories", "create"},
		{"admin", "categories", "update"},
		{"admin", "categories", "delete"},
		{"admin", "products", "create"},
		{"admin", "products", "update"},
		{"admin", "products", "delete"},
		{"admin", "orders", "list"},
		{"admin", "orders", "get"},
		{"admin", "orders", "status"},
		{"admin", "orders", "delete"},
		{"admin", "upload", "image"},
		{"admin", "upload", "images"},
		{"admin", "upload", "delete"},
	}

	for _, path := range commands {
		t.Run(strings.Join(path, "_"), func(t *testing.T) {
			sub, _, err := cmd.Find(path)
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, path[len(path)-1], sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	t.Setenv("STOREFRONT_API_URL", "")
	t.Setenv("SHOPCTL_STORE", "")
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	api := cmd.PersistentFlags().Lookup("api")
	require.NotNil(t, api)
	assert.Equal(t, "http://localhost:8080/api", api.DefValue)

	store := cmd.PersistentFlags().Lookup("store")
	require.NotNil(t, store)
	assert.Equal(t, "shopctl.db", store.DefValue)

	timeout := cmd.PersistentFlags().Lookup("timeout")
	require.NotNil(t, timeout)
	assert.Equal(t, "10s", timeout.DefValue)
}

func TestGlobalFlagsFromEnv(t *testing.T) {
	t.Setenv("STOREFRONT_API_URL", "http://shop.internal/api")
	t.Setenv("SHOPCTL_STORE", "/var/lib/shopctl.db")
	cmd := NewRootCommand()

	assert.Equal(t, "http://shop.internal/api", cmd.PersistentFlags().Lookup("api").DefValue)
	assert.Equal(t, "/var/lib/shopctl.db", cmd.PersistentFlags().Lookup("store").DefValue)
}

func TestSearchCommandFlags(t *testing.T) {
	t.Setenv("SEARCH_DEBOUNCE", "")
	cmd := NewRootCommand()
	search, _, err := cmd.Find([]string{"search"})
	require.NoError(t, err)

	interactive := search.Flags().Lookup("interactive")
	require.NotNil(t, interactive)
	assert.Equal(t, "i", interactive.Shorthand)

	debounce := search.Flags().Lookup("debounce")
	require.NotNil(t, debounce)
	assert.Equal(t, "300ms", debounce.DefValue)

	t.Setenv("SEARCH_DEBOUNCE", "150ms")
	search, _, err = NewRootCommand().Find([]string{"search"})
	require.NoError(t, err)
	assert.Equal(t, "150ms", search.Flags().Lookup("debounce").DefValue)
}

func TestCheckoutCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	checkout, _, err := cmd.Find([]string{"checkout"})
	require.NoError(t, err)

	for _, name := range []string{"name", "phone", "email", "address", "note"} {
		require.NotNil(t, checkout.Flags().Lookup(name), name)
	}
	payment := checkout.Flags().Lookup("payment")
	require.NotNil(t, payment)
	assert.Equal(t, "COD", payment.DefValue)
}

func TestExecute_InvalidFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), []string{"--format", "xml", "--store", "", "cart", "show"}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "invalid format")
	assert.Empty(t, stdout.String())
}

func TestExecute_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), []string{"refund"}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "unknown command")
}
