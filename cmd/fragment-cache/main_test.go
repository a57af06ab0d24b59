package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/html-fragment-cache/internal/testutil"
	"github.com/Sternrassler/html-fragment-cache/pkg/cache"
	"github.com/Sternrassler/html-fragment-cache/pkg/fragment"
)

func newTestApp(t *testing.T, mutate ...func(*fragment.Config)) (*app, *testutil.FakeStore) {
	t.Helper()

	store := testutil.NewFakeStore()
	reg := cache.NewRegistry()
	require.NoError(t, reg.Register(fragment.DefaultStore, store))

	cfg := fragment.DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	svc, err := fragment.New(cfg, reg, fragment.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	return &app{svc: svc}, store
}

func run(t *testing.T, a *app, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestForgetCommand(t *testing.T) {
	a, store := newTestApp(t)
	key := cache.Key("customer:123", "default", "1.0")
	store.Put(key, "<p>cached</p>", time.Hour)

	out, err := run(t, a, "", "forget", "-i", "customer:123", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Forgot identifier=customer:123")
	assert.False(t, store.Has(key))
}

func TestForgetCommand_Prompt(t *testing.T) {
	a, store := newTestApp(t)
	key := cache.Key("customer:1", "widget", "v1")
	store.Put(key, "x", time.Hour)

	out, err := run(t, a, "n\n", "forget", "-i", "customer:1", "--variant", "widget", "--version", "v1")
	require.NoError(t, err)
	assert.Contains(t, out, "Forget cache for identifier=customer:1 (variant=widget, version=v1)?")
	assert.Contains(t, out, "Aborted.")
	assert.True(t, store.Has(key))

	out, err = run(t, a, "y\n", "forget", "-i", "customer:1", "--variant", "widget", "--version", "v1")
	require.NoError(t, err)
	assert.Contains(t, out, "Forgot identifier=customer:1")
	assert.False(t, store.Has(key))
}

func TestForgetCommand_RequiresIdentifier(t *testing.T) {
	a, _ := newTestApp(t)
	_, err := run(t, a, "", "forget", "--yes")
	assert.Error(t, err)
}

func TestForgetCommand_Disabled(t *testing.T) {
	a, store := newTestApp(t, func(c *fragment.Config) { c.Enabled = fragment.Bool(false) })

	out, err := run(t, a, "", "forget", "-i", "customer:1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "disabled")
	assert.Zero(t, store.DeleteCount)
}

func TestForgetCommand_BackendFailure(t *testing.T) {
	a, store := newTestApp(t)
	store.DeleteErr = testutil.ErrBackendDown

	_, err := run(t, a, "", "forget", "-i", "customer:1", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to forget fragment")

	var be *fragment.BackendError
	assert.ErrorAs(t, err, &be)
}

func TestFlushCommand(t *testing.T) {
	a, store := newTestApp(t)
	store.Put("a", "1", time.Hour)
	store.Put("b", "2", time.Hour)

	out, err := run(t, a, "", "flush")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")
	assert.Equal(t, 2, store.Len())

	out, err = run(t, a, "yes\n", "flush")
	require.NoError(t, err)
	assert.Contains(t, out, "Flushed all fragments from cache store: default")
	assert.Zero(t, store.Len())

	store.FlushErr = testutil.ErrBackendDown
	_, err = run(t, a, "", "flush", "-y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to flush cache")
}

func TestForgetPatternCommand(t *testing.T) {
	a, store := newTestApp(t)
	store.Put("html_fragment:customer:1:v1", "1", time.Hour)
	store.Put("unrelated", "2", time.Hour)

	out, err := run(t, a, "", "forget-pattern", "-p", "*customer:*", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "pattern-based deletion not supported")
	assert.Zero(t, store.Len())

	store.FlushErr = testutil.ErrBackendDown
	_, err = run(t, a, "", "forget-pattern", "-p", "*", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pattern deletion failed")
}

func TestInfoCommand(t *testing.T) {
	a, _ := newTestApp(t)

	out, err := run(t, a, "", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "store_name:  default")
	assert.Contains(t, out, "store_class: *testutil.FakeStore")
	assert.Contains(t, out, "driver:      fake")
	assert.Contains(t, out, "enabled:     true")

	out, err = run(t, a, "", "info", "--json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "default", got["store_name"])
	assert.Equal(t, "fake", got["driver"])
	assert.Equal(t, true, got["enabled"])
	assert.Equal(t, "6 hours", got["default_ttl"])
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		yes   bool
		want  bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", false, false},
		{"\n", false, false},
		{"", false, false},
		{"", true, true},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got := confirm(strings.NewReader(tt.input), &out, tt.yes, "Sure?")
		assert.Equal(t, tt.want, got, "input %q yes=%v", tt.input, tt.yes)
	}
}

func TestNewTracerProvider(t *testing.T) {
	for _, name := range []string{"", "none", "stdout"} {
		tp, shutdown, err := newTracerProvider(name, &bytes.Buffer{})
		require.NoError(t, err, name)
		assert.NotNil(t, tp)
		assert.NoError(t, shutdown(context.Background()))
	}

	_, _, err := newTracerProvider("zipkin", &bytes.Buffer{})
	assert.Error(t, err)
}
