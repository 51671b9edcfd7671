package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/go-visemes/internal/config"
)

// runCLI executes the root command with args and returns what it wrote to
// stdout. Logs go to a discarded buffer.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	origLogger := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(origLogger)
		activeCfg = config.Config{}
		cfgLoaded = false
		cfgFile = ""
	})

	root := NewRootCmd()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}
