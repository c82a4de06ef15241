package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/neomorfeo/keyledger/internal/config"
)

// run executes the command line in args and reports failures on stderr.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if closeErr := c.close(context.WithoutCancel(ctx)); closeErr != nil {
		slog.Error("releasing resources failed", "error", closeErr)
	}

	if err != nil {
		var alert *alertError
		if errors.As(err, &alert) {
			fmt.Fprintln(stderr, alert.Error())
		} else {
			fmt.Fprintln(stderr, "Error:", err)
		}
	}
	return err
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "keyledger",
		Short:         "Generate random keys and keep a log of saved keys",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	defaults := config.Defaults()
	pf := root.PersistentFlags()
	pf.StringVar(&c.configFile, "config", "", "config file (default: ./keyledger.yaml or the user config dir)")
	pf.String("driver", defaults["backend.driver"].(string), "backend driver: http, file, sqlite or bolt")
	pf.String("url", defaults["backend.url"].(string), "backend resource URL (http driver)")
	pf.String("path", defaults["backend.path"].(string), "backend file path (file driver)")
	pf.String("dsn", defaults["backend.dsn"].(string), "backend database (sqlite and bolt drivers)")
	pf.Int("max-attempts", defaults["append.max_attempts"].(int), "save attempts when the backend changes concurrently")
	pf.String("jobs-dsn", "", "River job database for backend events (empty logs them)")
	pf.String("telemetry", defaults["telemetry.exporter"].(string), "telemetry exporter: none, stdout or otlp")
	pf.String("lang", defaults["language"].(string), "language for messages (en, de)")
	pf.String("log-level", defaults["log.level"].(string), "log level: debug, info, warn or error")

	root.AddCommand(
		newGenerateCmd(c),
		newCopyCmd(c),
		newSaveCmd(c),
		newShowCmd(c),
		newExportCmd(c),
		newClearCmd(c),
		newServeCmd(c),
		newConfigCmd(c),
	)
	return root
}
