// Package cli implements the pwless command.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/lgc202/pwless-go/pwless"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	out        io.Writer
	errOut     io.Writer

	settings Settings
	logger   *slog.Logger
}

// NewRootCommand returns the pwless command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	o := &rootOptions{out: out, errOut: errOut}

	cmd := &cobra.Command{
		Use:           "pwless",
		Short:         "Command line client for the Passwordless API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(o.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			o.settings = s
			o.logger = newLogger(o.errOut, s.Log)
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "path to a config file (yaml, json or toml)")
	pf.String("secret", "", "API secret (default $"+pwless.EnvSecret+")")
	pf.String("url", "", "API base URL (default $"+pwless.EnvAPIURL+" or "+pwless.DefaultBaseURL+")")
	pf.Duration("timeout", pwless.DefaultTimeout, "per-request timeout")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")
	pf.Float64("rps", 0, "max requests per second, 0 for unlimited")
	pf.Int("burst", 1, "request burst allowed by --rps")

	cmd.AddCommand(newCredentialsCommand(o), newVersionCommand(o))
	return cmd
}

func (o *rootOptions) newClient() (*pwless.Client, error) {
	s := o.settings
	return pwless.New(
		pwless.WithSecret(s.Secret),
		pwless.WithBaseURL(s.URL),
		pwless.WithTimeout(s.Timeout),
		pwless.WithLogger(o.logger),
		pwless.WithRateLimit(s.Rate.RPS, s.Rate.Burst),
	)
}

// Execute runs the command with process arguments and returns the exit code.
func Execute() int {
	cmd := NewRootCommand(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		printError(os.Stderr, err)
		return 1
	}
	return 0
}
