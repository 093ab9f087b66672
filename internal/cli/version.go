package cli

import (
	"fmt"

	"github.com/lgc202/pwless-go/version"
	"github.com/spf13/cobra"
)

func newVersionCommand(o *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := version.Get().Render(output)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(o.out, s)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, short)")
	return cmd
}
