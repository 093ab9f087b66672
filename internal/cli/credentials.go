package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/lgc202/pwless-go/pwless"
	"github.com/spf13/cobra"
)

func newCredentialsCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "credentials",
		Aliases: []string{"creds"},
		Short:   "Inspect stored credentials",
	}
	cmd.AddCommand(newCredentialsListCommand(o))
	return cmd
}

func newCredentialsListCommand(o *rootOptions) *cobra.Command {
	var (
		userID string
		output string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the credentials registered for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := o.newClient()
			if err != nil {
				return err
			}
			creds, err := client.ListCredentials(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return renderCredentials(o.out, creds, output)
		},
	}
	cmd.Flags().StringVarP(&userID, "user-id", "u", "", "user id to list credentials for")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json)")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

func renderCredentials(w io.Writer, creds []pwless.Credential, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		if creds == nil {
			creds = []pwless.Credential{}
		}
		b, err := json.MarshalIndent(creds, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal credentials: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "", "table":
		if len(creds) == 0 {
			_, err := fmt.Fprintln(w, "No credentials found.")
			return err
		}
		table := uitable.New()
		table.MaxColWidth = 40
		table.AddRow("NICKNAME", "DEVICE", "COUNTRY", "TYPE", "CREDENTIAL ID", "CREATED", "LAST USED")
		for _, c := range creds {
			table.AddRow(c.Nickname, c.Device, c.Country, c.Descriptor.Type, c.Descriptor.ID, c.CreatedAt, c.LastUsedAt)
		}
		_, err := fmt.Fprintln(w, table)
		return err
	default:
		return fmt.Errorf("unknown output format %q (want table or json)", format)
	}
}
