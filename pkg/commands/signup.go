package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rmoflow/pkg/commands/options"
)

func addSignUp(topLevel *cobra.Command) {
	ao := &options.AuthOptions{}
	name := ""

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "create a local account",
		Example: `
rmoflow signup --name "Jo Bloggs" --email jo@example.com --password secret1
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ao.Validate(); err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.close()

			c.sess.Start()
			if err := c.svc.SignUp(context.Background(), name, ao.Email, ao.Password); err != nil {
				return err
			}
			fmt.Printf("Account created for %s\n", ao.Email)
			return nil
		},
	}

	options.AddAuthArgs(cmd, ao)
	cmd.Flags().StringVar(&name, "name", "", "Full name for the profile.")

	topLevel.AddCommand(cmd)
}
