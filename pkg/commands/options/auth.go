package options

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

// AuthOptions identify the account one-shot commands act on. Flags fall
// back to RMOFLOW_EMAIL and RMOFLOW_PASSWORD so scripts need not embed
// credentials on the command line.
type AuthOptions struct {
	Email    string
	Password string
}

func AddAuthArgs(cmd *cobra.Command, o *AuthOptions) {
	cmd.Flags().StringVar(&o.Email, "email", os.Getenv("RMOFLOW_EMAIL"),
		"Account email.")
	cmd.Flags().StringVar(&o.Password, "password", os.Getenv("RMOFLOW_PASSWORD"),
		"Account password.")
}

// Validate reports whether both credentials are present.
func (o *AuthOptions) Validate() error {
	if o.Email == "" || o.Password == "" {
		return errors.New("credentials required: --email/--password or RMOFLOW_EMAIL/RMOFLOW_PASSWORD")
	}
	return nil
}
