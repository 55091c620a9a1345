package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AI2HU/bookapp/internal/auth"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for auth.password_hash",
	Long: `Print a bcrypt hash of the given password. Put it in auth.password_hash
(or BOOKAPP_PASSWORD_HASH) to keep the plain password out of the config.
Without an argument the password is read from standard input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHashPassword,
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		var err error
		p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
		if password, err = p.required("Password"); err != nil {
			return err
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
