package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robalobadob/guesstheword/internal/httpserver"
)

func init() {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin API helpers",
	}

	hash := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH (reads stdin when no argument)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHashPassword,
	}

	cmd.AddCommand(hash)
	RootCmd.AddCommand(cmd)
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	var pw string
	if len(args) == 1 {
		pw = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		pw = strings.TrimRight(line, "\r\n")
	}

	h, err := httpserver.HashPassword(pw)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), h)
	return nil
}
