package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/robalobadob/guesstheword/internal/game"
)

func init() {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or repair a chat's stored session",
	}

	show := &cobra.Command{
		Use:   "show <chatID>",
		Short: "Print a chat's session as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionShow,
	}
	reset := &cobra.Command{
		Use:   "reset <chatID>",
		Short: "Abandon a chat's round (settings and history are kept; the round message is not deleted)",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionReset,
	}

	cmd.AddCommand(show, reset)
	RootCmd.AddCommand(cmd)
}

func parseChatID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid chat id %q", s)
	}
	return id, nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	chatID, err := parseChatID(args[0])
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	sess, err := s.Load(cmd.Context(), chatID)
	if err != nil {
		return err
	}
	return printJSON(cmd, sess)
}

func runSessionReset(cmd *cobra.Command, args []string) error {
	chatID, err := parseChatID(args[0])
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	sess, err := s.Load(cmd.Context(), chatID)
	if err != nil {
		return err
	}
	game.NewMachine(nil).Reset(sess)
	sess.GameMessageID = 0
	if err := s.Save(cmd.Context(), chatID, sess); err != nil {
		return err
	}
	return printJSON(cmd, sess)
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
