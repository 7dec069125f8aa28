package cli

import (
	"github.com/spf13/cobra"

	"github.com/robalobadob/guesstheword/internal/daily"
)

func init() {
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's puzzle id for each language",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, ids := daily.NewCalendar(nil).Snapshot()
			return printJSON(cmd, map[string]any{"date": day, "games": ids})
		},
	}

	RootCmd.AddCommand(cmd)
}
