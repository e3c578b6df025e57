package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSummaryCmd создаёт команду для просмотра глобального снимка
// состояния прогона.
func NewSummaryCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the overall run state summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			s, err := client.GetSummary()
			if err != nil {
				return err
			}

			headers := []string{"STATUS", "OLDEST_POINT", "NEWEST_POINT", "RUNAHEAD_POINT", "UPDATED"}
			rows := [][]string{{s.StatusString, s.OldestCyclePoint, s.NewestCyclePoint, s.NewestRunahead, s.LastUpdated}}
			out.Print(headers, rows, s)

			if !out.jsonMode && len(s.StateTotals) > 0 {
				totalHeaders := []string{"TASK_STATUS", "COUNT"}
				totalRows := make([][]string, 0, len(s.StateTotals))
				for status, count := range s.StateTotals {
					totalRows = append(totalRows, []string{status, fmt.Sprintf("%d", count)})
				}
				out.Table(totalHeaders, totalRows)
			}

			return nil
		},
	}
}
