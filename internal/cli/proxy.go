package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewProxyCmd создаёт группу команд для наблюдения за проси и команд над
// ними.
func NewProxyCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Observe and control task proxies",
	}

	cmd.AddCommand(
		newProxyListCmd(clientFn, outputFn),
		newProxyShowCmd(clientFn, outputFn),
		newProxyTriggerCmd(clientFn, outputFn),
		newProxyKillCmd(clientFn, outputFn),
		newProxyHoldCmd(clientFn, outputFn),
		newProxyReleaseCmd(clientFn, outputFn),
	)

	return cmd
}

func newProxyListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all live proxies",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			proxies, err := client.ListProxies()
			if err != nil {
				return err
			}

			headers := []string{"NAME", "CYCLE_POINT", "STATUS", "SPAWNED", "SUBMIT_NUM"}
			rows := make([][]string, len(proxies))
			for i, p := range proxies {
				rows[i] = []string{p.Name, p.CyclePoint, p.Status, fmt.Sprintf("%t", p.Spawned), fmt.Sprintf("%d", p.SubmitNum)}
			}

			out.Print(headers, rows, proxies)
			return nil
		},
	}
}

func newProxyShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME.CYCLE_POINT",
		Short: "Show proxy details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			p, err := client.GetProxy(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"NAME", "CYCLE_POINT", "STATUS", "SPAWNED", "SUBMIT_NUM", "SUBMITTED", "STARTED", "FINISHED"},
				[][]string{{p.Name, p.CyclePoint, p.Status, fmt.Sprintf("%t", p.Spawned), fmt.Sprintf("%d", p.SubmitNum), p.SubmittedAt, p.StartedAt, p.FinishedAt}},
				p,
			)
			return nil
		},
	}
}

func newProxyTriggerCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger NAME.CYCLE_POINT",
		Short: "Trigger a proxy for manual submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.TriggerProxy(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Triggered: %s", args[0]))
			return nil
		},
	}
}

func newProxyKillCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "kill NAME.CYCLE_POINT",
		Short: "Kill a proxy's active submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.KillProxy(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Killed: %s", args[0]))
			return nil
		},
	}
}

func newProxyHoldCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "hold NAME.CYCLE_POINT",
		Short: "Hold a proxy, preventing it from becoming ready",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.HoldProxy(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Held: %s", args[0]))
			return nil
		},
	}
}

func newProxyReleaseCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "release NAME.CYCLE_POINT",
		Short: "Release a held proxy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.ReleaseProxy(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Released: %s", args[0]))
			return nil
		},
	}
}
