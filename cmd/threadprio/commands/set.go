package commands

import (
	"fmt"
	"strconv"

	"github.com/Swind/go-thread/core"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newSetCmd(a *app) *cobra.Command {
	var raw string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Assign a priority to a finished thread",
		Long: `Spawn an empty thread, wait for it to die, then assign --priority.

The value goes through the dynamic assignment path: integers are stored,
anything else is rejected with a type mismatch and the priority is kept.`,
		Example: `  threadprio set --priority 3
  threadprio set --priority high`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.newRuntime(nil)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Shutdown(cmd.Context()) }()

			t := rt.Spawn(rt.Main(), nil, core.WithName("target"))
			t.Wait()

			before := t.Priority()
			got, err := t.SetPriorityValue(parsePriorityArg(raw))
			out := cmd.OutOrStdout()
			if err != nil {
				fmt.Fprintf(out, "rejected %q: %v (priority stays %d)\n", raw, err, t.Priority())
				return err
			}
			fmt.Fprintf(out, "%s: %d -> %d (returned %d)\n", t, before, t.Priority(), got)
			if got != t.Priority() {
				pterm.Warning.Printf("stored value clamped to [%d, %d]\n", rt.Bounds().Min, rt.Bounds().Max)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&raw, "priority", "p", "", "priority to assign")
	_ = cmd.MarkFlagRequired("priority")
	return cmd
}

// parsePriorityArg returns an int when s is a decimal integer and s itself
// otherwise, so non-integers reach the assignment as strings.
func parsePriorityArg(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return s
}
