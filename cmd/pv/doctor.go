package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planvote/planvote/internal/ui"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: "setup",
	Short:   "Repair missing or unknown lifecycle statuses",
	Long: `Scan every entity kind for rows whose status is empty or not part of
the kind's state machine, coerce them to the kind's default, and record
each correction in the status history.

This is a privileged maintenance pass: it crosses tenant boundaries and
needs no --as.`,
	Run: func(cmd *cobra.Command, args []string) {
		results, err := svc.Doctor(rootCtx)
		if err != nil {
			FatalError("repairing statuses: %v", err)
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{
				"repaired": len(results),
				"results":  results,
			})
			return
		}
		if len(results) == 0 {
			fmt.Println("All statuses healthy.")
			return
		}
		for _, r := range results {
			old := r.OldStatus
			if old == "" {
				old = "(empty)"
			}
			fmt.Printf("%s %s: %s → %s\n",
				r.Kind, r.EntityID, ui.RenderError(old), ui.RenderStatus(r.Kind, r.NewStatus))
		}
		fmt.Printf("Repaired %d row(s)\n", len(results))
	},
}
