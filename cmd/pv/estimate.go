package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/planvote/planvote/internal/types"
	"github.com/planvote/planvote/internal/ui"
)

var estimateCmd = &cobra.Command{
	Use:     "estimate <planning-id> <feature-id>",
	GroupID: "planning",
	Short:   "Estimate a feature's job size",
	Long: `Record a job-size estimation for a feature within a planning.
Re-estimating replaces the earlier value and appends to the estimation
history. Components, when given, must sum to the value:

  pv estimate <planning> <feature> --value 8 -c backend=5 -c frontend=3`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		if actingUser == nil {
			FatalErrorWithHint("no acting user", "pass --as <user-id-or-email>")
		}
		value, _ := cmd.Flags().GetInt("value")
		rawComponents, _ := cmd.Flags().GetStringArray("component")

		e := &types.Estimation{
			PlanningID:  args[0],
			FeatureID:   args[1],
			EstimatorID: actingUser.ID,
			Value:       value,
		}
		for _, raw := range rawComponents {
			name, valueStr, ok := strings.Cut(raw, "=")
			if !ok {
				FatalError("invalid component %q (want name=value)", raw)
			}
			v, err := strconv.Atoi(valueStr)
			if err != nil {
				FatalError("invalid component value in %q: %v", raw, err)
			}
			e.Components = append(e.Components, &types.EstimationComponent{Name: name, Value: v})
		}

		if err := svc.Estimate(rootCtx, actingTenant, e); err != nil {
			FatalError("estimating: %v", err)
		}
		if jsonOutput {
			outputJSON(e)
			return
		}
		fmt.Printf("Estimated feature %s at %d\n", e.FeatureID, e.Value)
		for _, c := range e.Components {
			fmt.Printf("  %s: %d\n", c.Name, c.Value)
		}
	},
}

var estimateListCmd = &cobra.Command{
	Use:   "list <planning-id>",
	Short: "List estimations in a planning session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		estimations, err := svc.ListEstimations(rootCtx, actingTenant, args[0])
		if err != nil {
			FatalError("listing estimations: %v", err)
		}
		if jsonOutput {
			outputJSON(estimations)
			return
		}
		if len(estimations) == 0 {
			fmt.Println("No estimations.")
			return
		}
		for _, e := range estimations {
			line := fmt.Sprintf("%s  feature %s  %d  by %s", e.ID, e.FeatureID, e.Value, e.EstimatorID)
			if len(e.Components) > 0 {
				parts := make([]string, 0, len(e.Components))
				for _, c := range e.Components {
					parts = append(parts, fmt.Sprintf("%s=%d", c.Name, c.Value))
				}
				line += "  " + ui.RenderMuted("("+strings.Join(parts, ", ")+")")
			}
			fmt.Println(line)
		}
	},
}

var estimateHistoryCmd = &cobra.Command{
	Use:   "history <estimation-id>",
	Short: "Show how an estimation's value changed over time",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		history, err := svc.EstimationHistory(rootCtx, actingTenant, args[0])
		if err != nil {
			FatalError("loading estimation history: %v", err)
		}
		if jsonOutput {
			outputJSON(history)
			return
		}
		if len(history) == 0 {
			fmt.Println("No history.")
			return
		}
		for _, h := range history {
			fmt.Printf("%s  %d → %d\n",
				ui.RenderMuted(h.ChangedAt.Format(time.RFC3339)), h.OldValue, h.NewValue)
		}
	},
}

func init() {
	estimateCmd.Flags().IntP("value", "v", 0, "Job size value (required)")
	estimateCmd.Flags().StringArrayP("component", "c", nil, "Named component as name=value (repeatable)")
	_ = estimateCmd.MarkFlagRequired("value")

	estimateCmd.AddCommand(estimateListCmd)
	estimateCmd.AddCommand(estimateHistoryCmd)
}
