package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/planvote/planvote/internal/types"
	"github.com/planvote/planvote/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	GroupID: "setup",
	Short:   "Show aggregate counts for the acting tenant",
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		stats, err := svc.Statistics(rootCtx, actingTenant)
		if err != nil {
			FatalError("loading statistics: %v", err)
		}
		if jsonOutput {
			outputJSON(stats)
			return
		}
		fmt.Println(ui.RenderHeader("Tenant statistics"))
		fmt.Printf("Projects:    %d\n", stats.TotalProjects)
		fmt.Printf("Features:    %d\n", stats.TotalFeatures)
		fmt.Printf("Plannings:   %d\n", stats.TotalPlannings)
		fmt.Printf("Commitments: %d\n", stats.TotalCommitments)
		fmt.Printf("Votes:       %d\n", stats.TotalVotes)

		if len(stats.FeaturesByStatus) > 0 {
			fmt.Println(ui.RenderHeader("Features by status"))
			statuses := make([]string, 0, len(stats.FeaturesByStatus))
			for s := range stats.FeaturesByStatus {
				statuses = append(statuses, string(s))
			}
			sort.Strings(statuses)
			for _, s := range statuses {
				fmt.Printf("  %-14s %d\n", s, stats.FeaturesByStatus[types.Status(s)])
			}
		}
	},
}
