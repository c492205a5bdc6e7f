package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planvote/planvote/internal/types"
	"github.com/planvote/planvote/internal/ui"
)

var voteCmd = &cobra.Command{
	Use:     "vote <planning-id> <feature-id>",
	GroupID: "planning",
	Short:   "Cast a WSJF vote on a feature",
	Long: `Cast a vote on one cost-of-delay dimension. Value is 1..10.
Re-voting on the same (feature, dimension) replaces the earlier value.

Dimensions: business-value, time-criticality, risk-opportunity.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		if actingUser == nil {
			FatalErrorWithHint("no acting user", "pass --as <user-id-or-email>")
		}
		dimension, _ := cmd.Flags().GetString("dimension")
		value, _ := cmd.Flags().GetInt("value")

		v := &types.Vote{
			PlanningID: args[0],
			FeatureID:  args[1],
			VoterID:    actingUser.ID,
			Dimension:  types.Dimension(dimension),
			Value:      value,
		}
		if err := svc.CastVote(rootCtx, actingTenant, v); err != nil {
			FatalError("casting vote: %v", err)
		}
		if jsonOutput {
			outputJSON(v)
			return
		}
		fmt.Printf("Voted %d on %s for feature %s\n", v.Value, v.Dimension, v.FeatureID)
	},
}

var voteTallyCmd = &cobra.Command{
	Use:   "tally <planning-id>",
	Short: "Rank a planning's features by WSJF score",
	Long: `Tally votes and estimations into a WSJF ranking. Cost of delay is
the sum of the mean vote per dimension; the score divides it by the
mean job-size estimation. Unestimated features sink to the bottom.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		scores, err := svc.Tally(rootCtx, actingTenant, args[0])
		if err != nil {
			FatalError("tallying planning %s: %v", args[0], err)
		}
		if jsonOutput {
			outputJSON(scores)
			return
		}
		if len(scores) == 0 {
			fmt.Println("No votes yet.")
			return
		}
		fmt.Println(ui.RenderHeader(fmt.Sprintf("%-4s %-30s %8s %8s %8s %6s",
			"#", "Feature", "CoD", "Size", "Score", "Votes")))
		for i, s := range scores {
			score := fmt.Sprintf("%8.2f", s.Score)
			size := fmt.Sprintf("%8.2f", s.JobSize)
			if s.JobSize == 0 {
				score = ui.RenderMuted(fmt.Sprintf("%8s", "-"))
				size = ui.RenderMuted(fmt.Sprintf("%8s", "-"))
			}
			fmt.Printf("%-4d %-30s %8.2f %s %s %6d\n",
				i+1, truncate(s.FeatureName, 30), s.CostOfDelay, size, score, s.VoteCount)
		}
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func init() {
	voteCmd.Flags().StringP("dimension", "D", "", "Vote dimension (required)")
	voteCmd.Flags().IntP("value", "v", 0, "Vote value 1..10 (required)")
	_ = voteCmd.MarkFlagRequired("dimension")
	_ = voteCmd.MarkFlagRequired("value")

	voteCmd.AddCommand(voteTallyCmd)
}
