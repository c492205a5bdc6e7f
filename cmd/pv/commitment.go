package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planvote/planvote/internal/types"
	"github.com/planvote/planvote/internal/ui"
)

var commitmentCmd = &cobra.Command{
	Use:     "commitment",
	GroupID: "planning",
	Short:   "Manage commitments (features suggested into a planning)",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var commitmentSuggestCmd = &cobra.Command{
	Use:   "suggest <planning-id> <feature-id>",
	Short: "Suggest a feature for a planning session",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		c, err := svc.SuggestFeature(rootCtx, actingTenant, args[0], args[1])
		if err != nil {
			FatalError("suggesting feature: %v", err)
		}
		if jsonOutput {
			outputJSON(c)
			return
		}
		fmt.Printf("Suggested feature %s into planning %s (commitment %s)\n",
			args[1], args[0], c.ID)
	},
}

var commitmentAcceptCmd = &cobra.Command{
	Use:   "accept <id>...",
	Short: "Accept one or more suggested commitments",
	Long: `Accept suggested commitments. The batch is atomic: if any id is
unknown or not in a state that can move to accepted, nothing changes.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		if err := svc.AcceptCommitments(rootCtx, actingTenant, args); err != nil {
			FatalError("accepting commitments: %v", err)
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"accepted": args})
			return
		}
		fmt.Printf("Accepted %d commitment(s)\n", len(args))
	},
}

var commitmentTransitionCmd = &cobra.Command{
	Use:   "transition <id> <status>",
	Short: "Move a commitment to a new lifecycle status",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		target := types.Status(args[1])
		if err := svc.TransitionCommitment(rootCtx, actingTenant, args[0], target); err != nil {
			FatalError("transitioning commitment %s: %v", args[0], err)
		}
		if jsonOutput {
			outputJSON(map[string]string{"id": args[0], "status": string(target)})
			return
		}
		fmt.Printf("Commitment %s is now %s\n", args[0], ui.RenderStatus(types.KindCommitment, target))
	},
}

var commitmentListCmd = &cobra.Command{
	Use:   "list <planning-id>",
	Short: "List commitments in a planning session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		commitments, err := svc.ListCommitments(rootCtx, actingTenant, args[0])
		if err != nil {
			FatalError("listing commitments: %v", err)
		}
		if jsonOutput {
			outputJSON(commitments)
			return
		}
		if len(commitments) == 0 {
			fmt.Println("No commitments.")
			return
		}
		for _, c := range commitments {
			fmt.Printf("%s  %s  feature %s\n",
				c.ID, ui.RenderStatus(types.KindCommitment, c.Status), c.FeatureID)
		}
	},
}

func init() {
	commitmentCmd.AddCommand(commitmentSuggestCmd)
	commitmentCmd.AddCommand(commitmentAcceptCmd)
	commitmentCmd.AddCommand(commitmentTransitionCmd)
	commitmentCmd.AddCommand(commitmentListCmd)
}
