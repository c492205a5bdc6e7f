package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/planvote/planvote/internal/timeparse"
	"github.com/planvote/planvote/internal/types"
	"github.com/planvote/planvote/internal/ui"
)

var planningCmd = &cobra.Command{
	Use:     "planning",
	GroupID: "planning",
	Short:   "Manage planning sessions",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var planningCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a planning session for a project",
	Long: `Create a planning session. --planned-at accepts compact durations
("2w"), natural language ("next friday") or absolute dates.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		projectID, _ := cmd.Flags().GetString("project")
		if projectID == "" {
			FatalErrorWithHint("no project given", "pass --project <project-id>")
		}

		p := &types.Planning{ProjectID: projectID, Title: args[0]}
		if s, _ := cmd.Flags().GetString("planned-at"); s != "" {
			t, err := timeparse.Parse(s, time.Now())
			if err != nil {
				FatalError("parsing --planned-at %q: %v", s, err)
			}
			p.PlannedAt = &t
		}
		if err := svc.CreatePlanning(rootCtx, actingTenant, p); err != nil {
			FatalError("creating planning: %v", err)
		}
		if jsonOutput {
			outputJSON(p)
			return
		}
		fmt.Printf("Created planning %s (%s) %s\n",
			ui.RenderAccent(p.Title), p.ID, ui.RenderStatus(types.KindPlanning, p.Status))
	},
}

var planningListCmd = &cobra.Command{
	Use:   "list",
	Short: "List planning sessions",
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		projectID, _ := cmd.Flags().GetString("project")
		plannings, err := svc.ListPlannings(rootCtx, actingTenant, projectID)
		if err != nil {
			FatalError("listing plannings: %v", err)
		}
		if jsonOutput {
			outputJSON(plannings)
			return
		}
		if len(plannings) == 0 {
			fmt.Println("No plannings.")
			return
		}
		for _, p := range plannings {
			line := fmt.Sprintf("%s  %s  %s", p.ID, ui.RenderStatus(types.KindPlanning, p.Status), p.Title)
			if p.PlannedAt != nil {
				line += "  " + ui.RenderMuted(p.PlannedAt.Format("2006-01-02"))
			}
			fmt.Println(line)
		}
	},
}

var planningShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a planning session and its commitments",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		p, err := svc.GetPlanning(rootCtx, actingTenant, args[0])
		if err != nil {
			FatalError("loading planning %s: %v", args[0], err)
		}
		commitments, err := svc.ListCommitments(rootCtx, actingTenant, p.ID)
		if err != nil {
			FatalError("loading commitments: %v", err)
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"planning": p, "commitments": commitments})
			return
		}
		printKV("Planning", p.Title)
		printKV("ID", p.ID)
		printKV("Project", p.ProjectID)
		printKV("Status", ui.RenderStatus(types.KindPlanning, p.Status))
		if p.PlannedAt != nil {
			printKV("Planned at", p.PlannedAt.Format("2006-01-02"))
		}
		if len(commitments) > 0 {
			fmt.Println(ui.RenderSeparator())
			fmt.Println(ui.RenderHeader("Commitments:"))
			for _, c := range commitments {
				fmt.Printf("  %s  %s  feature %s\n",
					c.ID, ui.RenderStatus(types.KindCommitment, c.Status), c.FeatureID)
			}
		}
	},
}

var planningTransitionCmd = &cobra.Command{
	Use:   "transition <id> <status>",
	Short: "Move a planning session to a new lifecycle status",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		target := types.Status(args[1])
		if err := svc.TransitionPlanning(rootCtx, actingTenant, args[0], target); err != nil {
			FatalError("transitioning planning %s: %v", args[0], err)
		}
		if jsonOutput {
			outputJSON(map[string]string{"id": args[0], "status": string(target)})
			return
		}
		fmt.Printf("Planning %s is now %s\n", args[0], ui.RenderStatus(types.KindPlanning, target))
	},
}

func init() {
	planningCreateCmd.Flags().StringP("project", "p", "", "Project id (required)")
	planningCreateCmd.Flags().String("planned-at", "", "When the session takes place")

	planningListCmd.Flags().StringP("project", "p", "", "Filter by project id")

	planningCmd.AddCommand(planningCreateCmd)
	planningCmd.AddCommand(planningListCmd)
	planningCmd.AddCommand(planningShowCmd)
	planningCmd.AddCommand(planningTransitionCmd)
}
