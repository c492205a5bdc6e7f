package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/planvote/planvote/internal/timeparse"
	"github.com/planvote/planvote/internal/types"
	"github.com/planvote/planvote/internal/ui"
)

var featureCmd = &cobra.Command{
	Use:     "feature",
	GroupID: "entities",
	Short:   "Manage features",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var featureCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a feature in a project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		projectID, _ := cmd.Flags().GetString("project")
		description, _ := cmd.Flags().GetString("description")
		jiraKey, _ := cmd.Flags().GetString("jira")
		if projectID == "" {
			FatalErrorWithHint("no project given", "pass --project <project-id>")
		}

		f := &types.Feature{
			ProjectID:   projectID,
			Name:        args[0],
			Description: description,
			JiraKey:     jiraKey,
		}
		if actingUser != nil {
			f.RequesterID = actingUser.ID
		}
		if err := svc.CreateFeature(rootCtx, actingTenant, f); err != nil {
			FatalError("creating feature: %v", err)
		}
		if jsonOutput {
			outputJSON(f)
			return
		}
		fmt.Printf("Created feature %s (%s) %s\n",
			ui.RenderAccent(f.Name), f.ID, ui.RenderStatus(types.KindFeature, f.Status))
	},
}

var featureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List features",
	Long: `List features in the acting tenant, optionally filtered.

--created-after and --created-before accept compact durations ("-2w",
"3d"), natural language ("last monday", "yesterday") or absolute dates
(RFC3339 or 2006-01-02).`,
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		filter := types.FeatureFilter{}
		filter.ProjectID, _ = cmd.Flags().GetString("project")
		filter.TitleSearch, _ = cmd.Flags().GetString("search")
		filter.Limit, _ = cmd.Flags().GetInt("limit")

		if s, _ := cmd.Flags().GetString("status"); s != "" {
			status := types.Status(s)
			filter.Status = &status
		}
		now := time.Now()
		if s, _ := cmd.Flags().GetString("created-after"); s != "" {
			t, err := timeparse.Parse(s, now)
			if err != nil {
				FatalError("parsing --created-after %q: %v", s, err)
			}
			filter.CreatedAfter = &t
		}
		if s, _ := cmd.Flags().GetString("created-before"); s != "" {
			t, err := timeparse.Parse(s, now)
			if err != nil {
				FatalError("parsing --created-before %q: %v", s, err)
			}
			filter.CreatedBefore = &t
		}

		features, err := svc.ListFeatures(rootCtx, actingTenant, filter)
		if err != nil {
			FatalError("listing features: %v", err)
		}
		if jsonOutput {
			outputJSON(features)
			return
		}
		if len(features) == 0 {
			fmt.Println("No features.")
			return
		}
		for _, f := range features {
			line := fmt.Sprintf("%s  %s  %s", f.ID, ui.RenderStatus(types.KindFeature, f.Status), f.Name)
			if f.JiraKey != "" {
				line += "  " + ui.RenderMuted("["+f.JiraKey+"]")
			}
			fmt.Println(line)
		}
	},
}

var featureShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a feature with comments and dependencies",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		f, err := svc.GetFeature(rootCtx, actingTenant, args[0])
		if err != nil {
			FatalError("loading feature %s: %v", args[0], err)
		}
		deps, err := svc.Dependencies(rootCtx, actingTenant, f.ID)
		if err != nil {
			FatalError("loading dependencies: %v", err)
		}
		comments, err := svc.Comments(rootCtx, actingTenant, f.ID)
		if err != nil {
			FatalError("loading comments: %v", err)
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"feature":      f,
				"dependencies": deps,
				"comments":     comments,
			})
			return
		}
		printKV("Feature", f.Name)
		printKV("ID", f.ID)
		printKV("Project", f.ProjectID)
		printKV("Status", ui.RenderStatus(types.KindFeature, f.Status))
		printKV("Jira", f.JiraKey)
		printKV("Requester", f.RequesterID)
		printKV("Description", f.Description)
		if len(deps) > 0 {
			fmt.Println(ui.RenderSeparator())
			fmt.Println(ui.RenderHeader("Depends on:"))
			for _, d := range deps {
				fmt.Printf("  %s  %s\n", d.ID, d.Name)
			}
		}
		if len(comments) > 0 {
			fmt.Println(ui.RenderSeparator())
			fmt.Println(ui.RenderHeader("Comments:"))
			for _, c := range comments {
				fmt.Printf("  %s %s: %s\n",
					ui.RenderMuted(c.CreatedAt.Format("2006-01-02")), c.AuthorID, c.Body)
			}
		}
	},
}

var featureUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update feature fields",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		updates := map[string]interface{}{}
		if v, _ := cmd.Flags().GetString("name"); v != "" {
			updates["name"] = v
		}
		if v, _ := cmd.Flags().GetString("description"); cmd.Flags().Changed("description") {
			updates["description"] = v
		}
		if v, _ := cmd.Flags().GetString("jira"); cmd.Flags().Changed("jira") {
			updates["jira_key"] = v
		}
		if len(updates) == 0 {
			FatalErrorWithHint("nothing to update", "pass --name, --description or --jira")
		}
		if err := svc.UpdateFeature(rootCtx, actingTenant, args[0], updates); err != nil {
			FatalError("updating feature %s: %v", args[0], err)
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"id": args[0], "updated": len(updates)})
			return
		}
		fmt.Printf("Updated feature %s\n", args[0])
	},
}

var featureTransitionCmd = &cobra.Command{
	Use:   "transition <id> <status>",
	Short: "Move a feature to a new lifecycle status",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		target := types.Status(args[1])
		if err := svc.TransitionFeature(rootCtx, actingTenant, args[0], target); err != nil {
			FatalError("transitioning feature %s: %v", args[0], err)
		}
		if jsonOutput {
			outputJSON(map[string]string{"id": args[0], "status": string(target)})
			return
		}
		fmt.Printf("Feature %s is now %s\n", args[0], ui.RenderStatus(types.KindFeature, target))
	},
}

var featureDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Soft-delete a feature",
	Long: `Soft-delete a feature. The row stays in the database with status
"deleted"; there is no restore and no hard delete.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		if err := svc.DeleteFeature(rootCtx, actingTenant, args[0]); err != nil {
			FatalError("deleting feature %s: %v", args[0], err)
		}
		if jsonOutput {
			outputJSON(map[string]string{"id": args[0], "status": string(types.FeatureDeleted)})
			return
		}
		fmt.Printf("Deleted feature %s\n", args[0])
	},
}

var featureDependCmd = &cobra.Command{
	Use:   "depend <id> <depends-on-id>",
	Short: "Record that one feature depends on another",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		if err := svc.AddDependency(rootCtx, actingTenant, args[0], args[1]); err != nil {
			FatalError("adding dependency: %v", err)
		}
		if jsonOutput {
			outputJSON(map[string]string{"feature_id": args[0], "depends_on_id": args[1]})
			return
		}
		fmt.Printf("Feature %s now depends on %s\n", args[0], args[1])
	},
}

var featureCommentCmd = &cobra.Command{
	Use:   "comment <id> <text>",
	Short: "Comment on a feature",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		if actingUser == nil {
			FatalErrorWithHint("no acting user", "pass --as <user-id-or-email>")
		}
		if err := svc.AddComment(rootCtx, actingTenant, args[0], actingUser.ID, args[1]); err != nil {
			FatalError("adding comment: %v", err)
		}
		if jsonOutput {
			outputJSON(map[string]string{"feature_id": args[0], "author_id": actingUser.ID})
			return
		}
		fmt.Printf("Commented on %s\n", args[0])
	},
}

var featureHistoryCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show a feature's status history",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		history, err := svc.FeatureHistory(rootCtx, actingTenant, args[0])
		if err != nil {
			FatalError("loading history for %s: %v", args[0], err)
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
			from := "(created)"
			if h.FromStatus != nil {
				from = string(*h.FromStatus)
			}
			fmt.Printf("%s  %s → %s\n",
				ui.RenderMuted(h.ChangedAt.Format(time.RFC3339)), from,
				ui.RenderStatus(types.KindFeature, h.ToStatus))
		}
	},
}

func init() {
	featureCreateCmd.Flags().StringP("project", "p", "", "Project id (required)")
	featureCreateCmd.Flags().StringP("description", "d", "", "Feature description")
	featureCreateCmd.Flags().String("jira", "", "External Jira key")

	featureListCmd.Flags().StringP("project", "p", "", "Filter by project id")
	featureListCmd.Flags().StringP("status", "s", "", "Filter by status")
	featureListCmd.Flags().String("search", "", "Substring match on the name")
	featureListCmd.Flags().String("created-after", "", "Only features created after this time")
	featureListCmd.Flags().String("created-before", "", "Only features created before this time")
	featureListCmd.Flags().Int("limit", 0, "Maximum number of rows (0 = all)")

	featureUpdateCmd.Flags().String("name", "", "New name")
	featureUpdateCmd.Flags().StringP("description", "d", "", "New description")
	featureUpdateCmd.Flags().String("jira", "", "New Jira key")

	featureCmd.AddCommand(featureCreateCmd)
	featureCmd.AddCommand(featureListCmd)
	featureCmd.AddCommand(featureShowCmd)
	featureCmd.AddCommand(featureUpdateCmd)
	featureCmd.AddCommand(featureTransitionCmd)
	featureCmd.AddCommand(featureDeleteCmd)
	featureCmd.AddCommand(featureDependCmd)
	featureCmd.AddCommand(featureCommentCmd)
	featureCmd.AddCommand(featureHistoryCmd)
}
