package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planvote/planvote/internal/types"
	"github.com/planvote/planvote/internal/ui"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	GroupID: "entities",
	Short:   "Manage projects",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		description, _ := cmd.Flags().GetString("description")

		p := &types.Project{Name: args[0], Description: description}
		if err := svc.CreateProject(rootCtx, actingTenant, p); err != nil {
			FatalError("creating project: %v", err)
		}
		if jsonOutput {
			outputJSON(p)
			return
		}
		fmt.Printf("Created project %s (%s) %s\n",
			ui.RenderAccent(p.Name), p.ID, ui.RenderStatus(types.KindProject, p.Status))
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects in the acting tenant",
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		projects, err := svc.ListProjects(rootCtx, actingTenant)
		if err != nil {
			FatalError("listing projects: %v", err)
		}
		if jsonOutput {
			outputJSON(projects)
			return
		}
		if len(projects) == 0 {
			fmt.Println("No projects.")
			return
		}
		for _, p := range projects {
			fmt.Printf("%s  %s  %s\n",
				p.ID, ui.RenderStatus(types.KindProject, p.Status), p.Name)
		}
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		p, err := svc.GetProject(rootCtx, actingTenant, args[0])
		if err != nil {
			FatalError("loading project %s: %v", args[0], err)
		}
		if jsonOutput {
			outputJSON(p)
			return
		}
		printKV("Project", p.Name)
		printKV("ID", p.ID)
		printKV("Status", ui.RenderStatus(types.KindProject, p.Status))
		printKV("Description", p.Description)
		printKV("Created", p.CreatedAt.Format("2006-01-02"))
	},
}

var projectTransitionCmd = &cobra.Command{
	Use:   "transition <id> <status>",
	Short: "Move a project to a new lifecycle status",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		target := types.Status(args[1])
		if err := svc.TransitionProject(rootCtx, actingTenant, args[0], target); err != nil {
			FatalError("transitioning project %s: %v", args[0], err)
		}
		if jsonOutput {
			outputJSON(map[string]string{"id": args[0], "status": string(target)})
			return
		}
		fmt.Printf("Project %s is now %s\n", args[0], ui.RenderStatus(types.KindProject, target))
	},
}

func init() {
	projectCreateCmd.Flags().StringP("description", "d", "", "Project description")
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectTransitionCmd)
}
