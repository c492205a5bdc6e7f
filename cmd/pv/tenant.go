package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planvote/planvote/internal/types"
	"github.com/planvote/planvote/internal/ui"
)

var tenantCmd = &cobra.Command{
	Use:     "tenant",
	GroupID: "identity",
	Short:   "Manage tenants",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var tenantCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a tenant",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		t := &types.Tenant{Name: args[0]}
		if err := store.CreateTenant(rootCtx, t); err != nil {
			FatalError("creating tenant: %v", err)
		}
		if jsonOutput {
			outputJSON(t)
			return
		}
		fmt.Printf("Created tenant %s (%s)\n", ui.RenderAccent(t.Name), t.ID)
	},
}

var tenantShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the acting user's current tenant",
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		id, _ := actingTenant.ID()
		t, err := store.GetTenant(rootCtx, id)
		if err != nil {
			FatalError("loading tenant: %v", err)
		}
		if jsonOutput {
			outputJSON(t)
			return
		}
		printKV("Tenant", t.Name)
		printKV("ID", t.ID)
		printKV("Created", t.CreatedAt.Format("2006-01-02"))
	},
}

var tenantSwitchCmd = &cobra.Command{
	Use:   "switch <tenant-id>",
	Short: "Switch the acting user's current tenant",
	Long: `Switch the acting user's current tenant. The user must already be a
member of the target tenant (via home assignment or an accepted
invitation).`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if actingUser == nil {
			FatalErrorWithHint("no acting user", "pass --as <user-id-or-email>")
		}
		if err := svc.SwitchTenant(rootCtx, actingUser.ID, args[0]); err != nil {
			FatalError("switching tenant: %v", err)
		}
		if jsonOutput {
			outputJSON(map[string]string{"user_id": actingUser.ID, "tenant_id": args[0]})
			return
		}
		fmt.Printf("Switched %s to tenant %s\n", actingUser.Email, args[0])
	},
}

func init() {
	tenantCmd.AddCommand(tenantCreateCmd)
	tenantCmd.AddCommand(tenantShowCmd)
	tenantCmd.AddCommand(tenantSwitchCmd)
}
