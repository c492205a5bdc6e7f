package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planvote/planvote/internal/types"
	"github.com/planvote/planvote/internal/ui"
)

var userCmd = &cobra.Command{
	Use:     "user",
	GroupID: "identity",
	Short:   "Manage users",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create a user",
	Long: `Create a user. With --tenant the user is registered into that home
tenant immediately; without it the user joins a tenant later by
accepting an invitation.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		homeTenant, _ := cmd.Flags().GetString("tenant")

		u := &types.User{Name: name, Email: args[0]}
		if homeTenant != "" {
			u.TenantID = &homeTenant
			u.CurrentTenantID = &homeTenant
		}
		if err := store.CreateUser(rootCtx, u); err != nil {
			FatalError("creating user: %v", err)
		}
		if jsonOutput {
			outputJSON(u)
			return
		}
		fmt.Printf("Created user %s (%s)\n", ui.RenderAccent(u.Email), u.ID)
		if homeTenant != "" {
			fmt.Printf("Home tenant: %s\n", homeTenant)
		}
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show [id-or-email]",
	Short: "Show a user (defaults to the acting user)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var key string
		switch {
		case len(args) == 1:
			key = args[0]
		case actingUser != nil:
			key = actingUser.ID
		default:
			FatalErrorWithHint("no user given", "pass an id or email, or set --as")
		}

		u, err := store.GetUser(rootCtx, key)
		if err != nil {
			FatalError("loading user %s: %v", key, err)
		}
		if jsonOutput {
			outputJSON(u)
			return
		}
		printKV("User", u.Name)
		printKV("Email", u.Email)
		printKV("ID", u.ID)
		if u.TenantID != nil {
			printKV("Home tenant", *u.TenantID)
		}
		if u.CurrentTenantID != nil {
			printKV("Current", *u.CurrentTenantID)
		}
	},
}

func init() {
	userCreateCmd.Flags().String("name", "", "Display name")
	userCreateCmd.Flags().String("tenant", "", "Home tenant id to register into")
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userShowCmd)
}
