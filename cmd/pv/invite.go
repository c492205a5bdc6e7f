package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planvote/planvote/internal/ui"
)

var inviteCmd = &cobra.Command{
	Use:     "invite <email>",
	GroupID: "identity",
	Short:   "Invite a user into the acting tenant",
	Long: `Create an invitation for an email address into the acting user's
tenant. The printed invitation id is the acceptance token: whoever
presents it joins the tenant, so share it like a credential.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireActor()
		inv, err := svc.Invite(rootCtx, actingTenant, args[0])
		if err != nil {
			FatalError("creating invitation: %v", err)
		}
		if jsonOutput {
			outputJSON(inv)
			return
		}
		fmt.Printf("Invited %s to tenant %s\n", ui.RenderAccent(inv.Email), inv.TenantID)
		fmt.Printf("Invitation id: %s\n", inv.ID)
		fmt.Printf("Accept with: pv invite accept %s --as %s\n", inv.ID, inv.Email)
	},
}

var inviteAcceptCmd = &cobra.Command{
	Use:   "accept <invitation-id>",
	Short: "Accept an invitation as the acting user",
	Long: `Accept an invitation. Membership, home-tenant adoption (first tenant
only) and the current-tenant switch commit atomically; accepting the
same invitation twice fails.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if actorFlag == "" {
			FatalErrorWithHint("no acting user", "pass --as <user-id-or-email>")
		}
		u, err := svc.AcceptInvitation(rootCtx, actorFlag, args[0])
		if err != nil {
			FatalError("accepting invitation: %v", err)
		}
		if jsonOutput {
			outputJSON(u)
			return
		}
		fmt.Printf("Accepted. %s is now in tenant %s\n", u.Email, *u.CurrentTenantID)
	},
}

func init() {
	inviteCmd.AddCommand(inviteAcceptCmd)
}
