// Command pv is the planvote CLI: a multi-tenant WSJF feature planner.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/planvote/planvote/internal/config"
	"github.com/planvote/planvote/internal/service"
	"github.com/planvote/planvote/internal/storage"
	"github.com/planvote/planvote/internal/storage/sqlite"
	"github.com/planvote/planvote/internal/telemetry"
	"github.com/planvote/planvote/internal/tenant"
	"github.com/planvote/planvote/internal/types"
)

var (
	// Global flags, bound on rootCmd.
	dbPath     string
	actorFlag  string
	jsonOutput bool

	// Per-invocation state populated by PersistentPreRun.
	store        storage.Storage
	svc          *service.Service
	actingTenant tenant.Context
	actingUser   *types.User

	rootCtx    context.Context
	rootCancel context.CancelFunc
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&actorFlag, "as", "", "Acting user (id or email); resolves the tenant scope")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddGroup(&cobra.Group{ID: "planning", Title: "Planning & Voting:"})
	rootCmd.AddGroup(&cobra.Group{ID: "entities", Title: "Projects & Features:"})
	rootCmd.AddGroup(&cobra.Group{ID: "identity", Title: "Tenants & Users:"})
	rootCmd.AddGroup(&cobra.Group{ID: "setup", Title: "Setup & Maintenance:"})

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(tenantCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(inviteCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(featureCmd)
	rootCmd.AddCommand(planningCmd)
	rootCmd.AddCommand(commitmentCmd)
	rootCmd.AddCommand(voteCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

// noDbCommands never open the database.
func isNoDbCommand(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion", "init":
		return true
	}
	return false
}

var rootCmd = &cobra.Command{
	Use:   "pv",
	Short: "pv - WSJF feature planner",
	Long: `Weighted-shortest-job-first planning for feature backlogs.

Stakeholders vote on business value, time criticality and risk; teams
estimate job size; pv tallies cost of delay and ranks the features.
Every row is scoped to a tenant resolved from the acting user (--as).`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

		dir := config.Dir()
		if err := config.Initialize(dir); err != nil {
			FatalError("reading config: %v", err)
		}
		local := config.LoadLocalConfigWithEnv(dir)

		if !jsonOutput {
			jsonOutput = local.JSON || config.GetBool("json")
		}
		if actorFlag == "" {
			actorFlag = local.Actor
		}

		if isNoDbCommand(cmd) {
			return
		}

		if dbPath == "" {
			dbPath = local.DB
		}
		if dbPath == "" {
			dbPath = config.GetString("db")
		}

		// Sync the effective values back so config reads after flag
		// resolution see what the command actually used.
		config.Set("db", dbPath)
		config.Set("json", jsonOutput)
		if actorFlag != "" {
			config.Set("actor", actorFlag)
		}

		if err := telemetry.Init(rootCtx, "pv", Version); err != nil {
			WarnError("telemetry init failed: %v", err)
		}

		s, err := sqlite.New(rootCtx, dbPath)
		if err != nil {
			FatalError("opening database %s: %v", dbPath, err)
		}
		store = telemetry.WrapStorage(s)
		svc = service.New(store)

		actingTenant = tenant.None()
		if actorFlag != "" {
			tc, u, err := svc.ContextFor(rootCtx, actorFlag)
			if err != nil {
				FatalError("resolving acting user %s: %v", actorFlag, err)
			}
			actingTenant = tc
			actingUser = u
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
		}
		telemetry.Shutdown(context.Background())
		if rootCancel != nil {
			rootCancel()
		}
	},
}

// requireActor aborts commands that cannot run without a resolved
// tenant scope. Reads would silently return nothing; failing early
// with a hint is kinder.
func requireActor() {
	if !actingTenant.Resolved() {
		FatalErrorWithHint("no tenant scope",
			"pass --as <user-id-or-email>, set PV_ACTOR, or put actor: in config.yaml")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
