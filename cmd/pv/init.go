package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/planvote/planvote/internal/config"
	"github.com/planvote/planvote/internal/storage/sqlite"
)

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "setup",
	Short:   "Initialize the planvote directory and database",
	Long: `Create the planvote directory (~/.planvote or $PV_DIR), write a
starter config.yaml, and create the database with its schema.

Safe to re-run: existing config and data are left untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir := config.Dir()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			FatalError("creating %s: %v", dir, err)
		}

		cfgPath := filepath.Join(dir, "config.yaml")
		created := false
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			if err := os.WriteFile(cfgPath, []byte(defaultConfigYAML), 0o644); err != nil {
				FatalError("writing %s: %v", cfgPath, err)
			}
			created = true
		}

		path := dbPath
		if path == "" {
			path = config.LoadLocalConfigWithEnv(dir).DB
		}
		if path == "" {
			path = filepath.Join(dir, "planvote.db")
		}

		// Opening the store applies the schema.
		s, err := sqlite.New(cmd.Context(), path)
		if err != nil {
			FatalError("creating database %s: %v", path, err)
		}
		_ = s.Close()

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"dir":            dir,
				"db":             path,
				"config_created": created,
			})
			return
		}
		fmt.Printf("Initialized planvote in %s\n", dir)
		fmt.Printf("Database: %s\n", path)
		if created {
			fmt.Printf("Config:   %s\n", cfgPath)
		}
	},
}

const defaultConfigYAML = `# planvote configuration
#
# db:    path to the sqlite database (default: <this dir>/planvote.db)
# actor: default acting user (id or email), overridden by --as / PV_ACTOR
# json:  emit JSON output by default
#
# db: /path/to/planvote.db
# actor: alice@example.com
# json: false
`
