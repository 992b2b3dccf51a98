package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rileyhilliard/deployr/internal/config"
	"github.com/rileyhilliard/deployr/internal/ui"
	"github.com/spf13/cobra"
)

var serversJSON bool

// ServerOutput is one profile in `deployr servers --json`.
type ServerOutput struct {
	Name   string   `json:"name"`
	Branch string   `json:"branch"`
	Path   string   `json:"path"`
	Hosts  []string `json:"hosts"`
	Stages []string `json:"stages"`
}

// serversCmd lists the configured server profiles
var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List the configured servers",
	Long: `Show every server profile in the hosts file with its branch,
deployment path, hosts and the optional stages it runs.

Examples:
  deployr servers
  deployr servers --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serversCommand(Config(), serversJSON)
	},
}

func init() {
	serversCmd.Flags().BoolVar(&serversJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(serversCmd)
}

// serversCommand implements the servers command logic.
func serversCommand(configPath string, asJSON bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	rows := serverRows(cfg)
	if asJSON {
		out := make([]ServerOutput, len(rows))
		for i, r := range rows {
			out[i] = ServerOutput(r)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println(ui.RenderServersTable(rows))
	return nil
}

// serverRows builds one table row per profile, sorted by name.
func serverRows(cfg *config.File) []ui.ServerRow {
	names := cfg.ServerNames()
	rows := make([]ui.ServerRow, 0, len(names))
	for _, name := range names {
		p := cfg.Hosts[name]
		rows = append(rows, ui.ServerRow{
			Name:   name,
			Branch: p.Branch,
			Path:   p.Path,
			Hosts:  p.Hosts,
			Stages: enabledStages(p),
		})
	}
	return rows
}

// enabledStages names the optional stages a profile switches on.
func enabledStages(p config.ServerProfile) []string {
	stages := []string{}
	if p.Tests.Enabled {
		stages = append(stages, "tests")
	}
	if p.FileBackups.Enabled {
		stages = append(stages, "backups")
	}
	if p.Assets.Enabled {
		stages = append(stages, "assets")
	}
	if p.DatabaseMigrations {
		stages = append(stages, "migrations")
	}
	return stages
}
