package cli

import (
	"fmt"

	"github.com/rileyhilliard/deployr/internal/config"
	"github.com/spf13/cobra"
)

var (
	initForce  bool
	initPath   string
	initServer string
)

// initCmd writes a skeleton hosts file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example hosts file",
	Long: `Write a hosts file with one example server profile, ready to edit.

Examples:
  deployr init
  deployr init --server staging
  deployr init --path .deployr.yaml --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initPath, initServer, initForce)
	},
}

func init() {
	initCmd.Flags().StringVar(&initPath, "path", config.DefaultConfigPath, "where to write the hosts file")
	initCmd.Flags().StringVar(&initServer, "name", "production", "name of the example server")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}

// initCommand implements the init command logic.
func initCommand(path, server string, force bool) error {
	if err := config.WriteExample(path, server, force); err != nil {
		return err
	}
	fmt.Printf("Wrote %s. Edit it, then run 'deployr check --server %s'.\n", path, server)
	return nil
}
