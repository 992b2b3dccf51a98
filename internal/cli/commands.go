package cli

import (
	"os"

	"github.com/rileyhilliard/deployr/internal/deploy"
	"github.com/rileyhilliard/deployr/internal/errors"
	"github.com/spf13/cobra"
)

// preDeployCmd checks out the branch locally and runs the tests
var preDeployCmd = &cobra.Command{
	Use:     "pre-deploy",
	Aliases: []string{"pre_deploy"},
	Short:   "Check out the branch locally and run the tests",
	Long: `Fetch and check out the server's branch in the local working copy,
then run the PHPUnit suite if tests are enabled for the server.

Nothing is done on the remote hosts.

Examples:
  deployr pre-deploy --server production`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return preDeployCommand(optionsFromFlags())
	},
}

// deployCmd deploys the branch to every host of the server
var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the branch to every host of a server",
	Long: `Deploy to each host of the server profile, one after another:

  1. Back up the configured files (if file_backups is enabled)
  2. git fetch, checkout and pull the branch
  3. composer update
  4. assets:install (if assets is enabled)
  5. doctrine:migrations:migrate (if database_migrations is set)
  6. cache:clear

The first failing command stops the deploy; later hosts are left untouched.

Examples:
  deployr deploy --server production
  deployr deploy -s staging --verbose`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return deployCommand(optionsFromFlags())
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for deployr.

Examples:
  # Bash
  deployr completion bash > /etc/bash_completion.d/deployr

  # Zsh
  deployr completion zsh > "${fpath[1]}/_deployr"

  # Fish
  deployr completion fish > ~/.config/fish/completions/deployr.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	rootCmd.AddCommand(preDeployCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(completionCmd)
}

// preDeployCommand implements the pre-deploy command logic.
func preDeployCommand(opts WorkflowOptions) error {
	wf, err := SetupWorkflow(opts)
	if err != nil {
		return err
	}
	return wf.Deployer.PreDeploy(wf.Local())
}

// deployCommand implements the deploy command logic.
func deployCommand(opts WorkflowOptions) error {
	wf, err := SetupWorkflow(opts)
	if err != nil {
		return err
	}
	return wf.EachHost(func(remote deploy.Runner) error {
		return wf.Deployer.Deploy(remote)
	})
}
