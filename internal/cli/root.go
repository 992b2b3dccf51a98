package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rileyhilliard/deployr/internal/errors"
	"github.com/rileyhilliard/deployr/internal/ui"
	"github.com/rileyhilliard/deployr/internal/util"
	"github.com/rileyhilliard/deployr/pkg/sshutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment variables bound to flags,
// e.g. DEPLOYR_SERVER or DEPLOYR_VERBOSE.
const envPrefix = "DEPLOYR"

var rootCmd = &cobra.Command{
	Use:   "deployr",
	Short: "Deploy Symfony applications to your servers over SSH",
	Long: `deployr deploys a PHP/Symfony application to the hosts of a server
profile defined in app/config/hosts.yml.

Each host gets a git pull of the configured branch followed by a composer
update, assets install, doctrine migrations and a cache clear. Optional
file backups are taken before the pull.

Examples:
  deployr pre-deploy --server staging
  deployr deploy --server production
  deployr rollback 2 --server production
  deployr rollback:v1.4.0 -s production`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("no-color") {
			ui.DisableColors()
		}
	},
}

func init() {
	cobra.OnInitialize(initEnv)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "hosts file (default: app/config/hosts.yml or .deployr.yaml)")
	flags.StringP("server", "s", "", "server profile to deploy to")
	flags.String("env", "", "Symfony environment for console commands (default: the profile's, then prod)")
	flags.BoolP("verbose", "v", false, "stream every command and its output instead of progress lines")
	flags.Bool("no-color", false, "disable colored output")
	flags.Duration("timeout", sshutil.DefaultDialTimeout, "SSH connection timeout")

	for _, name := range []string{"config", "server", "env", "verbose", "no-color", "timeout"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

// initEnv lets DEPLOYR_* environment variables stand in for flags.
func initEnv() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Config returns the --config flag value.
func Config() string {
	return viper.GetString("config")
}

// Server returns the selected server profile name.
func Server() string {
	return viper.GetString("server")
}

// Env returns the --env override, empty when unset.
func Env() string {
	return viper.GetString("env")
}

// Verbose reports whether raw command output should be streamed.
func Verbose() bool {
	return viper.GetBool("verbose")
}

// Timeout returns the SSH dial timeout.
func Timeout() time.Duration {
	if d := viper.GetDuration("timeout"); d > 0 {
		return d
	}
	return sshutil.DefaultDialTimeout
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	rootCmd.SetArgs(ExpandFabricArgs(os.Args[1:]))

	err := rootCmd.Execute()
	sshutil.CloseAgent()

	if err != nil {
		if isUnknownCommandError(err) {
			err = unknownCommandError(err)
		}
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(errors.ExitCode(err))
	}
}

// isUnknownCommandError reports whether cobra rejected the command line itself.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "deployr"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

// unknownCommandError converts cobra's message into a config error with a
// "did you mean" hint.
func unknownCommandError(err error) error {
	name := extractUnknownCommand(err)
	if name == "" {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Run 'deployr --help' for usage.")
	}

	var commands []string
	for _, c := range rootCmd.Commands() {
		commands = append(commands, c.Name())
		commands = append(commands, c.Aliases...)
	}

	suggestion := "Run 'deployr --help' to see the available commands."
	if similar := util.SuggestSimilar(name, commands, 1); len(similar) > 0 {
		suggestion = fmt.Sprintf("Did you mean '%s'? %s", similar[0], suggestion)
	}
	return errors.New(errors.ErrConfig, fmt.Sprintf("Unknown command '%s'", name), suggestion)
}
