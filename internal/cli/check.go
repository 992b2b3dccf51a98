package cli

import (
	"fmt"

	"github.com/rileyhilliard/deployr/internal/doctor"
	"github.com/rileyhilliard/deployr/internal/errors"
	"github.com/rileyhilliard/deployr/internal/host"
	"github.com/rileyhilliard/deployr/internal/logger"
	"github.com/rileyhilliard/deployr/internal/ui"
	"github.com/rileyhilliard/deployr/pkg/sshutil"
	"github.com/spf13/cobra"
)

// checkCmd validates a server profile and probes its hosts
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a server profile and probe its hosts",
	Long: `Validate the server profile, then connect to each of its hosts and
check that the deployment path exists and that php_bin and composer_bin
can be found.

Nothing is changed on the hosts.

Examples:
  deployr check --server production`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := checkCommand(optionsFromFlags())
		if len(results) > 0 {
			fmt.Println(ui.RenderCheckTable(checkRows(results)))
			fmt.Println()
			fmt.Println(doctor.Summary(results))
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkCommand runs the profile checks and, if they pass, the checks of
// every host. The error is non-nil when any check failed.
func checkCommand(opts WorkflowOptions) ([]doctor.CheckResult, error) {
	if opts.Log == nil {
		opts.Log = logger.Default()
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	profile, err := cfg.Profile(opts.Server)
	if err != nil {
		return nil, err
	}

	results := doctor.RunAll(doctor.ConfigChecks(opts.Server, opts.Env, profile))
	if doctor.HasFailures(results) {
		return results, checkFailed(opts.Server)
	}

	connectorOpts := []host.Option{host.WithLogger(opts.Log)}
	if opts.Dial != nil {
		connectorOpts = append(connectorOpts, host.WithDialer(opts.Dial))
	}
	connector := host.NewConnector(sshutil.DialOptions{
		Timeout:      opts.Timeout,
		ForwardAgent: profile.ForwardAgent,
	}, connectorOpts...)

	for _, h := range profile.Hosts {
		session := doctor.NewSession(connector, h)
		results = append(results, doctor.RunAll(doctor.HostChecks(session, opts.Server, profile))...)
		if err := session.Close(); err != nil {
			opts.Log.Debug("closing %s: %v", h, err)
		}
	}

	if doctor.HasFailures(results) {
		return results, checkFailed(opts.Server)
	}
	return results, nil
}

// checkRows converts results for the check table, dropping skipped checks.
func checkRows(results []doctor.CheckResult) []ui.CheckRow {
	rows := make([]ui.CheckRow, 0, len(results))
	for _, r := range results {
		if r.Status == doctor.StatusSkip {
			continue
		}
		rows = append(rows, ui.CheckRow{
			Status:     r.Status.String(),
			Category:   r.Category,
			Message:    r.Message,
			Suggestion: r.Suggestion,
		})
	}
	return rows
}

func checkFailed(server string) error {
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Server '%s' failed its checks", server),
		"Fix the failing checks above and run 'deployr check' again.")
}
