package cli

import (
	"fmt"

	"github.com/rileyhilliard/deployr/internal/deploy"
	"github.com/rileyhilliard/deployr/internal/errors"
	"github.com/rileyhilliard/deployr/internal/ui"
	"github.com/rileyhilliard/deployr/internal/util"
	"github.com/spf13/cobra"
)

// pickCommitCount is how many recent commits --pick offers.
const pickCommitCount = 15

var (
	rollbackPick bool
	rollbackYes  bool
)

// RollbackOptions holds the rollback-specific flags.
type RollbackOptions struct {
	Revision string
	Pick     bool
	Yes      bool

	// Confirm and Choose replace the interactive prompts in tests.
	Confirm func(title, description string) (bool, error)
	Choose  func(title string, options []ui.PickOption) (string, error)
}

// rollbackCmd checks out an earlier revision on every host
var rollbackCmd = &cobra.Command{
	Use:   "rollback [revision]",
	Short: "Roll every host back to an earlier revision",
	Long: `Check out an earlier revision on each host and re-run the post-deploy
stages (composer, assets, migrations, cache).

The revision is either a number of commits to go back from the branch head
(default 1) or anything git can check out: a hash, tag or branch.

Database migrations are not reverted. Check your database afterwards.

Examples:
  deployr rollback --server production
  deployr rollback 3 --server production
  deployr rollback v1.4.0 -s production
  deployr rollback:a1b2c3d -s production
  deployr rollback --pick -s production`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := RollbackOptions{Pick: rollbackPick, Yes: rollbackYes}
		if len(args) == 1 {
			opts.Revision = args[0]
		}
		return rollbackCommand(optionsFromFlags(), opts)
	},
}

func init() {
	rollbackCmd.Flags().BoolVar(&rollbackPick, "pick", false, "choose the revision from the recent commits on the first host")
	rollbackCmd.Flags().BoolVarP(&rollbackYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(rollbackCmd)
}

// rollbackCommand implements the rollback command logic.
func rollbackCommand(wopts WorkflowOptions, opts RollbackOptions) error {
	if opts.Pick && opts.Revision != "" {
		return errors.New(errors.ErrConfig,
			"--pick and a revision argument cannot be used together",
			"Pass the revision, or use --pick to choose one.")
	}
	if opts.Confirm == nil {
		opts.Confirm = ui.Confirm
	}
	if opts.Choose == nil {
		opts.Choose = ui.Pick
	}

	rev, err := deploy.ParseRevision(opts.Revision)
	if err != nil {
		return err
	}

	wf, err := SetupWorkflow(wopts)
	if err != nil {
		return err
	}

	if opts.Pick {
		picked, err := pickRevision(wf, opts.Choose)
		if err != nil || picked == "" {
			return err
		}
		rev = deploy.RefRevision(picked)
	}

	if !opts.Yes && ui.IsInteractive() {
		ok, err := opts.Confirm(
			fmt.Sprintf("Roll %s back to %s?", wf.Server, describeRevision(rev)),
			"Post-deploy stages run again. Database migrations are not reverted.")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(wf.opts.Out, "Cancelled.")
			return nil
		}
	}

	return wf.EachHost(func(remote deploy.Runner) error {
		_, err := wf.Deployer.Rollback(remote, rev)
		return err
	})
}

// pickRevision lists recent commits on the first host and lets the
// operator choose one. An aborted prompt returns "".
func pickRevision(wf *WorkflowContext, choose func(string, []ui.PickOption) (string, error)) (string, error) {
	var commits []deploy.Commit
	err := wf.FirstHost(func(remote deploy.Runner) error {
		var err error
		commits, err = wf.Deployer.RecentCommits(remote, pickCommitCount)
		return err
	})
	if err != nil {
		return "", err
	}
	if len(commits) == 0 {
		return "", errors.New(errors.ErrRevision,
			"No commits found on "+wf.Profile.Hosts[0],
			"Check that "+wf.Profile.Path+" is a git checkout.")
	}

	options := make([]ui.PickOption, len(commits))
	for i, c := range commits {
		options[i] = ui.PickOption{Label: c.String(), Value: c.Hash}
	}
	return choose("Roll back to", options)
}

func describeRevision(rev deploy.Revision) string {
	if n, ok := rev.Offset(); ok {
		return fmt.Sprintf("%d %s before HEAD", n, util.Pluralize(n, "commit", "commits"))
	}
	return rev.Ref()
}
