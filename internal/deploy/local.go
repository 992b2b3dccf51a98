package deploy

// Stage names shown on the progress lines.
const (
	StageCheckout     = "Locally checking out"
	StageTests        = "Executing tests"
	StagePull         = "Updating source code"
	StageBackup       = "Generating file backup"
	StageRollback     = "Rolling back"
	StageComposer     = "Updating composer"
	StageAssets       = "Installing assets"
	StageMigrations   = "Migrating database"
	StageCacheClear   = "Clearing cache"
	StageRecentCommit = "Listing recent commits"
)

// Checkout fetches and checks out the configured branch in the local working copy.
func (d *Deployer) Checkout(local Runner) error {
	return d.stage(StageCheckout, local,
		d.cmds.GitFetch(),
		d.cmds.GitCheckout(),
		d.cmds.GitPull(),
	)
}

// RunTests runs the test suite locally. It is a no-op unless tests are enabled.
func (d *Deployer) RunTests(local Runner) error {
	if !d.ctx.Profile.Tests.Enabled {
		return nil
	}
	return d.stage(StageTests, local, d.cmds.Tests())
}

// PreDeploy is Checkout followed by RunTests.
func (d *Deployer) PreDeploy(local Runner) error {
	if err := d.Checkout(local); err != nil {
		return err
	}
	return d.RunTests(local)
}
