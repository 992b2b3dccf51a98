package deploy

// PostDeploy runs composer, the optional asset install and migrations, and
// finally clears the cache. The first failing step stops the rest.
func (d *Deployer) PostDeploy(remote Runner) error {
	p := d.ctx.Profile

	if err := d.stage(StageComposer, remote, d.cmds.ComposerUpdate()); err != nil {
		return err
	}
	if p.Assets.Enabled {
		if err := d.stage(StageAssets, remote, d.cmds.AssetsInstall()); err != nil {
			return err
		}
	}
	if p.DatabaseMigrations {
		if err := d.stage(StageMigrations, remote, d.cmds.Migrate()); err != nil {
			return err
		}
	}
	return d.stage(StageCacheClear, remote, d.cmds.CacheClear())
}
