package deploy

// Pull brings the remote checkout up to date with the configured branch.
// Running it twice against an unchanged branch leaves the host as it was.
func (d *Deployer) Pull(remote Runner) error {
	return d.stage(StagePull, remote,
		d.cmds.GitFetch(),
		d.cmds.GitCheckout(),
		d.cmds.GitPull(),
	)
}
