package deploy

import "fmt"

// Deploy backs up files, pulls the branch and runs the post-deploy stages
// on one host.
func (d *Deployer) Deploy(remote Runner) error {
	if err := d.Backup(remote); err != nil {
		return err
	}
	if err := d.Pull(remote); err != nil {
		return err
	}
	if err := d.PostDeploy(remote); err != nil {
		return err
	}

	d.reporter.Done(fmt.Sprintf("Correctly deployed to %s", d.ctx.Server))
	return nil
}

// Rollback pulls so every commit is known, checks out rev, runs the
// post-deploy stages and warns that the database was left alone.
// It returns the revision the host ended up on.
func (d *Deployer) Rollback(remote Runner, rev Revision) (string, error) {
	if err := d.Pull(remote); err != nil {
		return "", err
	}

	resolved, err := d.CheckoutRevision(remote, rev)
	if err != nil {
		return "", err
	}

	if err := d.PostDeploy(remote); err != nil {
		return "", err
	}

	d.reporter.Done(fmt.Sprintf("Correctly rolled back to %s", resolved))
	d.reporter.Warn(RollbackWarning)
	return resolved, nil
}
