package deploy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/deployr/internal/errors"
)

// Backup copies the configured files into a new directory named after the
// current Unix time, then prunes old backups beyond number_of_backups.
// It does nothing unless file backups are enabled.
//
// Two backups started within the same second get the same name; the second
// mkdir then fails and aborts the run.
func (d *Deployer) Backup(remote Runner) error {
	b := d.ctx.Profile.FileBackups
	if !b.Enabled {
		return nil
	}

	d.reporter.StageStarted(StageBackup)
	if err := d.backup(remote); err != nil {
		d.reporter.StageFailed(StageBackup, err)
		return err
	}
	d.reporter.StageSucceeded(StageBackup)
	return nil
}

func (d *Deployer) backup(remote Runner) error {
	b := d.ctx.Profile.FileBackups
	name := strconv.FormatInt(d.now().Unix(), 10)

	if _, err := d.run(remote, d.cmds.BackupMkdir(name)); err != nil {
		return err
	}
	for _, pattern := range b.Files {
		if _, err := d.run(remote, d.cmds.BackupCopy(pattern, name)); err != nil {
			return err
		}
	}

	if b.NumberOfBackups <= 0 {
		return nil
	}

	res, err := d.run(remote, d.cmds.BackupList())
	if err != nil {
		return err
	}
	entries, err := ParseListing(res.Stdout)
	if err != nil {
		return err
	}
	for _, old := range Expired(entries, b.NumberOfBackups) {
		if _, err := d.run(remote, d.cmds.BackupRemove(old)); err != nil {
			return err
		}
	}
	return nil
}

// ParseListing splits `ls -1t` output into entry names, keeping its order.
// Names that could point outside the backup directory are an error, since
// every returned entry may end up in an rm -R.
func ParseListing(out string) ([]string, error) {
	entries := strings.Fields(out)
	for _, name := range entries {
		if !validBackupName(name) {
			return nil, errors.New(errors.ErrExec,
				fmt.Sprintf("Unexpected entry %q in the backup listing", name),
				"Only backup directories should live under destination_path. Remove anything else and try again.")
		}
	}
	return entries, nil
}

func validBackupName(name string) bool {
	return name != "." && name != ".." && !strings.Contains(name, "/")
}

// Expired returns the entries past the first keep of a newest-first listing.
// A keep of zero or less retains everything.
func Expired(newestFirst []string, keep int) []string {
	if keep <= 0 || len(newestFirst) <= keep {
		return nil
	}
	out := make([]string, len(newestFirst)-keep)
	copy(out, newestFirst[keep:])
	return out
}
