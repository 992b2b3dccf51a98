package deploy

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/rileyhilliard/deployr/internal/errors"
	"github.com/rileyhilliard/deployr/internal/util"
)

var envName = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Commands builds every shell command a pipeline issues for one Context.
//
// Paths, refs and the environment are single-quoted. Binary settings are
// inserted verbatim so values like "php composer.phar" keep working, and
// backup file patterns stay unquoted so the remote shell expands globs.
type Commands struct {
	ctx Context
}

// NewCommands checks that the profile carries every field the enabled stages
// need and returns a ConfigError naming the first one that is missing.
func NewCommands(ctx Context) (*Commands, error) {
	p := ctx.Profile

	required := []struct {
		field string
		value string
		need  bool
	}{
		{"path", p.Path, true},
		{"branch", p.Branch, true},
		{"php_bin", p.PHPBin, true},
		{"composer_bin", p.ComposerBin, true},
		{"console", p.Console, true},
		{"phpunit_bin", p.PHPUnitBin, p.Tests.Enabled},
		{"file_backups.destination_path", p.FileBackups.DestinationPath, p.FileBackups.Enabled},
	}
	for _, r := range required {
		if r.need && strings.TrimSpace(r.value) == "" {
			return nil, missingField(ctx.Server, r.field)
		}
	}

	if p.FileBackups.Enabled && len(p.FileBackups.Files) == 0 {
		return nil, missingField(ctx.Server, "file_backups.files")
	}
	if strings.TrimSpace(ctx.Environment) == "" {
		return nil, missingField(ctx.Server, "environment")
	}
	if !envName.MatchString(ctx.Environment) {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid environment name %q", ctx.Environment),
			"Environment names may only contain letters, digits, '.', '_' and '-'.")
	}

	return &Commands{ctx: ctx}, nil
}

func missingField(server, field string) error {
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Server '%s' has no %s", server, field),
		fmt.Sprintf("Set hosts.%s.%s in the config file.", server, field))
}

// WorkDir is the remote deployment path every remote command runs in.
func (c *Commands) WorkDir() string {
	return c.ctx.Profile.Path
}

func (c *Commands) GitFetch() string {
	return "git fetch"
}

// GitCheckout checks out the configured branch.
func (c *Commands) GitCheckout() string {
	return c.GitCheckoutRef(c.ctx.Profile.Branch)
}

func (c *Commands) GitCheckoutRef(ref string) string {
	return "git checkout " + util.ShellQuote(ref)
}

func (c *Commands) GitCheckoutOffset(n int) string {
	return "git checkout HEAD~" + strconv.Itoa(n)
}

func (c *Commands) GitPull() string {
	return "git pull origin " + util.ShellQuote(c.ctx.Profile.Branch)
}

func (c *Commands) GitShortHead() string {
	return "git rev-parse --short HEAD"
}

// GitLog lists the last n commits, one "<hash> <subject>" per line.
func (c *Commands) GitLog(n int) string {
	return "git log --oneline -n " + strconv.Itoa(n)
}

// Tests runs the phpunit suite scoped to the app directory.
func (c *Commands) Tests() string {
	return c.ctx.Profile.PHPUnitBin + " -c app"
}

func (c *Commands) ComposerUpdate() string {
	return c.ctx.Profile.ComposerBin + " update"
}

// AssetsInstall appends the optional arguments in a fixed order:
// target path, --symlink, --relative.
func (c *Commands) AssetsInstall() string {
	a := c.ctx.Profile.Assets

	args := []string{"assets:install", c.envFlag()}
	if a.TargetPath != "" {
		args = append(args, util.ShellQuote(a.TargetPath))
	}
	if a.Symlink {
		args = append(args, "--symlink")
	}
	if a.Relative {
		args = append(args, "--relative")
	}
	return c.console(args...)
}

func (c *Commands) Migrate() string {
	return c.console("doctrine:migrations:migrate", c.envFlag(), "--no-interaction")
}

func (c *Commands) CacheClear() string {
	return c.console("cache:clear", c.envFlag())
}

// BackupDir is the directory one backup is written to.
func (c *Commands) BackupDir(name string) string {
	return path.Join(c.ctx.Profile.FileBackups.DestinationPath, name)
}

func (c *Commands) BackupMkdir(name string) string {
	return "mkdir " + util.ShellQuote(c.BackupDir(name))
}

// BackupCopy copies pattern into the backup keeping its parent directories.
// The pattern is relative to the deployment path and left unquoted.
func (c *Commands) BackupCopy(pattern, name string) string {
	return "cp -Ra --parents " + pattern + " " + util.ShellQuote(c.BackupDir(name))
}

// BackupList lists the backups under the destination, newest first.
func (c *Commands) BackupList() string {
	return "ls -1t " + util.ShellQuote(c.ctx.Profile.FileBackups.DestinationPath)
}

func (c *Commands) BackupRemove(name string) string {
	return "rm -R " + util.ShellQuote(c.BackupDir(name))
}

func (c *Commands) console(args ...string) string {
	script := path.Join(c.ctx.Profile.Path, c.ctx.Profile.Console)
	return c.ctx.Profile.PHPBin + " " + util.ShellQuote(script) + " " + strings.Join(args, " ")
}

func (c *Commands) envFlag() string {
	return "--env=" + c.ctx.Environment
}
