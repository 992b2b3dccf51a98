package config

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/deployr/internal/errors"
)

// shellControlChars may not appear in backup file patterns, which are passed
// to the remote shell unquoted so globs still expand.
const shellControlChars = ";&|`$()<>\n"

// Validate checks every profile in the file.
func Validate(f *File) error {
	if f == nil || len(f.Hosts) == 0 {
		return errors.New(errors.ErrConfig,
			"No servers configured",
			"Add a server under the 'hosts' key, or run 'deployr init' for an example.")
	}

	for _, name := range f.ServerNames() {
		if err := ValidateProfile(name, f.Hosts[name]); err != nil {
			return err
		}
	}
	return nil
}

// ValidateProfile checks a single server profile and returns a ConfigError
// naming the first problem found.
func ValidateProfile(name string, p ServerProfile) error {
	if err := validateProfile(name, p); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Server '%s' is misconfigured", name),
			"Check the 'hosts."+name+"' section of your hosts file.")
	}
	return nil
}

func validateProfile(name string, p ServerProfile) error {
	if len(p.Hosts) == 0 {
		return fmt.Errorf("server '%s' needs at least one host (like 'deploy@web1.example.com')", name)
	}
	for i, h := range p.Hosts {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("server '%s' has an empty host at position %d", name, i)
		}
	}

	if strings.TrimSpace(p.Branch) == "" {
		return fmt.Errorf("server '%s' needs a 'branch' to deploy", name)
	}

	if strings.TrimSpace(p.Path) == "" {
		return fmt.Errorf("server '%s' needs a 'path' - that's where the application lives on the hosts", name)
	}
	if err := validateRemotePath(name, "path", p.Path); err != nil {
		return err
	}

	if p.PHPBin == "" || p.ComposerBin == "" {
		return fmt.Errorf("server '%s' needs both 'php_bin' and 'composer_bin'", name)
	}

	if strings.ContainsAny(p.Environment, " \t") {
		return fmt.Errorf("server '%s' has an environment with whitespace: %q", name, p.Environment)
	}

	return validateBackups(name, p.FileBackups)
}

func validateBackups(name string, b FileBackupsConfig) error {
	if b.NumberOfBackups < 0 {
		return fmt.Errorf("server '%s' has a negative number_of_backups (%d); use 0 to keep every backup", name, b.NumberOfBackups)
	}
	if !b.Enabled {
		return nil
	}

	if strings.TrimSpace(b.DestinationPath) == "" {
		return fmt.Errorf("server '%s' has file backups enabled but no destination_path", name)
	}
	if err := validateRemotePath(name, "file_backups.destination_path", b.DestinationPath); err != nil {
		return err
	}

	if len(b.Files) == 0 {
		return fmt.Errorf("server '%s' has file backups enabled but no files to back up", name)
	}
	for _, f := range b.Files {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("server '%s' has an empty entry in file_backups.files", name)
		}
		if strings.ContainsAny(f, shellControlChars) {
			return fmt.Errorf("server '%s' backup pattern %q contains shell control characters", name, f)
		}
	}
	return nil
}

// validateRemotePath rejects paths the remote shell would mangle.
// ~ and relative paths are allowed; the remote shell resolves them.
func validateRemotePath(name, field, path string) error {
	if strings.Contains(path, "${") {
		return fmt.Errorf("server '%s' has an unexpanded variable in %s: %s", name, field, path)
	}
	if strings.ContainsAny(path, "\n\x00") {
		return fmt.Errorf("server '%s' has a control character in %s", name, field)
	}
	return nil
}
