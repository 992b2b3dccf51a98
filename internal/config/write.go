package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/deployr/internal/errors"
	"gopkg.in/yaml.v3"
)

const exampleHeader = `# deployr hosts file.
# Each key under 'hosts' is a server name: deployr deploy --server production
`

// ExampleProfile returns a filled-in profile used by 'deployr init'.
func ExampleProfile() ServerProfile {
	return ServerProfile{
		Branch:       "master",
		Path:         "/var/www/app",
		Hosts:        []string{"deploy@web1.example.com"},
		ForwardAgent: true,
		PHPBin:       DefaultPHPBin,
		ComposerBin:  DefaultComposerBin,
		PHPUnitBin:   "bin/phpunit",
		Console:      DefaultConsole,
		Environment:  DefaultEnvironment,
		Tests:        TestsConfig{Enabled: true},
		Assets: AssetsConfig{
			Enabled:    true,
			TargetPath: "web",
			Symlink:    true,
		},
		FileBackups: FileBackupsConfig{
			DestinationPath: "/var/backups/app",
			Files:           []string{"web/uploads", "app/config/parameters.yml"},
			NumberOfBackups: 5,
		},
	}
}

// WriteExample writes a hosts file with one example server to path.
// An existing file is only replaced when force is set.
func WriteExample(path, server string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("%s already exists", path),
			"Use --force to overwrite it.")
	}

	f := File{Hosts: map[string]ServerProfile{server: ExampleProfile()}}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to encode example config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't create "+dir,
				"Check directory permissions.")
		}
	}

	if err := os.WriteFile(path, append([]byte(exampleHeader), data...), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write "+path,
			"Check directory permissions.")
	}
	return nil
}
