package config

// Defaults applied to every profile after loading.
const (
	DefaultPHPBin      = "php"
	DefaultComposerBin = "composer"
	DefaultPHPUnitBin  = "phpunit"
	DefaultConsole     = "app/console"
	DefaultEnvironment = "prod"
)

// File represents the complete hosts.yml configuration file.
type File struct {
	// Hosts maps a server name to its deployment profile.
	Hosts map[string]ServerProfile `yaml:"hosts" mapstructure:"hosts"`
}

// ServerProfile is everything needed to deploy one named server.
type ServerProfile struct {
	// Branch is the git branch that gets checked out and pulled.
	Branch string `yaml:"branch" mapstructure:"branch"`

	// Path is the application checkout on the remote hosts.
	Path string `yaml:"path" mapstructure:"path"`

	// Hosts are SSH targets deployed one after another.
	// Can be: hostname, user@hostname, host:port or an SSH config alias.
	Hosts []string `yaml:"hosts" mapstructure:"hosts"`

	// ForwardAgent forwards the local SSH agent so the remote git can
	// authenticate against the repository.
	ForwardAgent bool `yaml:"forward_agent" mapstructure:"forward_agent"`

	PHPBin      string `yaml:"php_bin" mapstructure:"php_bin"`
	ComposerBin string `yaml:"composer_bin" mapstructure:"composer_bin"`
	PHPUnitBin  string `yaml:"phpunit_bin" mapstructure:"phpunit_bin"`

	// Console is the Symfony console script, relative to Path.
	Console string `yaml:"console" mapstructure:"console"`

	// Environment is passed as --env to every console command.
	Environment string `yaml:"environment" mapstructure:"environment"`

	Tests              TestsConfig       `yaml:"tests" mapstructure:"tests"`
	DatabaseMigrations bool              `yaml:"database_migrations" mapstructure:"database_migrations"`
	Assets             AssetsConfig      `yaml:"assets" mapstructure:"assets"`
	FileBackups        FileBackupsConfig `yaml:"file_backups" mapstructure:"file_backups"`
}

// TestsConfig controls the local test run in pre-deploy.
// The YAML shorthand `tests: true` is accepted as well.
type TestsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// AssetsConfig controls assets:install after deploy.
type AssetsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// TargetPath is passed as the positional target argument when set.
	TargetPath string `yaml:"target_path,omitempty" mapstructure:"target_path"`

	Symlink  bool `yaml:"symlink" mapstructure:"symlink"`
	Relative bool `yaml:"relative" mapstructure:"relative"`
}

// FileBackupsConfig controls the timestamped file backups taken before a deploy.
type FileBackupsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// DestinationPath holds one directory per backup, named by Unix timestamp.
	DestinationPath string `yaml:"destination_path" mapstructure:"destination_path"`

	// Files are paths or glob patterns relative to the deployment path.
	Files []string `yaml:"files" mapstructure:"files"`

	// NumberOfBackups is the retention limit. 0 keeps every backup.
	NumberOfBackups int `yaml:"number_of_backups" mapstructure:"number_of_backups"`
}

// applyDefaults fills the optional fields left empty in the file.
func (p *ServerProfile) applyDefaults() {
	if p.PHPBin == "" {
		p.PHPBin = DefaultPHPBin
	}
	if p.ComposerBin == "" {
		p.ComposerBin = DefaultComposerBin
	}
	if p.PHPUnitBin == "" {
		p.PHPUnitBin = DefaultPHPUnitBin
	}
	if p.Console == "" {
		p.Console = DefaultConsole
	}
	if p.Environment == "" {
		p.Environment = DefaultEnvironment
	}
}
