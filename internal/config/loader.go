package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rileyhilliard/deployr/internal/errors"
	"github.com/rileyhilliard/deployr/internal/util"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is where Symfony projects keep the hosts file.
	DefaultConfigPath = "app/config/hosts.yml"
	// ConfigFileName is the alternative project-root config file name.
	ConfigFileName = ".deployr.yaml"
)

// Load reads the hosts file at path.
func Load(path string) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Config file %s does not exist", path),
				"Run 'deployr init' to create one, or point to it with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. app/config/hosts.yml or .deployr.yaml in the current directory
// 3. The same names in parent directories (stops at git root or home)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		explicit = ExpandTilde(explicit)
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					fmt.Sprintf("Config file %s does not exist", explicit),
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	return findFrom(cwd), nil
}

// findFrom walks up from dir looking for a config file.
func findFrom(dir string) string {
	home, _ := os.UserHomeDir()
	for {
		for _, name := range []string{DefaultConfigPath, ConfigFileName} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}

		// Stop at git root
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return ""
		}

		parent := filepath.Dir(dir)
		if parent == dir || (home != "" && parent == home) {
			return ""
		}
		dir = parent
	}
}

// parseConfig converts viper config to our File struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*File, error) {
	f := &File{Hosts: make(map[string]ServerProfile)}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		testsShorthandHook(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(f, hook); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	for name, p := range f.Hosts {
		p.applyDefaults()
		f.Hosts[name] = p
	}

	return f, nil
}

// testsShorthandHook lets `tests: true` stand in for `tests: {enabled: true}`.
func testsShorthandHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(TestsConfig{}) || from.Kind() != reflect.Bool {
			return data, nil
		}
		return map[string]interface{}{"enabled": data}, nil
	}
}

// Profile returns the profile for the named server.
// Server names are matched case-insensitively since viper lowercases keys.
func (f *File) Profile(name string) (ServerProfile, error) {
	if name == "" {
		return ServerProfile{}, errors.New(errors.ErrConfig,
			"No server selected",
			fmt.Sprintf("Pass one with --server. Available servers: %s", strings.Join(f.ServerNames(), ", ")))
	}

	p, ok := f.Hosts[strings.ToLower(name)]
	if !ok {
		suggestion := fmt.Sprintf("Available servers: %s", util.JoinOrNone(f.ServerNames()))
		if similar := util.SuggestSimilar(name, f.ServerNames(), 1); len(similar) > 0 {
			suggestion = fmt.Sprintf("Did you mean '%s'? %s", similar[0], suggestion)
		}
		return ServerProfile{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("Server %s does not exist in configuration file", name),
			suggestion)
	}
	return p, nil
}

// ServerNames returns the configured server names, sorted.
func (f *File) ServerNames() []string {
	names := make([]string, 0, len(f.Hosts))
	for name := range f.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
