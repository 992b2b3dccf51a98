package deploy

import "github.com/rileyhilliard/deployr/internal/config"

// Context is everything a pipeline run needs to know about its target.
// It is built once and passed by value, so stages cannot change it.
type Context struct {
	// Server is the profile name as given on the command line.
	Server string

	// Environment is passed as --env to every console command.
	Environment string

	Profile config.ServerProfile
}

// NewContext builds a Context for a resolved profile. An empty env falls back
// to the profile's configured environment.
func NewContext(server, env string, profile config.ServerProfile) Context {
	if env == "" {
		env = profile.Environment
	}
	if env == "" {
		env = config.DefaultEnvironment
	}
	return Context{
		Server:      server,
		Environment: env,
		Profile:     profile,
	}
}
