package doctor

import (
	stderrors "errors"
	"fmt"

	"github.com/rileyhilliard/deployr/internal/config"
	"github.com/rileyhilliard/deployr/internal/deploy"
	"github.com/rileyhilliard/deployr/internal/errors"
	"github.com/rileyhilliard/deployr/internal/util"
)

// CategoryConfig groups the checks that run without touching a host.
const CategoryConfig = "Config"

// ProfileCheck validates a server profile and that every pipeline command
// can be built from it.
type ProfileCheck struct {
	Server  string
	Env     string
	Profile config.ServerProfile
}

func (c *ProfileCheck) Name() string     { return "profile" }
func (c *ProfileCheck) Category() string { return CategoryConfig }

func (c *ProfileCheck) Run() CheckResult {
	if err := config.ValidateProfile(c.Server, c.Profile); err != nil {
		return failResult(err)
	}
	if _, err := deploy.NewCommands(deploy.NewContext(c.Server, c.Env, c.Profile)); err != nil {
		return failResult(err)
	}

	n := len(c.Profile.Hosts)
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Profile '%s' is valid (%d %s)", c.Server, n, util.Pluralize(n, "host", "hosts")),
	}
}

// BackupRetentionCheck warns when backups are enabled without rotation.
type BackupRetentionCheck struct {
	Profile config.ServerProfile
}

func (c *BackupRetentionCheck) Name() string     { return "backup_retention" }
func (c *BackupRetentionCheck) Category() string { return CategoryConfig }

func (c *BackupRetentionCheck) Run() CheckResult {
	b := c.Profile.FileBackups
	switch {
	case !b.Enabled:
		return CheckResult{Status: StatusSkip}
	case b.NumberOfBackups == 0:
		return CheckResult{
			Status:     StatusWarn,
			Message:    "File backups are kept forever",
			Suggestion: "Set number_of_backups to rotate old backups.",
		}
	default:
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("Keeping the last %d file backups in %s", b.NumberOfBackups, b.DestinationPath),
		}
	}
}

// ConfigChecks returns the checks that need no connection.
func ConfigChecks(server, env string, profile config.ServerProfile) []Check {
	return []Check{
		&ProfileCheck{Server: server, Env: env, Profile: profile},
		&BackupRetentionCheck{Profile: profile},
	}
}

// failResult turns an error into a failed result, splitting structured
// errors into message and suggestion.
func failResult(err error) CheckResult {
	result := CheckResult{Status: StatusFail, Message: err.Error()}

	var structured *errors.Error
	if stderrors.As(err, &structured) {
		result.Message = structured.Message
		result.Suggestion = structured.Suggestion
		if structured.Cause != nil {
			result.Message += ": " + structured.Cause.Error()
		}
	}
	return result
}
