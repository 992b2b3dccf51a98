// Package cli implements the deployr command-line interface.
//
// Each Cobra command delegates to a *Command function that takes plain
// option structs, so the logic can be exercised without parsing flags.
//
// # Command Structure
//
//	deployr pre-deploy          - Local checkout and tests
//	deployr deploy              - Deploy to every host of a server
//	deployr rollback [revision] - Roll every host back
//	deployr servers             - List configured servers
//	deployr check               - Validate a profile and probe its hosts
//	deployr init                - Write an example hosts file
//
// Fabric task syntax such as "rollback:3" or "pre_deploy" is rewritten
// before Cobra parses the arguments.
//
// # Workflow
//
// SetupWorkflow loads the hosts file, resolves the --server profile and
// builds a deploy.Deployer that reports to a ui.StageDisplay. EachHost
// then connects to the profile hosts one at a time and hands the pipeline
// a remote runner rooted at the deployment path.
//
// # Flag Handling
//
// Global flags (--config, --server, --env, --verbose, --no-color,
// --timeout) live on the root command and are bound into viper, so each
// can also be set as DEPLOYR_<FLAG>, e.g. DEPLOYR_SERVER=production.
package cli
