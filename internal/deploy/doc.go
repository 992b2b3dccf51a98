// Package deploy implements the deployment and rollback pipelines.
//
// A Deployer is built once per invocation from a Context. Every stage is a
// fixed sequence of shell commands handed to a Runner; the first command
// that does not succeed aborts the stage and every stage after it. Nothing
// is retried and nothing already applied is undone.
//
// The local stages (Checkout, RunTests) run on the operator's machine. The
// remote stages (Backup, Pull, PostDeploy, the rollback checkout) run on a
// host through a Runner whose working directory is the profile's path.
package deploy
