package deploy

// Reporter receives progress from a pipeline run.
type Reporter interface {
	// StageStarted is called before the first command of a stage.
	StageStarted(name string)
	StageSucceeded(name string)
	StageFailed(name string, err error)

	// Done prints the final confirmation of a successful run.
	Done(message string)

	// Warn prints a follow-up the operator has to act on.
	Warn(message string)
}

type nopReporter struct{}

func (nopReporter) StageStarted(string)       {}
func (nopReporter) StageSucceeded(string)     {}
func (nopReporter) StageFailed(string, error) {}
func (nopReporter) Done(string)               {}
func (nopReporter) Warn(string)               {}

// NopReporter returns a Reporter that discards everything.
func NopReporter() Reporter {
	return nopReporter{}
}
