package ui

import (
	"fmt"
	"io"

	"github.com/rileyhilliard/deployr/internal/util"
)

// StageWidth is the width stage names are padded to with dots.
const StageWidth = 100

// StageDisplay renders pipeline progress as one padded line per stage:
//
//	Updating source code........................................... ✓
//
// In verbose mode the stage lines are suppressed and only the final
// message and warnings are printed, since the raw command output is
// streamed instead.
type StageDisplay struct {
	w       io.Writer
	verbose bool
	open    bool
}

// NewStageDisplay creates a stage display writing to w.
func NewStageDisplay(w io.Writer, verbose bool) *StageDisplay {
	return &StageDisplay{w: w, verbose: verbose}
}

// StageStarted prints the padded stage name and leaves the line open.
func (sd *StageDisplay) StageStarted(name string) {
	if sd.verbose {
		return
	}
	fmt.Fprint(sd.w, SuccessStyle().Render(util.PadRight(name, StageWidth, '.')))
	sd.open = true
}

// StageSucceeded closes the open line with a check mark.
func (sd *StageDisplay) StageSucceeded(string) {
	if sd.verbose {
		return
	}
	sd.close(SuccessStyle().Render(SymbolSuccess))
}

// StageFailed closes the open line with a cross. The error itself is
// reported by the caller.
func (sd *StageDisplay) StageFailed(string, error) {
	if sd.verbose {
		return
	}
	sd.close(ErrorStyle().Render(SymbolFail))
}

// Done prints the final confirmation after a blank line.
func (sd *StageDisplay) Done(message string) {
	sd.finishLine()
	fmt.Fprintf(sd.w, "\n%s\n", SuccessStyle().Render(message))
}

// Warn prints a yellow follow-up message.
func (sd *StageDisplay) Warn(message string) {
	sd.finishLine()
	fmt.Fprintln(sd.w, WarningStyle().Render(message))
}

// Host prints a header before the stages of one host.
func (sd *StageDisplay) Host(name string, index, total int) {
	sd.finishLine()
	label := fmt.Sprintf("[%s]", name)
	if total > 1 {
		label = fmt.Sprintf("[%s] (%d/%d)", name, index, total)
	}
	fmt.Fprintln(sd.w, MutedStyle().Render(label))
}

func (sd *StageDisplay) close(symbol string) {
	if sd.open {
		fmt.Fprintf(sd.w, "%s\n", symbol)
		sd.open = false
	}
}

// finishLine terminates a stage line left open by an interrupted stage.
func (sd *StageDisplay) finishLine() {
	if sd.open {
		fmt.Fprintln(sd.w)
		sd.open = false
	}
}
