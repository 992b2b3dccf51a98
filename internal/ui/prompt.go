package ui

import (
	"os"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/deployr/internal/errors"
	"golang.org/x/term"
)

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Confirm asks a yes/no question. Returns false if the user declines or aborts.
func Confirm(title, description string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return false, nil
		}
		return false, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't show the confirmation prompt",
			"Pass --yes to skip confirmation.")
	}
	return ok, nil
}

// PickOption is one entry of a Pick list.
type PickOption struct {
	Label string
	Value string
}

// Pick shows a filterable select and returns the chosen value.
// An aborted prompt returns "" with no error.
func Pick(title string, options []PickOption) (string, error) {
	if len(options) == 0 {
		return "", errors.New(errors.ErrConfig, "Nothing to choose from", "")
	}

	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o.Label, o.Value)
	}

	selected := options[0].Value
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(opts...).
				Height(min(len(opts)+2, 17)).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return "", nil
		}
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't show the selection prompt",
			"Pass the revision as an argument instead of --pick.")
	}
	return selected, nil
}
