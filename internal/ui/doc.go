// Package ui renders deployr's terminal output.
//
// StageDisplay prints one dot-padded line per pipeline stage followed by a
// check mark or cross, plus the final confirmation and rollback warning.
// Tables (bubbles/table) list configured servers and check results, and the
// prompts (huh) confirm rollbacks and pick a commit to roll back to.
//
// Colors are ANSI codes styled with Lip Gloss; DisableColors switches to
// plain text for --no-color.
package ui
