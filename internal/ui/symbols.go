package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess = "✓" // Stage completed successfully
	SymbolFail    = "✗" // Stage failed
	SymbolWarning = "⚠" // Needs the operator's attention
	SymbolPending = "○" // Not checked
)
