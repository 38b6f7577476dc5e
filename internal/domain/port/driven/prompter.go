// Package driven defines secondary port interfaces for external adapters.
package driven

// Prompter defines the driven port for talking to the operator. The
// application never touches the terminal directly.
type Prompter interface {
	// Say prints an informational line.
	Say(msg string)

	// Ask reads a line of input after showing query.
	Ask(query string) (string, error)

	// AskSecret reads a line of input without echoing it.
	AskSecret(query string) (string, error)

	// AskYesNo asks a yes/no question. def is used for an empty answer; a nil
	// def means the operator must answer explicitly.
	AskYesNo(query string, def *bool) (bool, error)

	// AskChoice asks the operator to pick one of choices and returns its
	// index. def is the index used for an empty answer.
	AskChoice(query string, choices []string, def int) (int, error)
}
