package intake

import "strings"

// CompletionMarker is the token the intake prompt asks the model to emit
// once every checklist item is answered.
const CompletionMarker = "INFORMATION_COMPLETE"

// advisoryMinUserTurns is the number of user turns a full intake normally
// takes. Completion before it is allowed but logged.
const advisoryMinUserTurns = 5

// CompletionDetector decides whether a generated reply ends the intake.
type CompletionDetector func(reply string) bool

// MarkerDetector reports whether reply contains CompletionMarker anywhere.
func MarkerDetector(reply string) bool {
	return strings.Contains(reply, CompletionMarker)
}
