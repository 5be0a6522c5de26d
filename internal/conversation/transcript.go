package conversation

import "strings"

// Transcript renders messages one per line as "<Role>: <content>".
func Transcript(msgs []Message) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, m.Role.Label()+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}
