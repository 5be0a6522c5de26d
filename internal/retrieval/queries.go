package retrieval

import (
	"strings"

	"github.com/ziadkadry99/physio-intake/internal/conversation"
)

// BuildQueries derives search queries from a conversation: each user message
// verbatim, in order, then all user messages joined by single spaces.
func BuildQueries(msgs []conversation.Message) []string {
	users := conversation.UserMessages(msgs)
	queries := make([]string, 0, len(users)+1)
	contents := make([]string, 0, len(users))
	for _, m := range users {
		queries = append(queries, m.Content)
		contents = append(contents, m.Content)
	}
	return append(queries, strings.Join(contents, " "))
}
