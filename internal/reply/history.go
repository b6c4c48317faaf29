package reply

import "fmt"

// DefaultHistoryWindow is MAX_HISTORY_MESSAGES: prior turns kept for model input.
const DefaultHistoryWindow = 10

// WindowHistory keeps the last n messages, maps them to user/assistant turns
// and drops any leading run of assistant turns so the sequence starts with the
// user. The source slice is never modified.
func WindowHistory(messages []ChatMessage, n int) ([]Turn, error) {
	if n <= 0 {
		n = DefaultHistoryWindow
	}
	start := 0
	if len(messages) > n {
		start = len(messages) - n
	}

	turns := make([]Turn, 0, len(messages)-start)
	for _, msg := range messages[start:] {
		role, err := roleFor(msg.Sender)
		if err != nil {
			return nil, err
		}
		turns = append(turns, Turn{Role: role, Text: msg.Text})
	}

	for len(turns) > 0 && turns[0].Role != RoleUser {
		turns = turns[1:]
	}
	return turns, nil
}

// WindowTurns applies the same truncation and user-first rule to turns that
// were already mapped.
func WindowTurns(turns []Turn, n int) []Turn {
	if n <= 0 {
		n = DefaultHistoryWindow
	}
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	for len(turns) > 0 && turns[0].Role != RoleUser {
		turns = turns[1:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

func roleFor(s Sender) (Role, error) {
	switch s {
	case SenderUser:
		return RoleUser, nil
	case SenderAI:
		return RoleAssistant, nil
	default:
		return "", fmt.Errorf("%w: unknown sender %q", ErrMalformedHistory, s)
	}
}
