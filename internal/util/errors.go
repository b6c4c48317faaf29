package util

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrEmptyMessage         = errors.New("message is required")
	ErrMessageTooLong       = errors.New("message is too long")
	ErrInvalidSessionID     = errors.New("sessionId must be a valid UUID")
)
