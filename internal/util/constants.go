package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// Limits of an inbound chat message, counted in characters after trimming.
const (
	MinMessageLength = 1
	MaxMessageLength = 4000
)

const ServiceName = "technest-support-chat"
