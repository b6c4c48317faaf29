package reply

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCannedResponder_Match(t *testing.T) {
	c := NewCannedResponder()

	tests := []struct {
		message string
		topic   string
	}{
		{message: "What are your shipping and return options?", topic: "shipping"},
		{message: "When will you DELIVER my laptop?", topic: "shipping"},
		{message: "what's your return policy?", topic: "returns"},
		{message: "I want a refund", topic: "returns"},
		{message: "Can I pay with PayPal?", topic: "payment"},
		{message: "What are your hours?", topic: "support"},
		{message: "Tell me about warranty", topic: "warranty"},
		{message: "Any discount codes?", topic: "discounts"},
		{message: "hello", topic: "greeting"},
		{message: "Hey there!", topic: "greeting"},
		{message: "this is weird", topic: ""},
		{message: "xyz", topic: ""},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			_, topic := c.Match(tt.message)
			assert.Equal(t, tt.topic, topic)
		})
	}
}

func TestCannedResponder_Replies(t *testing.T) {
	c := NewCannedResponder()

	assert.Equal(t, GreetingReply, c.Respond("hello"))
	assert.Equal(t, GenericReply, c.Respond("xyz"))
	assert.NotEqual(t, GreetingReply, GenericReply)
	assert.Equal(t, c.Respond("shipping?"), c.Respond("What are your shipping and return options?"))
}
