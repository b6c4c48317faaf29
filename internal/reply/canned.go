package reply

import "strings"

const (
	GreetingReply    = "Hello! Welcome to TechNest Support. How can I help you today?"
	GenericReply     = "I'm here to help with TechNest orders, shipping, returns, payments and warranty. What can I do for you?"
	RateLimitedReply = "Too many requests. Please wait a moment and try again."
	ProviderErrReply = "Something went wrong. Please try again or contact support@technest.com."
)

// Topic is one keyword group of the canned responder.
type Topic struct {
	Name     string
	Keywords []string
	// WholeWord requires a keyword to match a complete word instead of a substring.
	WholeWord bool
	Reply     string
}

// DefaultTopics is the priority-ordered topic list. The first match wins.
var DefaultTopics = []Topic{
	{
		Name:     "shipping",
		Keywords: []string{"shipping", "deliver"},
		Reply:    "We offer Standard Shipping (5-7 days, free over $50), Express (2-3 days, $9.99), and Same-Day Delivery in select areas ($14.99).",
	},
	{
		Name:     "returns",
		Keywords: []string{"return", "refund"},
		Reply:    "30-day hassle-free returns. Items must be unused in original packaging. Refunds processed within 5-7 business days.",
	},
	{
		Name:     "payment",
		Keywords: []string{"payment", "pay"},
		Reply:    "We accept Visa, Mastercard, Amex, PayPal, Apple Pay, and Klarna for installment payments.",
	},
	{
		Name:     "support",
		Keywords: []string{"hour", "support", "contact"},
		Reply:    "Support hours: Mon-Fri 9AM-6PM, Sat 10AM-4PM EST. Email support available 24/7.",
	},
	{
		Name:     "warranty",
		Keywords: []string{"warranty", "guarantee"},
		Reply:    "All electronics come with a 1-year manufacturer warranty. An extended 2-year warranty is available for purchase.",
	},
	{
		Name:     "discounts",
		Keywords: []string{"discount", "promo", "coupon", "sale"},
		Reply:    "Sign up for the TechNest newsletter to get 10% off your first order and early access to seasonal sales.",
	},
	{
		Name:      "greeting",
		Keywords:  []string{"hi", "hello", "hey"},
		WholeWord: true,
		Reply:     GreetingReply,
	},
}

// CannedResponder answers by case-insensitive keyword match. It never fails.
type CannedResponder struct {
	Topics   []Topic
	Fallback string
}

func NewCannedResponder() *CannedResponder {
	return &CannedResponder{Topics: DefaultTopics, Fallback: GenericReply}
}

// Respond returns the reply of the first matching topic, or the fallback.
func (c *CannedResponder) Respond(message string) string {
	reply, _ := c.Match(message)
	return reply
}

// Match is Respond plus the name of the matched topic ("" for the fallback).
func (c *CannedResponder) Match(message string) (string, string) {
	lower := strings.ToLower(message)
	var words map[string]struct{}
	for _, topic := range c.Topics {
		for _, kw := range topic.Keywords {
			kw = strings.ToLower(kw)
			if !topic.WholeWord {
				if strings.Contains(lower, kw) {
					return topic.Reply, topic.Name
				}
				continue
			}
			if words == nil {
				words = wordSet(lower)
			}
			if _, ok := words[kw]; ok {
				return topic.Reply, topic.Name
			}
		}
	}
	return c.Fallback, ""
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
	}) {
		set[w] = struct{}{}
	}
	return set
}
