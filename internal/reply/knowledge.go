package reply

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultKnowledge is the grounding used when no knowledge items are configured.
const DefaultKnowledge = `
## About TechNest
TechNest is a premium electronics and gadgets e-commerce store.

## Shipping Policy
- FREE shipping on all orders over $50
- Standard Shipping: 5-7 business days
- Express Shipping: 2-3 business days ($9.99)

## Returns & Refunds
- 30-day hassle-free return policy
- Items must be unused and in original packaging
- Refunds processed within 5-7 business days

## Support Hours
- Monday to Friday: 9:00 AM - 6:00 PM EST
- Saturday: 10:00 AM - 4:00 PM EST
- Sunday: Closed

## Payment Methods
- Credit Cards: Visa, Mastercard, Amex
- Digital Wallets: PayPal, Apple Pay, Google Pay
- Buy Now Pay Later: Klarna, Afterpay

## Warranty
- 1-year manufacturer warranty on all electronics
- Extended warranty available for purchase
`

// SortKnowledge returns a copy of items ordered by priority descending, then
// category ascending.
func SortKnowledge(items []KnowledgeItem) []KnowledgeItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b KnowledgeItem) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return sorted
}

// FormatKnowledge renders the grounding block: one "## Category" section per
// category in first-seen order, each item as a Q/A pair.
func FormatKnowledge(items []KnowledgeItem) string {
	if len(items) == 0 {
		return DefaultKnowledge
	}

	sorted := SortKnowledge(items)
	var order []string
	grouped := make(map[string][]KnowledgeItem)
	for _, item := range sorted {
		if _, ok := grouped[item.Category]; !ok {
			order = append(order, item.Category)
		}
		grouped[item.Category] = append(grouped[item.Category], item)
	}

	var b strings.Builder
	for _, category := range order {
		b.WriteString("\n## ")
		b.WriteString(titleCase(category))
		b.WriteString("\n")
		for _, item := range grouped[category] {
			b.WriteString("Q: ")
			b.WriteString(item.Question)
			b.WriteString("\nA: ")
			b.WriteString(item.Answer)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
