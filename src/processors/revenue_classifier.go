package processors

import (
	"strings"

	"github.com/username/comptafacile/backend/src/models"
)

// NormalizeKeywords parses the company's comma-separated revenue keyword
// list into trimmed, upper-cased tokens. Empty tokens are dropped; an empty
// or unset list yields nil.
func NormalizeKeywords(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var keywords []string
	for _, part := range strings.Split(raw, ",") {
		kw := strings.ToUpper(strings.TrimSpace(part))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// IsRevenue reports whether an INCOME transaction counts as true revenue.
//
// Without keywords every INCOME transaction qualifies. With keywords the
// description must contain at least one of them, case-insensitively, as a
// plain substring. Substring matching is intentional: "VIR" matches both
// "VIREMENT" and "AVIRON". Existing keyword configurations depend on this,
// so do not tighten it to word-boundary matching.
func IsRevenue(tx models.Transaction, keywords []string) bool {
	if tx.Type != models.TransactionTypeIncome {
		return false
	}
	if len(keywords) == 0 {
		return true
	}
	if !tx.Description.Valid {
		return false
	}
	desc := strings.ToUpper(tx.Description.String)
	for _, kw := range keywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}
