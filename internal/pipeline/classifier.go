package pipeline

import (
	"strings"

	"github.com/theirongolddev/cashpulse/internal/model"
)

// Default keyword sets for KeywordClassifier.
var (
	DefaultIncomeKeywords          = []string{"salary", "wage", "pay", "income"}
	DefaultSavingsTransferKeywords = []string{"transfer from cheque", "transfer to cheque"}
)

// Classifier decides which transactions count as income and which as
// movements into savings.
type Classifier interface {
	IsIncome(tx model.Transaction) bool
	IsSavingsTransfer(tx model.Transaction) bool
}

// KeywordClassifier matches lower-cased description substrings. It is a
// heuristic: "pay" also matches "paypal refund", and a salary labelled only
// with the employer name is missed.
type KeywordClassifier struct {
	incomeKeywords   []string
	transferKeywords []string
}

// NewKeywordClassifier builds a classifier from keyword lists. Empty lists
// fall back to the defaults.
func NewKeywordClassifier(income, transfers []string) *KeywordClassifier {
	if len(income) == 0 {
		income = DefaultIncomeKeywords
	}
	if len(transfers) == 0 {
		transfers = DefaultSavingsTransferKeywords
	}
	return &KeywordClassifier{
		incomeKeywords:   lowerAll(income),
		transferKeywords: lowerAll(transfers),
	}
}

// DefaultClassifier returns a KeywordClassifier with the default keywords.
func DefaultClassifier() *KeywordClassifier {
	return NewKeywordClassifier(nil, nil)
}

// IsIncome reports a positive transaction whose description looks like income.
func (c *KeywordClassifier) IsIncome(tx model.Transaction) bool {
	return tx.Amount > 0 && matchesAny(tx.Description, c.incomeKeywords)
}

// IsSavingsTransfer reports a transaction whose description looks like a
// transfer between the main account and savings.
func (c *KeywordClassifier) IsSavingsTransfer(tx model.Transaction) bool {
	return matchesAny(tx.Description, c.transferKeywords)
}

func matchesAny(description string, keywords []string) bool {
	desc := strings.ToLower(description)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
