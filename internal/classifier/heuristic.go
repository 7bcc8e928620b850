package classifier

import "strings"

const (
	CategoryBilling   = "Billing and Payments"
	CategoryAccount   = "Account Access"
	CategoryTechnical = "Technical Support"
	CategorySales     = "Sales and Pricing"
	CategoryGeneral   = "General Inquiry"

	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"

	// texts longer than this are at least Medium priority
	mediumPriorityLength = 120
)

var (
	billingKeywords   = []string{"billing", "invoice", "payment", "paid", "charge", "refund", "card", "upi"}
	accountKeywords   = []string{"login", "password", "signin", "signup", "account", "2fa", "otp", "verification"}
	technicalKeywords = []string{"error", "bug", "issue", "crash", "server", "api", "timeout", "down", "fail", "broken"}
	salesKeywords     = []string{"price", "cost", "quote", "plan", "subscription", "upgrade", "downgrade"}
	urgentKeywords    = []string{"urgent", "asap", "immediately", "critical", "not working", "cannot", "blocked", "failed"}
)

// categoryRules is evaluated in order; the first rule with a matching keyword wins.
var categoryRules = []struct {
	category string
	keywords []string
}{
	{CategoryBilling, billingKeywords},
	{CategoryAccount, accountKeywords},
	{CategoryTechnical, technicalKeywords},
	{CategorySales, salesKeywords},
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func heuristicClassify(text string) Prediction {
	t := strings.ToLower(text)

	category := CategoryGeneral
	for _, rule := range categoryRules {
		if containsAny(t, rule.keywords) {
			category = rule.category
			break
		}
	}

	priority := PriorityLow
	switch {
	case containsAny(t, urgentKeywords):
		priority = PriorityHigh
	case len([]rune(t)) > mediumPriorityLength:
		priority = PriorityMedium
	}

	return Prediction{Category: category, Priority: priority}
}
