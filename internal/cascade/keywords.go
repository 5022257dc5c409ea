package cascade

import "strings"

// Keyword heuristics: cheap substring checks that catch recognizable intents
// before the expensive generative tier, returning a templated
// clarification without any external calls.

var businessKeywords = []string{
	"price", "pricing", "cost", "quote", "plan", "subscription",
	"order", "refund", "return", "invoice", "payment", "billing",
	"service", "services", "how long", "delivery", "shipping",
}

var technicalKeywords = []string{
	"error", "bug", "crash", "broken", "not working", "login",
	"password", "account", "install", "setup", "configure",
	"integration", "api", "sync",
}

func keywordResponse(question string) (string, bool) {
	q := strings.ToLower(question)
	for _, kw := range businessKeywords {
		if strings.Contains(q, kw) {
			return "It sounds like you're asking about our offerings. Could you share a few more details, for example which product or service you mean, so I can point you to the right answer?", true
		}
	}
	for _, kw := range technicalKeywords {
		if strings.Contains(q, kw) {
			return "That looks like a technical question. Could you describe what you were doing and what happened? I'll do my best to help, or connect you with our support team.", true
		}
	}
	return "", false
}
