// Package coach implements the conversational wellness companion: a scope
// guard for incoming messages, a prompt builder over the derived progress
// context, and an HTTP client for the external text-generation service.
// The language model itself stays external; this package only assembles
// its inputs and protects its boundaries.
package coach

import (
	"regexp"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCOPE GUARD
// Messages outside the companion's scope never reach the language model.
// Harmful content is checked before medical so the safety fallback wins
// when both would match.
// ══════════════════════════════════════════════════════════════════════════════

// FallbackKind classifies why a message was filtered.
type FallbackKind string

const (
	// FallbackNone means the message is in scope.
	FallbackNone FallbackKind = ""

	// FallbackEmpty means the message had no content.
	FallbackEmpty FallbackKind = "empty"

	// FallbackHarmful means the message mentioned self-harm or danger.
	FallbackHarmful FallbackKind = "harmful"

	// FallbackMedical means the message asked for medical advice.
	FallbackMedical FallbackKind = "medical"

	// FallbackOffTopic means the message was unrelated to the quit journey.
	FallbackOffTopic FallbackKind = "off_topic"
)

// medicalKeywords flag questions the companion must not answer.
var medicalKeywords = []string{
	"prescription", "medication", "medicine", "drug", "dosage", "doctor",
	"diagnosis", "treat", "cure", "nicotine patch", "nicotine gum", "varenicline",
	"bupropion", "chantix", "wellbutrin", "side effect", "withdrawal symptom",
	"cancer", "lung disease", "copd", "asthma", "heart disease",
}

// harmfulKeywords flag messages that need a crisis-support response.
var harmfulKeywords = []string{
	"suicide", "kill myself", "self-harm", "hurt myself", "end my life",
	"overdose", "poison", "dangerous",
}

// offTopicPatterns flag common unrelated subjects.
var offTopicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(weather|capital|president|prime minister|movie|music|sports|game|politics)\b`),
	regexp.MustCompile(`\b(recipe|cook|food|restaurant)\b`),
	regexp.MustCompile(`\b(code|programming|python|javascript|software)\b`),
	regexp.MustCompile(`\b(stock|crypto|bitcoin|investment)\b`),
}

// fallbackResponses are the canned replies for filtered messages.
var fallbackResponses = map[FallbackKind]string{
	FallbackMedical:  "I appreciate you reaching out, but I'm not qualified to give medical advice. For questions about medications, treatments, or health concerns, please consult a healthcare professional. I'm here to help you reflect on your smoking patterns and motivations instead.",
	FallbackHarmful:  "I'm concerned about what you shared. If you're going through a difficult time, please reach out to a crisis helpline or mental health professional. You're not alone, and support is available.",
	FallbackOffTopic: "I'm here specifically to help you with your smoking journey. Understanding patterns, managing urges, and staying motivated. Is there something about your quit journey I can help with?",
	FallbackEmpty:    "I didn't catch that. What would you like to know about your smoking habits or progress?",
}

// Guard filters incoming messages down to the companion's scope.
type Guard struct{}

// NewGuard creates a message scope guard.
func NewGuard() *Guard {
	return &Guard{}
}

// Check classifies a message. It returns FallbackNone when the message may
// be forwarded to the language model.
func (g *Guard) Check(message string) FallbackKind {
	if strings.TrimSpace(message) == "" {
		return FallbackEmpty
	}

	lower := strings.ToLower(message)

	for _, kw := range harmfulKeywords {
		if strings.Contains(lower, kw) {
			return FallbackHarmful
		}
	}
	for _, kw := range medicalKeywords {
		if strings.Contains(lower, kw) {
			return FallbackMedical
		}
	}
	for _, re := range offTopicPatterns {
		if re.MatchString(lower) {
			return FallbackOffTopic
		}
	}

	return FallbackNone
}

// FallbackResponse returns the canned reply for a filtered message.
func (g *Guard) FallbackResponse(kind FallbackKind) string {
	return fallbackResponses[kind]
}
