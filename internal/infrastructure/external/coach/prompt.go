package coach

import (
	"fmt"
	"strings"

	"github.com/respira-app/respira-server/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROMPT BUILDER
// The model never sees raw events. It gets the derived context summary,
// a short history window and the user message, under fixed system rules.
// ══════════════════════════════════════════════════════════════════════════════

// Message roles in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// historyWindow is how many recent messages the prompt carries (3 pairs).
const historyWindow = 6

// SystemPrompt holds the fixed conversation rules sent with every request.
const SystemPrompt = `You are a highly helpful, intelligent, and conversational wellness assistant. Your primary goal is to help users quit smoking by providing specific insights based on their personal data.

CORE CONVERSATION RULES:
1. ONLY answer questions about smoking, habits, progress, urges, and the user's data. If asked about unrelated topics, politely redirect.
2. GROUND every response in the user's data (high-risk times, triggers, streaks, etc.).
3. BE CONVERSATIONAL. Use PLAIN TEXT ONLY. Never use asterisks (*), bolding, or italics.
4. DIRECT ANSWER. Answer the user's core question immediately.
5. NO GENERIC TALK. Avoid motivational cliches unless tied to data.
6. SHORT MESSAGES: If the user provides a short response, acknowledge it and ask a neutral follow-up question.
7. NO MEDICAL ADVICE.
8. LENGTH: Keep responses helpful but concise (3-5 sentences).

TONE: Professional, calm, insight-driven, and supportive.`

// HistoryMessage is one prior turn of the conversation.
type HistoryMessage struct {
	// Role is RoleUser or RoleAssistant.
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// PromptBuilder assembles user prompts from derived context and history.
type PromptBuilder struct{}

// NewPromptBuilder creates a prompt builder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// Build assembles the full user prompt: context summary, recent history
// window and the new message.
func (b *PromptBuilder) Build(userMessage string, dc *query.DerivedContext, history []HistoryMessage) string {
	var sb strings.Builder

	sb.WriteString(b.contextSummary(dc))
	sb.WriteString("\n\n")
	sb.WriteString(b.historyBlock(history))
	sb.WriteString("\n\nUSER MESSAGE: ")
	sb.WriteString(userMessage)
	sb.WriteString("\n\nRespond following the conversation rules. Introduce a NEW angle or perspective that hasn't been discussed in the recent messages. IF the user's profile is available, use it to personalize your tone and advice (e.g. mention their specific triggers or reasons).")

	return sb.String()
}

// contextSummary renders the USER CONTEXT block from the derived context.
func (b *PromptBuilder) contextSummary(dc *query.DerivedContext) string {
	profile := dc.ProfileSummary
	if profile == "" {
		profile = "Not provided (new user)"
	}

	triggers := "Not identified yet"
	if len(dc.TopTriggers) > 0 {
		triggers = strings.Join(dc.TopTriggers, ", ")
	}

	lines := []string{
		"USER CONTEXT:",
		fmt.Sprintf("- Onboarding Profile: %s", profile),
		fmt.Sprintf("- Smoke-free goal: %d days", dc.SmokeFreeGoal),
		fmt.Sprintf("- Current smoke-free days: %d", dc.CurrentSmokeFreeDays),
		fmt.Sprintf("- Goal progress: %d/%d days", dc.CurrentSmokeFreeDays, dc.SmokeFreeGoal),
		fmt.Sprintf("- Current streak: %d days", dc.CurrentStreak),
		fmt.Sprintf("- Longest streak: %d days", dc.LongestStreak),
		fmt.Sprintf("- Trend: %s (%d%% reduction)", dc.Trend, dc.ReductionPercent),
		fmt.Sprintf("- High-risk time: %s", dc.HighRiskTime),
		fmt.Sprintf("- Top triggers via Logs: %s", triggers),
	}
	return strings.Join(lines, "\n")
}

// historyBlock renders the trailing window of conversation history.
func (b *PromptBuilder) historyBlock(history []HistoryMessage) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	lines := make([]string, 0, len(history)+1)
	lines = append(lines, "RECENT CONVERSATION:")
	for _, msg := range history {
		role := "User"
		if msg.Role == RoleAssistant {
			role = "Companion"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, msg.Content))
	}
	return strings.Join(lines, "\n")
}
