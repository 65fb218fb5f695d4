package coach

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/respira-app/respira-server/internal/application/query"
)

func sampleContext() *query.DerivedContext {
	return &query.DerivedContext{
		SmokeFreeGoal:        14,
		CurrentSmokeFreeDays: 9,
		CurrentStreak:        4,
		LongestStreak:        6,
		Trend:                "improving",
		ReductionPercent:     33,
		HighRiskTime:         "Evening (9PM)",
		TopTriggers:          []string{"stress (3x)", "coffee (2x)"},
	}
}

func TestPromptBuilder_ContextSummaryLines(t *testing.T) {
	builder := NewPromptBuilder()

	prompt := builder.Build("How am I doing?", sampleContext(), nil)

	assert.Contains(t, prompt, "USER CONTEXT:")
	assert.Contains(t, prompt, "- Onboarding Profile: Not provided (new user)")
	assert.Contains(t, prompt, "- Smoke-free goal: 14 days")
	assert.Contains(t, prompt, "- Goal progress: 9/14 days")
	assert.Contains(t, prompt, "- Current streak: 4 days")
	assert.Contains(t, prompt, "- Trend: improving (33% reduction)")
	assert.Contains(t, prompt, "- High-risk time: Evening (9PM)")
	assert.Contains(t, prompt, "- Top triggers via Logs: stress (3x), coffee (2x)")
	assert.Contains(t, prompt, "USER MESSAGE: How am I doing?")
}

func TestPromptBuilder_ProfilePassthrough(t *testing.T) {
	builder := NewPromptBuilder()

	dc := sampleContext()
	dc.ProfileSummary = "Smokes when stressed at work, wants to save money"

	prompt := builder.Build("hi", dc, nil)
	assert.Contains(t, prompt, "- Onboarding Profile: Smokes when stressed at work, wants to save money")
}

func TestPromptBuilder_EmptyTriggersPlaceholder(t *testing.T) {
	builder := NewPromptBuilder()

	dc := sampleContext()
	dc.TopTriggers = nil

	prompt := builder.Build("hi", dc, nil)
	assert.Contains(t, prompt, "- Top triggers via Logs: Not identified yet")
}

func TestPromptBuilder_HistoryWindowKeepsLastSix(t *testing.T) {
	builder := NewPromptBuilder()

	history := []HistoryMessage{
		{Role: RoleUser, Content: "oldest message"},
		{Role: RoleAssistant, Content: "old reply"},
		{Role: RoleUser, Content: "pair two"},
		{Role: RoleAssistant, Content: "pair two reply"},
		{Role: RoleUser, Content: "pair three"},
		{Role: RoleAssistant, Content: "pair three reply"},
		{Role: RoleUser, Content: "latest question"},
	}

	prompt := builder.Build("hi", sampleContext(), history)

	assert.Contains(t, prompt, "RECENT CONVERSATION:")
	assert.NotContains(t, prompt, "oldest message")
	assert.Contains(t, prompt, "Companion: old reply")
	assert.Contains(t, prompt, "User: latest question")
}

func TestPromptBuilder_NoHistoryOmitsBlock(t *testing.T) {
	builder := NewPromptBuilder()

	prompt := builder.Build("hi", sampleContext(), nil)
	assert.False(t, strings.Contains(prompt, "RECENT CONVERSATION:"))
}
