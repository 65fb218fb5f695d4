package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

func TestNormalizer_SmokeLogs_SortsChronologically(t *testing.T) {
	n := NewNormalizer()

	raw := []RawSmokeLog{
		{UserID: "u@example.com", Date: "2025-03-10", Cigarettes: 2},
		{UserID: "u@example.com", Date: "2025-03-08", Cigarettes: 0, Triggers: []string{"Stress"}},
		{UserID: "u@example.com", Date: "2025-03-09", Cigarettes: 5},
	}

	entries, err := n.SmokeLogs(raw)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, timeutil.Date(2025, 3, 8), entries[0].Date)
	assert.Equal(t, timeutil.Date(2025, 3, 9), entries[1].Date)
	assert.Equal(t, timeutil.Date(2025, 3, 10), entries[2].Date)
	assert.True(t, entries[0].IsSmokeFree())
	assert.Equal(t, []string{"Stress"}, entries[0].Triggers)
}

func TestNormalizer_SmokeLogs_MalformedDate(t *testing.T) {
	n := NewNormalizer()

	_, err := n.SmokeLogs([]RawSmokeLog{{UserID: "u@example.com", Date: "03/10/2025"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrMalformedRecord)
}

func TestNormalizer_UrgeEvents(t *testing.T) {
	n := NewNormalizer()

	events, err := n.UrgeEvents([]RawUrgeEvent{
		{UserID: "u@example.com", Timestamp: "2025-03-09T21:00:00Z", Trigger: "Boredom"},
		{UserID: "u@example.com", Timestamp: "2025-03-09T08:30:00Z", Trigger: "Coffee"},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Coffee", events[0].Trigger)
	assert.Equal(t, "Boredom", events[1].Trigger)

	_, err = n.UrgeEvents([]RawUrgeEvent{{Timestamp: "yesterday"}})
	assert.ErrorIs(t, err, shared.ErrMalformedRecord)
}

func TestNormalizer_GameSessions(t *testing.T) {
	n := NewNormalizer()

	sessions, err := n.GameSessions([]RawGameSession{
		{UserID: "u@example.com", Timestamp: "2025-03-09T10:00:00Z", SecondsFocused: 120, PointsEarned: 300},
	})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 120, sessions[0].SecondsFocused)
	assert.Equal(t, 300, sessions[0].PointsEarned)
}

func TestNormalizer_EmptyInput(t *testing.T) {
	n := NewNormalizer()

	entries, err := n.SmokeLogs(nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
