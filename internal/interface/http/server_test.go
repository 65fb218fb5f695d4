package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respira-app/respira-server/internal/application/command"
	"github.com/respira-app/respira-server/internal/application/query"
	"github.com/respira-app/respira-server/internal/domain/insight"
	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/internal/infrastructure/external/coach"
	"github.com/respira-app/respira-server/internal/interface/http/handlers"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeLogRepo struct {
	smokeLogs    []tracking.RawSmokeLog
	urgeEvents   []tracking.RawUrgeEvent
	gameSessions []tracking.RawGameSession
}

func (r *fakeLogRepo) ListSmokeLogs(_ context.Context, userID tracking.UserID, _ tracking.DateRange) ([]tracking.RawSmokeLog, error) {
	var out []tracking.RawSmokeLog
	for _, l := range r.smokeLogs {
		if l.UserID == string(userID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) ListUrgeEvents(_ context.Context, userID tracking.UserID, _ tracking.DateRange) ([]tracking.RawUrgeEvent, error) {
	var out []tracking.RawUrgeEvent
	for _, e := range r.urgeEvents {
		if e.UserID == string(userID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) ListGameSessions(_ context.Context, userID tracking.UserID, _ tracking.DateRange) ([]tracking.RawGameSession, error) {
	var out []tracking.RawGameSession
	for _, s := range r.gameSessions {
		if s.UserID == string(userID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) GetFirstLogDate(_ context.Context, userID tracking.UserID) (*time.Time, error) {
	var first *time.Time
	for _, l := range r.smokeLogs {
		if l.UserID != string(userID) {
			continue
		}
		day, err := timeutil.ParseDate(l.Date)
		if err != nil {
			continue
		}
		if first == nil || day.Before(*first) {
			d := day
			first = &d
		}
	}
	return first, nil
}

func (r *fakeLogRepo) UpsertSmokeLog(_ context.Context, entry tracking.SmokeLogEntry) error {
	date := timeutil.FormatDateStr(entry.Date)
	for i, l := range r.smokeLogs {
		if l.UserID == string(entry.UserID) && l.Date == date {
			r.smokeLogs[i].Cigarettes = int(entry.Cigarettes)
			r.smokeLogs[i].Triggers = entry.Triggers
			return nil
		}
	}
	r.smokeLogs = append(r.smokeLogs, tracking.RawSmokeLog{
		UserID:     string(entry.UserID),
		Date:       date,
		Cigarettes: int(entry.Cigarettes),
		Triggers:   entry.Triggers,
	})
	return nil
}

func (r *fakeLogRepo) SaveUrgeEvent(_ context.Context, event tracking.UrgeEvent) error {
	r.urgeEvents = append(r.urgeEvents, tracking.RawUrgeEvent{
		UserID:    string(event.UserID),
		Timestamp: event.Timestamp.Format(time.RFC3339),
		Trigger:   event.Trigger,
	})
	return nil
}

func (r *fakeLogRepo) SaveGameSession(_ context.Context, session tracking.GameSessionEvent) error {
	r.gameSessions = append(r.gameSessions, tracking.RawGameSession{
		UserID:         string(session.UserID),
		Timestamp:      session.Timestamp.Format(time.RFC3339),
		SecondsFocused: session.SecondsFocused,
		PointsEarned:   session.PointsEarned,
	})
	return nil
}

type fakeGoalRepo struct {
	states map[tracking.UserID]*tracking.GoalState
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{states: make(map[tracking.UserID]*tracking.GoalState)}
}

func (r *fakeGoalRepo) GetGoalState(_ context.Context, userID tracking.UserID) (*tracking.GoalState, error) {
	s, ok := r.states[userID]
	if !ok {
		return nil, shared.ErrGoalStateNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeGoalRepo) SetGoal(_ context.Context, userID tracking.UserID, goalDays int, startDate time.Time) error {
	r.states[userID] = &tracking.GoalState{
		UserID:            userID,
		SmokeFreeGoalDays: goalDays,
		GoalStartDate:     &startDate,
		IsSet:             true,
	}
	return nil
}

func (r *fakeGoalRepo) AdvanceGoal(_ context.Context, userID tracking.UserID, expectedOldGoal, newGoal int) (bool, error) {
	s, ok := r.states[userID]
	if !ok || s.SmokeFreeGoalDays != expectedOldGoal {
		return false, nil
	}
	s.SmokeFreeGoalDays = newGoal
	return true, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Harness
// ─────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	server *Server
	logs   *fakeLogRepo
	goals  *fakeGoalRepo
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	return cfg
}

// newTestEnv wires a server over in-memory repositories. coachURL may be
// empty; the chat route then runs against an unreachable backend, which is
// fine for tests that never get past the guard.
func newTestEnv(t *testing.T, coachURL string) *testEnv {
	t.Helper()

	logs := &fakeLogRepo{}
	goals := newFakeGoalRepo()

	contextHandler := query.NewGetProgressContextHandler(logs, goals, nil, nil, 20, time.Minute)

	coachCfg := coach.DefaultClientConfig(coachURL)
	coachCfg.APIKey = "test-key"

	deps := Dependencies{
		GetProgressContextHandler: contextHandler,
		GetCalendarHandler:        query.NewGetCalendarHandler(logs, insight.NewClassifier(20)),
		GetLifetimeStatsHandler:   query.NewGetLifetimeStatsHandler(logs),
		GetInsightsHandler:        query.NewGetInsightsHandler(logs, goals, nil),
		GetLogStatsHandler:        query.NewGetLogStatsHandler(logs),
		GetUrgeStatsHandler:       query.NewGetUrgeStatsHandler(logs),
		GetGameStatsHandler:       query.NewGetGameStatsHandler(logs),

		RecordSmokeLogHandler:    command.NewRecordSmokeLogHandler(logs, nil),
		RecordUrgeHandler:        command.NewRecordUrgeHandler(logs, nil),
		RecordGameSessionHandler: command.NewRecordGameSessionHandler(logs, nil),
		SetGoalHandler:           command.NewSetGoalHandler(goals, nil),

		CoachGuard:   coach.NewGuard(),
		CoachPrompts: coach.NewPromptBuilder(),
		CoachClient:  coach.NewClient(coachCfg),

		HealthChecker: handlers.NewNoopHealthChecker(),
	}

	return &testEnv{
		server: NewServer(testConfig(), deps),
		logs:   logs,
		goals:  goals,
	}
}

// do runs a request through the full middleware chain.
func (e *testEnv) do(method, target, userID string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.server.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var envelope JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

// dataField digs a key out of the envelope's data object.
func dataField(t *testing.T, envelope JSONResponse, key string) interface{} {
	t.Helper()
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok, "data is not an object")
	return data[key]
}

// ─────────────────────────────────────────────────────────────────────────────
// Routing and identity
// ─────────────────────────────────────────────────────────────────────────────

func TestServer_MissingUserIsRejected(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(http.MethodGet, "/api/v1/insights", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "missing_user", envelope.Error.Code)
}

func TestServer_UserIDQueryParamFallback(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(http.MethodGet, "/api/v1/stats/lifetime?user_id=user-1", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Success)
}

func TestServer_HealthEndpoint(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Success)
}

func TestServer_SecurityHeadersApplied(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_RootServesAPIInfo(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "Respira API", dataField(t, envelope, "name"))

	// Exact-root matching only; unknown paths are 404s.
	rec = env.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Write routes
// ─────────────────────────────────────────────────────────────────────────────

func TestServer_RecordSmokeLog(t *testing.T) {
	env := newTestEnv(t, "")

	body := map[string]interface{}{
		"date":       "2025-03-10",
		"cigarettes": 3,
		"triggers":   []string{"stress"},
	}

	rec := env.do(http.MethodPost, "/api/v1/logs", "user-1", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, dataField(t, envelope, "updated"))
	assert.Equal(t, "Log created successfully", dataField(t, envelope, "message"))

	// Logging the same day again replaces the entry.
	body["cigarettes"] = 0
	rec = env.do(http.MethodPost, "/api/v1/logs", "user-1", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	envelope = decodeEnvelope(t, rec)
	assert.Equal(t, true, dataField(t, envelope, "updated"))

	require.Len(t, env.logs.smokeLogs, 1)
	assert.Equal(t, 0, env.logs.smokeLogs[0].Cigarettes)
}

func TestServer_RecordSmokeLogValidation(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(http.MethodPost, "/api/v1/logs", "user-1", map[string]interface{}{
		"date":       "2025-03-10",
		"cigarettes": -1,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "validation_error", envelope.Error.Code)
}

func TestServer_RecordSmokeLogEmptyBody(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(http.MethodPost, "/api/v1/logs", "user-1", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "empty_body", envelope.Error.Code)
}

func TestServer_RecordUrge(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(http.MethodPost, "/api/v1/urges", "user-1", map[string]interface{}{
		"timestamp": "2025-03-10T14:30:00Z",
		"trigger":   "coffee",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, env.logs.urgeEvents, 1)
	assert.Equal(t, "coffee", env.logs.urgeEvents[0].Trigger)
}

func TestServer_RecordGameSession(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(http.MethodPost, "/api/v1/games", "user-1", map[string]interface{}{
		"timestamp":       "2025-03-10T14:30:00Z",
		"seconds_focused": 120,
		"points_earned":   30,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, env.logs.gameSessions, 1)
	assert.Equal(t, 120, env.logs.gameSessions[0].SecondsFocused)
}

func TestServer_SetGoal(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(http.MethodPost, "/api/v1/goal", "user-1", map[string]interface{}{
		"goal_days": 14,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, float64(14), dataField(t, envelope, "smoke_free_goal"))

	state, err := env.goals.GetGoalState(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 14, state.SmokeFreeGoalDays)
	assert.True(t, state.IsSet)
}

// ─────────────────────────────────────────────────────────────────────────────
// Read routes
// ─────────────────────────────────────────────────────────────────────────────

func TestServer_LifetimeStats(t *testing.T) {
	env := newTestEnv(t, "")
	env.logs.smokeLogs = []tracking.RawSmokeLog{
		{UserID: "user-1", Date: "2025-03-08", Cigarettes: 5},
		{UserID: "user-1", Date: "2025-03-09", Cigarettes: 2},
		{UserID: "other", Date: "2025-03-09", Cigarettes: 9},
	}

	rec := env.do(http.MethodGet, "/api/v1/stats/lifetime", "user-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, float64(7), dataField(t, envelope, "total_cigarettes"))
}

func TestServer_CalendarRejectsBadYear(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(http.MethodGet, "/api/v1/calendar/not-a-year", "user-1", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "invalid_year", envelope.Error.Code)
}

func TestServer_InsightsWithoutData(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(http.MethodGet, "/api/v1/insights", "user-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, dataField(t, envelope, "has_data"))
}

func TestServer_ProgressContext(t *testing.T) {
	env := newTestEnv(t, "")
	env.logs.smokeLogs = []tracking.RawSmokeLog{
		{UserID: "user-1", Date: "2025-03-08", Cigarettes: 4},
	}

	rec := env.do(http.MethodGet, "/api/v1/context", "user-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
	assert.NotNil(t, envelope.Data)
}

// ─────────────────────────────────────────────────────────────────────────────
// Chat
// ─────────────────────────────────────────────────────────────────────────────

func TestServer_ChatFiltersMedicalQuestions(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(http.MethodPost, "/api/v1/chat", "user-1", map[string]interface{}{
		"message": "What medication should I take to quit?",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, dataField(t, envelope, "filtered"))
	response, _ := dataField(t, envelope, "response").(string)
	assert.Contains(t, response, "healthcare professional")
}

func TestServer_ChatFiltersEmptyMessages(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(http.MethodPost, "/api/v1/chat", "user-1", map[string]interface{}{
		"message": "   ",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, dataField(t, envelope, "filtered"))
}

func TestServer_ChatGeneratesGroundedReply(t *testing.T) {
	var gotUserPrompt string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		gotUserPrompt = req.Messages[1].Content

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Two days without smoking, keep going!"}},
			},
		})
	}))
	defer backend.Close()

	env := newTestEnv(t, backend.URL)
	env.logs.smokeLogs = []tracking.RawSmokeLog{
		{UserID: "user-1", Date: "2025-03-08", Cigarettes: 4},
	}

	rec := env.do(http.MethodPost, "/api/v1/chat", "user-1", map[string]interface{}{
		"message": "How am I doing so far?",
		"history": []map[string]string{
			{"role": "user", "content": "hi"},
			{"role": "assistant", "content": "hello!"},
		},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, dataField(t, envelope, "filtered"))
	assert.Equal(t, "Two days without smoking, keep going!", dataField(t, envelope, "response"))

	// The prompt carries the user's message and their progress context.
	assert.True(t, strings.Contains(gotUserPrompt, "How am I doing so far?"))
}

func TestServer_ChatWithoutCoachConfigured(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.deps.CoachClient = nil

	rec := env.do(http.MethodPost, "/api/v1/chat", "user-1", map[string]interface{}{
		"message": "hello",
	})

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
