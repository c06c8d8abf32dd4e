package handler

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/livekit/protocol/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/johnquangdev/meeting-processor/errors"
	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	"github.com/johnquangdev/meeting-processor/internal/domain/repositories"
	httpmw "github.com/johnquangdev/meeting-processor/internal/infrastructure/http/middleware"
	usecaseErrors "github.com/johnquangdev/meeting-processor/internal/usecase/errors"
	meetingUsecase "github.com/johnquangdev/meeting-processor/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-processor/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-processor/internal/usecase/scheduler"
	"github.com/johnquangdev/meeting-processor/pkg/ai"
	"github.com/johnquangdev/meeting-processor/pkg/config"
	"github.com/johnquangdev/meeting-processor/pkg/jwt"
	pkgvalidator "github.com/johnquangdev/meeting-processor/pkg/validator"
)

type fakeMeetingService struct {
	result  *meetingUsecase.Result
	err     error
	input   meetingUsecase.ProcessInput
	filters repositories.MeetingFilters
	records map[string]*entities.MeetingRecord
	logs    []*entities.ProcessingLogEntry
}

func (f *fakeMeetingService) Process(_ context.Context, in meetingUsecase.ProcessInput) (*meetingUsecase.Result, error) {
	f.input = in
	return f.result, f.err
}

func (f *fakeMeetingService) Reprocess(_ context.Context, id string) (*meetingUsecase.Result, error) {
	if _, ok := f.records[id]; !ok {
		return nil, usecaseErrors.ErrMeetingNotFound
	}
	return f.result, f.err
}

func (f *fakeMeetingService) GetMeeting(_ context.Context, id string) (*entities.MeetingRecord, error) {
	m, ok := f.records[id]
	if !ok {
		return nil, usecaseErrors.ErrMeetingNotFound
	}
	return m, nil
}

func (f *fakeMeetingService) ListMeetings(_ context.Context, filters repositories.MeetingFilters) ([]*entities.MeetingRecord, int64, error) {
	f.filters = filters
	out := make([]*entities.MeetingRecord, 0, len(f.records))
	for _, m := range f.records {
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (f *fakeMeetingService) ListLogs(_ context.Context, _ string) ([]*entities.ProcessingLogEntry, error) {
	return f.logs, nil
}

type fakeScheduler struct {
	running   bool
	triggered int
	busy      bool
}

func (f *fakeScheduler) Start() { f.running = true }
func (f *fakeScheduler) Stop()  { f.running = false }
func (f *fakeScheduler) Trigger() bool {
	if f.busy {
		return false
	}
	f.triggered++
	return true
}
func (f *fakeScheduler) Status() scheduler.Status {
	return scheduler.Status{Running: f.running, PollInterval: 30 * time.Second, MaxConcurrent: 4}
}
func (f *fakeScheduler) ClearCache() int { return 3 }

type envelope struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
	Info    string          `json:"info"`
	Data    json.RawMessage `json:"data"`
}

const (
	testLiveKitKey    = "APIkey"
	testLiveKitSecret = "livekit-secret-livekit-secret-00"
	testAssemblySec   = "assembly-secret"
)

func newTestServer(svc *fakeMeetingService, sched *fakeScheduler, authMW echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HTTPErrorHandler = ErrorHandler(nil)

	router := NewRouter(
		&config.Config{Server: config.ServerConfig{Environment: "test"}},
		NewMeetingHandler(svc, nil),
		NewSchedulerHandler(sched, nil),
		NewWebhookHandler(sched, testLiveKitKey, testLiveKitSecret, testAssemblySec, nil),
		authMW,
	)
	router.Setup(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func processedRecord(id string) *entities.MeetingRecord {
	m := entities.NewMeetingRecord(id, "Sync", "Alice: ship it", []string{"Alice"})
	m.Processed = true
	return m
}

func TestProcessMeeting_Outcomes(t *testing.T) {
	svc := &fakeMeetingService{result: &meetingUsecase.Result{Outcome: meetingUsecase.OutcomeProcessed, Meeting: processedRecord("c-1")}}
	e := newTestServer(svc, &fakeScheduler{}, nil)

	body := `{"conference_id":"c-1","transcript":"Alice: ship it","meeting_title":"Sync","participants":["Alice"]}`
	rec, env := do(t, e, http.MethodPost, "/v1/meetings/process", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "c-1", svc.input.ConferenceID)
	assert.Equal(t, []string{"Alice"}, svc.input.Participants)

	var data struct {
		Outcome string `json:"outcome"`
		Meeting struct {
			ConferenceID string `json:"conference_id"`
			Processed    bool   `json:"processed"`
		} `json:"meeting"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "processed", data.Outcome)
	assert.True(t, data.Meeting.Processed)

	svc.result = &meetingUsecase.Result{Outcome: meetingUsecase.OutcomeInFlight}
	rec, env = do(t, e, http.MethodPost, "/v1/meetings/process", body, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"outcome":"in_flight","meeting":null}`, string(env.Data))
}

func TestProcessMeeting_StageFailureStillOK(t *testing.T) {
	m := entities.NewMeetingRecord("c-1", "Sync", "text", nil)
	msg := "SUMMARIZE: groq returned status 503"
	m.ProcessingError = &msg
	svc := &fakeMeetingService{result: &meetingUsecase.Result{Outcome: meetingUsecase.OutcomeProcessed, Meeting: m}}
	e := newTestServer(svc, &fakeScheduler{}, nil)

	rec, env := do(t, e, http.MethodPost, "/v1/meetings/process", `{"conference_id":"c-1","transcript":"text"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "groq returned status 503")
}

func TestProcessMeeting_Errors(t *testing.T) {
	svc := &fakeMeetingService{}
	e := newTestServer(svc, &fakeScheduler{}, nil)

	rec, env := do(t, e, http.MethodPost, "/v1/meetings/process", `{"conference_id":"c-1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "1001", string(env.Code))

	rec, _ = do(t, e, http.MethodPost, "/v1/meetings/process", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.err = &pipeline.PersistenceError{ConferenceID: "c-1", Err: errors.New("connection refused")}
	rec, env = do(t, e, http.MethodPost, "/v1/meetings/process", `{"conference_id":"c-1","transcript":"x"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "3001", string(env.Code))
	assert.Contains(t, env.Info, "connection refused")

	svc.err = usecaseErrors.ErrInvalidInput
	rec, _ = do(t, e, http.MethodPost, "/v1/meetings/process", `{"conference_id":"c-1","transcript":"  "}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeetingQueries(t *testing.T) {
	entry := entities.NewProcessingLogEntry("c-1", entities.StageSummarize, entities.LogStatusSuccess, "ok", nil)
	svc := &fakeMeetingService{
		records: map[string]*entities.MeetingRecord{"c-1": processedRecord("c-1")},
		logs:    []*entities.ProcessingLogEntry{entry},
	}
	e := newTestServer(svc, &fakeScheduler{}, nil)

	rec, env := do(t, e, http.MethodGet, "/v1/meetings/c-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"conference_id":"c-1"`)

	rec, env = do(t, e, http.MethodGet, "/v1/meetings/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "3000", string(env.Code))

	rec, env = do(t, e, http.MethodGet, "/v1/meetings?page=2&page_size=5&processed=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, svc.filters.Limit)
	assert.Equal(t, 5, svc.filters.Offset)
	require.NotNil(t, svc.filters.Processed)
	assert.True(t, *svc.filters.Processed)
	assert.NotContains(t, string(env.Data), "ship it")

	rec, _ = do(t, e, http.MethodGet, "/v1/meetings?page_size=500", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, e, http.MethodGet, "/v1/meetings/c-1/logs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"step":"SUMMARIZE"`)

	rec, _ = do(t, e, http.MethodPost, "/v1/meetings/missing/reprocess", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSchedulerRoutes(t *testing.T) {
	sched := &fakeScheduler{}
	e := newTestServer(&fakeMeetingService{}, sched, nil)

	rec, env := do(t, e, http.MethodPost, "/v1/scheduler/start", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sched.running)
	assert.Contains(t, string(env.Data), `"poll_interval":"30s"`)

	rec, env = do(t, e, http.MethodPost, "/v1/scheduler/trigger", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"triggered":true`)

	sched.busy = true
	_, env = do(t, e, http.MethodPost, "/v1/scheduler/trigger", "", nil)
	assert.Contains(t, string(env.Data), `"triggered":false`)

	_, env = do(t, e, http.MethodPost, "/v1/scheduler/clear-cache", "", nil)
	assert.JSONEq(t, `{"cleared":3}`, string(env.Data))

	rec, _ = do(t, e, http.MethodPost, "/v1/scheduler/stop", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sched.running)

	rec, _ = do(t, e, http.MethodGet, "/v1/scheduler/status", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAssemblyAIWebhook(t *testing.T) {
	sched := &fakeScheduler{}
	e := newTestServer(&fakeMeetingService{}, sched, nil)

	body := `{"transcript_id":"t-1","status":"completed"}`
	rec, env := do(t, e, http.MethodPost, "/v1/webhooks/assemblyai", body, map[string]string{
		assemblyAISignatureHeader: ai.SignHMAC(testAssemblySec, []byte(body)),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(env.Data), `"triggered":true`)
	assert.Equal(t, 1, sched.triggered)

	rec, env = do(t, e, http.MethodPost, "/v1/webhooks/assemblyai", body, map[string]string{
		assemblyAISignatureHeader: ai.SignHMAC("wrong", []byte(body)),
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "2002", string(env.Code))

	errored := `{"transcript_id":"t-2","status":"error"}`
	rec, _ = do(t, e, http.MethodPost, "/v1/webhooks/assemblyai", errored, map[string]string{
		assemblyAISignatureHeader: ai.SignHMAC(testAssemblySec, []byte(errored)),
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, sched.triggered)
}

func TestAssemblyAIWebhook_NotConfigured(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(nil)
	h := NewWebhookHandler(&fakeScheduler{}, "", "", "", nil)
	e.POST("/hook", h.HandleAssemblyAIWebhook)
	e.POST("/lk", h.HandleLiveKitWebhook)

	rec, _ := do(t, e, http.MethodPost, "/hook", `{}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec, _ = do(t, e, http.MethodPost, "/lk", `{}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func signLiveKit(t *testing.T, body string) string {
	t.Helper()
	sum := sha256.Sum256([]byte(body))
	at := auth.NewAccessToken(testLiveKitKey, testLiveKitSecret)
	at.SetValidFor(time.Minute)
	at.SetSha256(base64.StdEncoding.EncodeToString(sum[:]))
	token, err := at.ToJWT()
	require.NoError(t, err)
	return token
}

func TestLiveKitWebhook(t *testing.T) {
	sched := &fakeScheduler{}
	e := newTestServer(&fakeMeetingService{}, sched, nil)

	finished := `{"event":"room_finished","room":{"sid":"RM_1","name":"standup"}}`
	rec, env := do(t, e, http.MethodPost, "/v1/webhooks/livekit", finished, map[string]string{
		echo.HeaderAuthorization: signLiveKit(t, finished),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(env.Data), `"triggered":true`)
	assert.Equal(t, 1, sched.triggered)

	joined := `{"event":"participant_joined","room":{"name":"standup"}}`
	rec, _ = do(t, e, http.MethodPost, "/v1/webhooks/livekit", joined, map[string]string{
		echo.HeaderAuthorization: signLiveKit(t, joined),
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, sched.triggered)

	rec, _ = do(t, e, http.MethodPost, "/v1/webhooks/livekit", finished, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// signature over a different body
	rec, _ = do(t, e, http.MethodPost, "/v1/webhooks/livekit", finished, map[string]string{
		echo.HeaderAuthorization: signLiveKit(t, joined),
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1, sched.triggered)
}

func TestRouter_Auth(t *testing.T) {
	m := jwt.NewManager("secret", "meeting-processor")
	sched := &fakeScheduler{}
	e := newTestServer(&fakeMeetingService{}, sched, httpmw.EchoAuth(m))

	rec, env := do(t, e, http.MethodGet, "/v1/scheduler/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "1004", string(env.Code))

	token, err := m.GenerateAccessToken("ops", "", time.Minute)
	require.NoError(t, err)
	rec, _ = do(t, e, http.MethodGet, "/v1/scheduler/status", "", map[string]string{
		echo.HeaderAuthorization: "Bearer " + token,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// webhooks bypass bearer auth
	body := `{"transcript_id":"t-1","status":"completed"}`
	rec, _ = do(t, e, http.MethodPost, "/v1/webhooks/assemblyai", body, map[string]string{
		assemblyAISignatureHeader: ai.SignHMAC(testAssemblySec, []byte(body)),
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	e := newTestServer(&fakeMeetingService{}, &fakeScheduler{}, nil)

	rec, env := do(t, e, http.MethodGet, "/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "1002", string(env.Code))
}

func TestToAppError(t *testing.T) {
	var appErr appErrors.AppError

	require.ErrorAs(t, toAppError(usecaseErrors.ErrNoTranscript, "c-1"), &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)

	require.ErrorAs(t, toAppError(errors.New("boom"), "c-1"), &appErr)
	assert.Equal(t, appErrors.ErrorCode_MEETING_PROCESSING_FAILED, appErr.Code)
}
