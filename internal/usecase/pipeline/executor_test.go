package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-processor/internal/adapter/repository"
	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	"github.com/johnquangdev/meeting-processor/pkg/jobcontext"
)

const scenarioTranscript = "John: finish report by Friday.\nJane: I'll do analysis.\nJohn: let's meet Monday."

type harness struct {
	meetings *repository.MemoryMeetingRepository
	logs     *repository.MemoryLogRepository
	tracker  *fakeTracker
}

func newHarness() *harness {
	return &harness{
		meetings: repository.NewMemoryMeetingRepository(),
		logs:     repository.NewMemoryLogRepository(),
		tracker:  &fakeTracker{},
	}
}

func (h *harness) executor(s Summarizer, x TaskExtractor, cfg Config) *Executor {
	return NewExecutor(s, x, h.tracker, h.meetings, h.logs, cfg, nil)
}

func (h *harness) steps(t *testing.T, id string) []string {
	t.Helper()
	entries, err := h.logs.ListLogs(context.Background(), id)
	require.NoError(t, err)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, string(e.Step)+":"+string(e.Status))
	}
	return out
}

func okSummary(context.Context, string) (string, error) {
	return "The team agreed on the report and analysis.", nil
}

func candidate(id string) entities.Candidate {
	return entities.Candidate{
		ConferenceID: id,
		Title:        "Weekly sync",
		Transcript:   scenarioTranscript,
		Participants: []string{"John", "Jane"},
	}
}

func TestRun_HappyPath(t *testing.T) {
	h := newHarness()
	var gotSummary string
	ex := h.executor(summarizeFunc(okSummary), extractFunc(func(_ context.Context, transcript, summary string) (string, error) {
		gotSummary = summary
		return `{"tasks":[{"title":"Finish report","assignee":"John","due_date":null}]}`, nil
	}), Config{})

	rec, err := ex.Run(context.Background(), candidate("conf-1"))
	require.NoError(t, err)

	require.Len(t, rec.Tasks, 1)
	assert.Equal(t, "Finish report", rec.Tasks[0].Title)
	require.NotNil(t, rec.Tasks[0].Assignee)
	assert.Equal(t, "John", *rec.Tasks[0].Assignee)
	assert.Nil(t, rec.Tasks[0].DueDate)
	assert.Equal(t, []string{"MEET-1"}, rec.IssueKeys)
	assert.True(t, rec.Processed)
	assert.Nil(t, rec.ProcessingError)
	assert.Equal(t, "The team agreed on the report and analysis.", gotSummary)

	assert.Equal(t, []string{
		"SUMMARIZE:success",
		"EXTRACT:success",
		"CREATE_ISSUES:success",
		"STORE:success",
	}, h.steps(t, "conf-1"))

	stored, err := h.meetings.GetMeeting(context.Background(), "conf-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Processed)
	assert.Equal(t, 1, h.meetings.Count())
}

func TestRun_SummarizeFailureShortCircuits(t *testing.T) {
	h := newHarness()
	extractCalled := false
	ex := h.executor(
		summarizeFunc(func(context.Context, string) (string, error) {
			return "", errors.New("groq returned status 503")
		}),
		extractFunc(func(context.Context, string, string) (string, error) {
			extractCalled = true
			return `{"tasks":[]}`, nil
		}),
		Config{},
	)

	rec, err := ex.Run(context.Background(), candidate("conf-1"))
	require.NoError(t, err)

	assert.False(t, extractCalled)
	assert.Empty(t, h.tracker.requests)
	assert.Nil(t, rec.Summary)
	assert.Empty(t, rec.Tasks)
	assert.Empty(t, rec.IssueKeys)
	assert.False(t, rec.Processed)
	require.NotNil(t, rec.ProcessingError)
	assert.Contains(t, *rec.ProcessingError, "SUMMARIZE")
	assert.Contains(t, *rec.ProcessingError, "503")

	assert.Equal(t, []string{
		"SUMMARIZE:failed",
		"EXTRACT:skipped",
		"CREATE_ISSUES:skipped",
		"STORE:success",
	}, h.steps(t, "conf-1"))

	done, _ := h.meetings.IsProcessed(context.Background(), "conf-1")
	assert.False(t, done)
}

func TestRun_EmptySummaryIsFailure(t *testing.T) {
	h := newHarness()
	ex := h.executor(
		summarizeFunc(func(context.Context, string) (string, error) { return "   ", nil }),
		extractFunc(func(context.Context, string, string) (string, error) { return `{"tasks":[]}`, nil }),
		Config{},
	)

	rec, err := ex.Run(context.Background(), candidate("conf-1"))
	require.NoError(t, err)
	assert.False(t, rec.Processed)
	assert.Nil(t, rec.Summary)
}

func TestRun_PartialIssueFailureKeepsOtherKeys(t *testing.T) {
	h := newHarness()
	h.tracker.failOn = map[int]bool{1: true}
	ex := h.executor(summarizeFunc(okSummary), extractFunc(func(context.Context, string, string) (string, error) {
		return `{"tasks":[{"title":"One"},{"title":"Two"},{"title":"Three"}]}`, nil
	}), Config{})

	rec, err := ex.Run(context.Background(), candidate("conf-1"))
	require.NoError(t, err)

	assert.Len(t, h.tracker.requests, 3)
	assert.Equal(t, []string{"MEET-1", "MEET-3"}, rec.IssueKeys)
	assert.Len(t, rec.Tasks, 3)
	assert.True(t, rec.Processed)
	assert.Nil(t, rec.ProcessingError)

	assert.Equal(t, []string{
		"SUMMARIZE:success",
		"EXTRACT:success",
		"CREATE_ISSUES:failed",
		"STORE:success",
	}, h.steps(t, "conf-1"))

	entries, _ := h.logs.ListLogs(context.Background(), "conf-1")
	assert.Equal(t, "created 2 of 3 issues", entries[2].Message)
}

func TestRun_IssuePanicIsIsolatedPerTask(t *testing.T) {
	h := newHarness()
	h.tracker.panicOn = map[int]bool{0: true}
	ex := h.executor(summarizeFunc(okSummary), extractFunc(func(context.Context, string, string) (string, error) {
		return `{"tasks":[{"title":"One"},{"title":"Two"}]}`, nil
	}), Config{})

	rec, err := ex.Run(context.Background(), candidate("conf-1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"MEET-2"}, rec.IssueKeys)
	assert.True(t, rec.Processed)
}

func TestRun_MalformedExtractionOutput(t *testing.T) {
	h := newHarness()
	ex := h.executor(summarizeFunc(okSummary), extractFunc(func(context.Context, string, string) (string, error) {
		return "Sorry, I could not find any action items in this meeting.", nil
	}), Config{})

	rec, err := ex.Run(context.Background(), candidate("conf-1"))
	require.NoError(t, err)

	assert.NotNil(t, rec.Tasks)
	assert.Empty(t, rec.Tasks)
	assert.True(t, rec.Processed)
	assert.Nil(t, rec.ProcessingError)

	assert.Equal(t, []string{
		"SUMMARIZE:success",
		"EXTRACT:failed",
		"CREATE_ISSUES:skipped",
		"STORE:success",
	}, h.steps(t, "conf-1"))

	entries, _ := h.logs.ListLogs(context.Background(), "conf-1")
	assert.Equal(t, true, entries[1].Metadata["warning"])
	assert.Contains(t, entries[1].Metadata["raw_excerpt"], "Sorry")
}

func TestRun_ExtractorErrorIsNonFatal(t *testing.T) {
	h := newHarness()
	ex := h.executor(summarizeFunc(okSummary), extractFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("rate limited")
	}), Config{})

	rec, err := ex.Run(context.Background(), candidate("conf-1"))
	require.NoError(t, err)
	assert.True(t, rec.Processed)
	assert.Nil(t, rec.ProcessingError)
	assert.Equal(t, "EXTRACT:failed", h.steps(t, "conf-1")[1])
}

func TestRun_ExtractPanicIsContained(t *testing.T) {
	h := newHarness()
	ex := h.executor(summarizeFunc(okSummary), extractFunc(func(context.Context, string, string) (string, error) {
		panic("nil map write")
	}), Config{})

	rec, err := ex.Run(context.Background(), candidate("conf-1"))
	require.NoError(t, err)
	assert.True(t, rec.Processed)
	assert.Empty(t, rec.Tasks)
	assert.Equal(t, []string{
		"SUMMARIZE:success",
		"EXTRACT:failed",
		"CREATE_ISSUES:skipped",
		"STORE:success",
	}, h.steps(t, "conf-1"))
}

func TestRun_SummarizePanicIsFatal(t *testing.T) {
	h := newHarness()
	ex := h.executor(summarizeFunc(func(context.Context, string) (string, error) {
		panic("boom")
	}), extractFunc(func(context.Context, string, string) (string, error) {
		return `{"tasks":[]}`, nil
	}), Config{})

	rec, err := ex.Run(context.Background(), candidate("conf-1"))
	require.NoError(t, err)
	assert.False(t, rec.Processed)
	require.NotNil(t, rec.ProcessingError)
	assert.Contains(t, *rec.ProcessingError, "panic: boom")
	assert.Equal(t, "EXTRACT:skipped", h.steps(t, "conf-1")[1])
}

func TestRun_StoreFailurePropagates(t *testing.T) {
	h := newHarness()
	meetings := &faultyMeetings{MeetingRepository: h.meetings, err: errors.New("connection refused")}
	ex := NewExecutor(summarizeFunc(okSummary), extractFunc(func(context.Context, string, string) (string, error) {
		return `{"tasks":[]}`, nil
	}), h.tracker, meetings, h.logs, Config{}, nil)

	rec, err := ex.Run(context.Background(), candidate("conf-1"))
	require.Error(t, err)
	assert.True(t, IsPersistenceError(err))
	require.NotNil(t, rec)
	assert.True(t, rec.Processed)

	steps := h.steps(t, "conf-1")
	assert.Equal(t, "STORE:failed", steps[len(steps)-1])
}

func TestRun_StoreOutlivesRunDeadline(t *testing.T) {
	h := newHarness()
	meetings := &faultyMeetings{MeetingRepository: h.meetings}
	blocking := summarizeFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	ex := NewExecutor(blocking, extractFunc(func(context.Context, string, string) (string, error) {
		return `{"tasks":[]}`, nil
	}), h.tracker, meetings, h.logs, Config{StageTimeout: time.Second}, nil)

	ctx, cancel := jobcontext.RunBegin(context.Background(), "conf-1", jobcontext.TriggerScheduler, 0, 50*time.Millisecond)
	defer cancel()

	rec, err := ex.Run(ctx, candidate("conf-1"))
	require.NoError(t, err)
	assert.False(t, rec.Processed)
	require.NotNil(t, rec.ProcessingError)
	assert.Contains(t, *rec.ProcessingError, "deadline exceeded")

	stored, err := h.meetings.GetMeeting(context.Background(), "conf-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Processed)
	require.NotNil(t, stored.ProcessingError)

	steps := h.steps(t, "conf-1")
	assert.Equal(t, "STORE:success", steps[len(steps)-1])
}

func TestRun_AlreadyProcessedRecordIsNotOverwritten(t *testing.T) {
	h := newHarness()
	ex := h.executor(summarizeFunc(okSummary), extractFunc(func(context.Context, string, string) (string, error) {
		return `{"tasks":[]}`, nil
	}), Config{})

	_, err := ex.Run(context.Background(), candidate("conf-1"))
	require.NoError(t, err)

	_, err = ex.Run(context.Background(), candidate("conf-1"))
	require.Error(t, err)
	assert.True(t, IsPersistenceError(err))
	assert.ErrorIs(t, err, entities.ErrMeetingProcessed)
}

func TestRun_NoIssueTracker(t *testing.T) {
	h := newHarness()
	ex := NewExecutor(summarizeFunc(okSummary), extractFunc(func(context.Context, string, string) (string, error) {
		return `{"tasks":[{"title":"One"}]}`, nil
	}), nil, h.meetings, h.logs, Config{}, nil)

	rec, err := ex.Run(context.Background(), candidate("conf-1"))
	require.NoError(t, err)
	assert.Empty(t, rec.IssueKeys)
	assert.Len(t, rec.Tasks, 1)
	assert.Equal(t, "CREATE_ISSUES:skipped", h.steps(t, "conf-1")[2])
}

func TestRun_LogStartedEntries(t *testing.T) {
	h := newHarness()
	ex := h.executor(summarizeFunc(okSummary), extractFunc(func(context.Context, string, string) (string, error) {
		return `{"tasks":[{"title":"One"}]}`, nil
	}), Config{LogStarted: true})

	_, err := ex.Run(context.Background(), candidate("conf-1"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"SUMMARIZE:started", "SUMMARIZE:success",
		"EXTRACT:started", "EXTRACT:success",
		"CREATE_ISSUES:started", "CREATE_ISSUES:success",
		"STORE:started", "STORE:success",
	}, h.steps(t, "conf-1"))
}

func TestRun_StageTimeout(t *testing.T) {
	h := newHarness()
	ex := h.executor(summarizeFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), extractFunc(func(context.Context, string, string) (string, error) {
		return `{"tasks":[]}`, nil
	}), Config{StageTimeout: 20 * time.Millisecond})

	rec, err := ex.Run(context.Background(), candidate("conf-1"))
	require.NoError(t, err)
	assert.False(t, rec.Processed)
	require.NotNil(t, rec.ProcessingError)
	assert.Contains(t, *rec.ProcessingError, context.DeadlineExceeded.Error())
}

func TestRun_RelativeDueDateUsesMeetingEnd(t *testing.T) {
	h := newHarness()
	ex := h.executor(summarizeFunc(okSummary), extractFunc(func(context.Context, string, string) (string, error) {
		return `{"tasks":[{"title":"Finish report","assignee":"Unassigned","due_date":"Friday"}]}`, nil
	}), Config{})

	c := candidate("conf-1")
	end := time.Date(2025, 3, 12, 16, 0, 0, 0, time.UTC) // Wednesday
	c.EndTime = &end

	rec, err := ex.Run(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, rec.Tasks, 1)
	assert.Nil(t, rec.Tasks[0].Assignee)
	require.NotNil(t, rec.Tasks[0].DueDate)
	assert.Equal(t, "2025-03-14", rec.Tasks[0].DueDate.String())

	require.Len(t, h.tracker.requests, 1)
	assert.Equal(t, "Weekly sync", h.tracker.requests[0].MeetingTitle)
}

func TestRun_RunMetadataInAudit(t *testing.T) {
	h := newHarness()
	ex := h.executor(summarizeFunc(okSummary), extractFunc(func(context.Context, string, string) (string, error) {
		return `{"tasks":[]}`, nil
	}), Config{})

	ctx, cancel := jobcontext.RunBegin(context.Background(), "conf-1", jobcontext.TriggerManual, 0, 0)
	defer cancel()

	_, err := ex.Run(ctx, candidate("conf-1"))
	require.NoError(t, err)

	entries, _ := h.logs.ListLogs(context.Background(), "conf-1")
	last := entries[len(entries)-1]
	assert.Equal(t, entities.StageStore, last.Step)
	assert.Equal(t, jobcontext.TriggerManual, last.Metadata["trigger"])
	assert.NotEmpty(t, last.Metadata["run_id"])
}

func TestRun_InvalidCandidate(t *testing.T) {
	h := newHarness()
	ex := h.executor(summarizeFunc(okSummary), extractFunc(func(context.Context, string, string) (string, error) {
		return `{"tasks":[]}`, nil
	}), Config{})

	_, err := ex.Run(context.Background(), entities.Candidate{ConferenceID: "conf-1", Transcript: strings.Repeat(" ", 3)})
	assert.ErrorIs(t, err, entities.ErrEmptyTranscript)
	assert.Zero(t, h.meetings.Count())
}

func TestTransitions(t *testing.T) {
	next, err := nextState(stateSummarize, outcomeFailed)
	require.NoError(t, err)
	assert.Equal(t, stateStore, next)
	assert.Equal(t, []state{stateExtract, stateCreateIssues}, bypassed(stateSummarize, next))

	next, err = nextState(stateExtract, outcomeFailed)
	require.NoError(t, err)
	assert.Equal(t, stateCreateIssues, next)
	assert.Empty(t, bypassed(stateExtract, next))

	for _, on := range []outcome{outcomeOK, outcomeFailed} {
		next, err = nextState(stateCreateIssues, on)
		require.NoError(t, err)
		assert.Equal(t, stateStore, next)
	}

	_, err = nextState(stateEnd, outcomeOK)
	assert.Error(t, err)
	assert.Equal(t, "CREATE_ISSUES", stateCreateIssues.String())
}
