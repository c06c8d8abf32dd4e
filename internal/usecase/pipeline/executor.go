package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	"github.com/johnquangdev/meeting-processor/internal/domain/repositories"
	"github.com/johnquangdev/meeting-processor/pkg/jobcontext"
)

// Summarizer produces a meeting summary from a transcript
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// TaskExtractor returns raw model output expected to hold
// {"tasks": [{"title", "assignee", "due_date"}]}. The output is untrusted.
type TaskExtractor interface {
	ExtractTasks(ctx context.Context, transcript, summary string) (string, error)
}

// IssueRequest describes one issue to create for an extracted task
type IssueRequest struct {
	ConferenceID string
	MeetingTitle string
	Title        string
	Assignee     *string
	DueDate      *entities.Date
}

// IssueCreator creates one tracked issue and returns its key
type IssueCreator interface {
	CreateIssue(ctx context.Context, req IssueRequest) (string, error)
}

// Config tunes a pipeline executor
type Config struct {
	// StageTimeout bounds every collaborator call; zero disables the bound
	StageTimeout time.Duration
	// LogStarted appends a "started" entry before each stage's outcome
	LogStarted bool
}

// ExecutionContext is the mutable state threaded through one run
type ExecutionContext struct {
	Record     *entities.MeetingRecord
	Errors     []StageError
	summarized bool
	startedAt  time.Time
}

func (ec *ExecutionContext) fail(stage entities.Stage, err error, fatal bool) {
	ec.Errors = append(ec.Errors, StageError{Stage: stage, Err: err, Fatal: fatal})
}

func (ec *ExecutionContext) firstFatal() error {
	for _, se := range ec.Errors {
		if se.Fatal {
			return se.Err
		}
	}
	return nil
}

// Executor runs the SUMMARIZE → EXTRACT → CREATE_ISSUES → STORE state machine
type Executor struct {
	summarizer Summarizer
	extractor  TaskExtractor
	issues     IssueCreator
	meetings   repositories.MeetingRepository
	audit      *auditLog
	cfg        Config
	logger     *zap.Logger
	now        func() time.Time
}

// NewExecutor wires an executor. issues may be nil, in which case
// CREATE_ISSUES is recorded as skipped.
func NewExecutor(
	summarizer Summarizer,
	extractor TaskExtractor,
	issues IssueCreator,
	meetings repositories.MeetingRepository,
	logs repositories.ProcessingLogRepository,
	cfg Config,
	logger *zap.Logger,
) *Executor {
	return &Executor{
		summarizer: summarizer,
		extractor:  extractor,
		issues:     issues,
		meetings:   meetings,
		audit:      &auditLog{repo: logs, logger: logger},
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Run processes one meeting. Every stage failure is contained and recorded;
// the returned error is nil or a *PersistenceError from STORE. The record is
// returned in both cases.
func (e *Executor) Run(ctx context.Context, c entities.Candidate) (*entities.MeetingRecord, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	ec := &ExecutionContext{Record: c.Record(), startedAt: e.now()}
	e.info(ctx, "🚀 pipeline run started", zap.Int("transcript_chars", len(c.Transcript)))

	cur, on := stateStart, outcomeOK
	var storeErr error
	for {
		next, err := nextState(cur, on)
		if err != nil {
			return ec.Record, err
		}
		for _, s := range bypassed(cur, next) {
			e.audit.record(ctx, c.ConferenceID, s.stage(), entities.LogStatusSkipped,
				fmt.Sprintf("skipped after %s failed", cur), nil)
		}
		if next == stateEnd {
			break
		}
		cur = next

		if cur == stateStore {
			storeErr = e.store(ctx, ec)
			on = outcomeOK
			if storeErr != nil {
				on = outcomeFailed
			}
			continue
		}
		on = e.runStage(ctx, cur, ec)
	}

	e.info(ctx, "✅ pipeline run finished",
		zap.Bool("processed", ec.Record.Processed),
		zap.Int("tasks", len(ec.Record.Tasks)),
		zap.Int("issues", len(ec.Record.IssueKeys)),
		zap.Int("errors", len(ec.Errors)),
		zap.Duration("elapsed", e.now().Sub(ec.startedAt)),
	)
	return ec.Record, storeErr
}

// runStage executes one non-terminal stage, turning a panic into a contained
// failure. A panic in SUMMARIZE is fatal like any other summarize failure.
func (e *Executor) runStage(ctx context.Context, st state, ec *ExecutionContext) (out outcome) {
	stage := st.stage()
	id := ec.Record.ConferenceID
	if e.cfg.LogStarted {
		e.audit.record(ctx, id, stage, entities.LogStatusStarted, "stage started", nil)
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			ec.fail(stage, err, st == stateSummarize)
			e.audit.record(ctx, id, stage, entities.LogStatusFailed, err.Error(), map[string]interface{}{"panic": true})
			out = outcomeFailed
		}
	}()

	switch st {
	case stateSummarize:
		return e.summarize(ctx, ec)
	case stateExtract:
		return e.extract(ctx, ec)
	case stateCreateIssues:
		return e.createIssues(ctx, ec)
	}
	panic(fmt.Sprintf("no handler for state %s", st))
}

func (e *Executor) summarize(ctx context.Context, ec *ExecutionContext) outcome {
	id := ec.Record.ConferenceID
	sctx, cancel := e.stageContext(ctx)
	defer cancel()

	summary, err := e.summarizer.Summarize(sctx, ec.Record.Transcript)
	if err == nil && strings.TrimSpace(summary) == "" {
		err = errors.New("summarizer returned an empty summary")
	}
	if err != nil {
		cerr := &CollaboratorError{Stage: entities.StageSummarize, Err: err}
		ec.fail(entities.StageSummarize, cerr, true)
		e.audit.record(ctx, id, entities.StageSummarize, entities.LogStatusFailed, cerr.Error(), nil)
		return outcomeFailed
	}

	summary = strings.TrimSpace(summary)
	ec.Record.Summary = &summary
	ec.summarized = true
	e.audit.record(ctx, id, entities.StageSummarize, entities.LogStatusSuccess, "summary generated",
		map[string]interface{}{"summary_chars": len(summary)})
	return outcomeOK
}

func (e *Executor) extract(ctx context.Context, ec *ExecutionContext) outcome {
	id := ec.Record.ConferenceID
	ec.Record.Tasks = []entities.Task{}

	sctx, cancel := e.stageContext(ctx)
	defer cancel()

	var summary string
	if ec.Record.Summary != nil {
		summary = *ec.Record.Summary
	}
	raw, err := e.extractor.ExtractTasks(sctx, ec.Record.Transcript, summary)
	if err != nil {
		cerr := &CollaboratorError{Stage: entities.StageExtract, Err: err}
		ec.fail(entities.StageExtract, cerr, false)
		e.audit.record(ctx, id, entities.StageExtract, entities.LogStatusFailed, cerr.Error(),
			map[string]interface{}{"warning": true})
		return outcomeFailed
	}

	res, err := ParseTasks(raw, e.referenceTime(ec.Record))
	if err != nil {
		ec.fail(entities.StageExtract, err, false)
		e.audit.record(ctx, id, entities.StageExtract, entities.LogStatusFailed, err.Error(),
			map[string]interface{}{"warning": true, "raw_excerpt": excerpt(raw, 200)})
		return outcomeFailed
	}

	ec.Record.Tasks = res.Tasks
	meta := map[string]interface{}{"task_count": len(res.Tasks)}
	if len(res.Warnings) > 0 {
		meta["warnings"] = res.Warnings
	}
	e.audit.record(ctx, id, entities.StageExtract, entities.LogStatusSuccess,
		fmt.Sprintf("extracted %d tasks", len(res.Tasks)), meta)
	return outcomeOK
}

func (e *Executor) createIssues(ctx context.Context, ec *ExecutionContext) outcome {
	id := ec.Record.ConferenceID
	tasks := ec.Record.Tasks
	ec.Record.IssueKeys = []string{}

	if e.issues == nil {
		e.audit.record(ctx, id, entities.StageCreateIssues, entities.LogStatusSkipped, "issue tracker not configured", nil)
		return outcomeOK
	}
	if len(tasks) == 0 {
		e.audit.record(ctx, id, entities.StageCreateIssues, entities.LogStatusSkipped, "no tasks to create", nil)
		return outcomeOK
	}

	results := make([]map[string]interface{}, 0, len(tasks))
	failed := 0
	for i, task := range tasks {
		key, err := e.createIssue(ctx, IssueRequest{
			ConferenceID: id,
			MeetingTitle: ec.Record.Title,
			Title:        task.Title,
			Assignee:     task.Assignee,
			DueDate:      task.DueDate,
		})
		if err != nil {
			failed++
			cerr := &CollaboratorError{Stage: entities.StageCreateIssues, Err: fmt.Errorf("task %d: %w", i, err)}
			ec.fail(entities.StageCreateIssues, cerr, false)
			results = append(results, map[string]interface{}{"task_index": i, "error": err.Error()})
			e.warn(ctx, "⚠️ issue creation failed", zap.Int("task_index", i), zap.String("title", task.Title), zap.Error(err))
			continue
		}
		ec.Record.IssueKeys = append(ec.Record.IssueKeys, key)
		results = append(results, map[string]interface{}{"task_index": i, "issue_key": key})
		e.info(ctx, "🎫 issue created", zap.Int("task_index", i), zap.String("issue_key", key))
	}

	msg := fmt.Sprintf("created %d of %d issues", len(tasks)-failed, len(tasks))
	meta := map[string]interface{}{"issues": results, "failed": failed}
	if failed > 0 {
		e.audit.record(ctx, id, entities.StageCreateIssues, entities.LogStatusFailed, msg, meta)
		return outcomeFailed
	}
	e.audit.record(ctx, id, entities.StageCreateIssues, entities.LogStatusSuccess, msg, meta)
	return outcomeOK
}

// createIssue isolates one task so a panic cannot stop the remaining ones
func (e *Executor) createIssue(ctx context.Context, req IssueRequest) (key string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	sctx, cancel := e.stageContext(ctx)
	defer cancel()

	key, err = e.issues.CreateIssue(sctx, req)
	if err == nil && strings.TrimSpace(key) == "" {
		err = errors.New("issue tracker returned an empty key")
	}
	return key, err
}

// store persists the record. It always runs and is the only stage whose
// failure leaves the executor.
func (e *Executor) store(ctx context.Context, ec *ExecutionContext) (err error) {
	id := ec.Record.ConferenceID
	if e.cfg.LogStarted {
		e.audit.record(ctx, id, entities.StageStore, entities.LogStatusStarted, "stage started", nil)
	}

	rec := ec.Record
	rec.Processed = ec.summarized
	rec.ProcessingError = nil
	if fatal := ec.firstFatal(); fatal != nil {
		msg := fatal.Error()
		rec.ProcessingError = &msg
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PersistenceError{ConferenceID: id, Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			ec.fail(entities.StageStore, err, true)
			e.audit.record(ctx, id, entities.StageStore, entities.LogStatusFailed, "run failed: "+err.Error(), e.runSummary(ctx, ec))
			e.logError(ctx, "❌ failed to store meeting", zap.Error(err))
		}
	}()

	// the record must land even when the run deadline is spent
	sctx, cancel := e.stageContext(context.WithoutCancel(ctx))
	defer cancel()

	if uerr := e.meetings.UpsertMeeting(sctx, rec); uerr != nil {
		return &PersistenceError{ConferenceID: id, Err: uerr}
	}

	e.audit.record(ctx, id, entities.StageStore, entities.LogStatusSuccess,
		fmt.Sprintf("run completed: processed=%t", rec.Processed), e.runSummary(ctx, ec))
	return nil
}

func (e *Executor) runSummary(ctx context.Context, ec *ExecutionContext) map[string]interface{} {
	meta := map[string]interface{}{
		"processed":   ec.Record.Processed,
		"task_count":  len(ec.Record.Tasks),
		"issue_count": len(ec.Record.IssueKeys),
		"error_count": len(ec.Errors),
		"duration_ms": e.now().Sub(ec.startedAt).Milliseconds(),
	}
	if runID, ok := jobcontext.GetRunID(ctx); ok {
		meta["run_id"] = runID.String()
	}
	if trigger, ok := jobcontext.GetTrigger(ctx); ok {
		meta["trigger"] = trigger
	}
	return meta
}

func (e *Executor) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.StageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.StageTimeout)
}

// referenceTime anchors relative due dates to when the meeting ended
func (e *Executor) referenceTime(m *entities.MeetingRecord) time.Time {
	if m.EndTime != nil {
		return *m.EndTime
	}
	return e.now()
}

func (e *Executor) fields(ctx context.Context, extra []zap.Field) []zap.Field {
	fields := make([]zap.Field, 0, len(extra)+3)
	if id, ok := jobcontext.GetConferenceID(ctx); ok {
		fields = append(fields, zap.String("conference_id", id))
	}
	if runID, ok := jobcontext.GetRunID(ctx); ok {
		trigger, _ := jobcontext.GetTrigger(ctx)
		fields = append(fields, zap.String("run_id", runID.String()), zap.String("trigger", trigger))
	}
	return append(fields, extra...)
}

func (e *Executor) info(ctx context.Context, msg string, extra ...zap.Field) {
	if e.logger != nil {
		e.logger.Info(msg, e.fields(ctx, extra)...)
	}
}

func (e *Executor) warn(ctx context.Context, msg string, extra ...zap.Field) {
	if e.logger != nil {
		e.logger.Warn(msg, e.fields(ctx, extra)...)
	}
}

func (e *Executor) logError(ctx context.Context, msg string, extra ...zap.Field) {
	if e.logger != nil {
		e.logger.Error(msg, e.fields(ctx, extra)...)
	}
}
