package meeting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	"github.com/johnquangdev/meeting-processor/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/meeting-processor/internal/usecase/errors"
	"github.com/johnquangdev/meeting-processor/internal/usecase/idempotency"
	"github.com/johnquangdev/meeting-processor/pkg/jobcontext"
)

// Outcome tells the caller what a guarded run request did
type Outcome string

const (
	// OutcomeProcessed means a pipeline run executed and reached STORE
	OutcomeProcessed Outcome = "processed"
	// OutcomeAlreadyCompleted means the meeting was processed before; nothing ran
	OutcomeAlreadyCompleted Outcome = "already_completed"
	// OutcomeInFlight means another run holds the meeting; nothing ran
	OutcomeInFlight Outcome = "in_flight"
)

// Runner executes one pipeline run
type Runner interface {
	Run(ctx context.Context, c entities.Candidate) (*entities.MeetingRecord, error)
}

// ProcessInput is the manual trigger payload
type ProcessInput struct {
	ConferenceID string
	Transcript   string
	MeetingTitle string
	Participants []string
}

// Result is the outcome of a guarded run. Meeting is nil for OutcomeInFlight.
type Result struct {
	Outcome Outcome
	Meeting *entities.MeetingRecord
}

// Service defines the meeting use cases behind the HTTP surface
type Service interface {
	Process(ctx context.Context, in ProcessInput) (*Result, error)
	Reprocess(ctx context.Context, conferenceID string) (*Result, error)
	GetMeeting(ctx context.Context, conferenceID string) (*entities.MeetingRecord, error)
	ListMeetings(ctx context.Context, filters repositories.MeetingFilters) ([]*entities.MeetingRecord, int64, error)
	ListLogs(ctx context.Context, conferenceID string) ([]*entities.ProcessingLogEntry, error)
}

type meetingService struct {
	runner   Runner
	tracker  *idempotency.Tracker
	meetings repositories.MeetingRepository
	logs     repositories.ProcessingLogRepository
	logger   *zap.Logger
}

// NewMeetingService creates the meeting service. tracker must be the same
// instance the scheduler uses.
func NewMeetingService(
	runner Runner,
	tracker *idempotency.Tracker,
	meetings repositories.MeetingRepository,
	logs repositories.ProcessingLogRepository,
	logger *zap.Logger,
) Service {
	return &meetingService{
		runner:   runner,
		tracker:  tracker,
		meetings: meetings,
		logs:     logs,
		logger:   logger,
	}
}

// Process runs the pipeline for a manually submitted meeting, going through
// the same completion check and single-flight guard as the scheduler.
func (s *meetingService) Process(ctx context.Context, in ProcessInput) (*Result, error) {
	c := entities.Candidate{
		ConferenceID: strings.TrimSpace(in.ConferenceID),
		Title:        in.MeetingTitle,
		Transcript:   in.Transcript,
		Participants: in.Participants,
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrInvalidInput, err)
	}

	if res, done, err := s.completed(ctx, c.ConferenceID); err != nil || done {
		return res, err
	}
	if !s.tracker.TryAcquire(c.ConferenceID) {
		s.info("⏭️ meeting already in flight", c.ConferenceID)
		return &Result{Outcome: OutcomeInFlight}, nil
	}
	defer s.tracker.Release(c.ConferenceID)

	// a run that finished between the first check and the acquire
	if res, done, err := s.completed(ctx, c.ConferenceID); err != nil || done {
		return res, err
	}
	return s.run(ctx, c, jobcontext.TriggerManual)
}

// Reprocess reruns the pipeline over a stored meeting's transcript. It is the
// only path that clears the processed flag.
func (s *meetingService) Reprocess(ctx context.Context, conferenceID string) (*Result, error) {
	stored, err := s.GetMeeting(ctx, conferenceID)
	if err != nil {
		return nil, err
	}
	c := entities.CandidateFromRecord(stored)
	if strings.TrimSpace(c.Transcript) == "" {
		return nil, usecaseErrors.ErrNoTranscript
	}

	if !s.tracker.TryAcquire(conferenceID) {
		s.info("⏭️ meeting already in flight", conferenceID)
		return &Result{Outcome: OutcomeInFlight}, nil
	}
	defer s.tracker.Release(conferenceID)

	if err := s.meetings.ResetMeeting(ctx, conferenceID); err != nil {
		return nil, fmt.Errorf("failed to reset meeting: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("🔁 meeting reset for reprocessing", zap.String("conference_id", conferenceID))
	}
	return s.run(ctx, c, jobcontext.TriggerReprocess)
}

func (s *meetingService) GetMeeting(ctx context.Context, conferenceID string) (*entities.MeetingRecord, error) {
	m, err := s.meetings.GetMeeting(ctx, conferenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	if m == nil {
		return nil, usecaseErrors.ErrMeetingNotFound
	}
	return m, nil
}

func (s *meetingService) ListMeetings(ctx context.Context, filters repositories.MeetingFilters) ([]*entities.MeetingRecord, int64, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	return s.meetings.ListMeetings(ctx, filters)
}

// ListLogs returns the audit trail in execution order. A meeting whose run
// never reached STORE still has entries, so an unknown record is not an error.
func (s *meetingService) ListLogs(ctx context.Context, conferenceID string) ([]*entities.ProcessingLogEntry, error) {
	return s.logs.ListLogs(ctx, conferenceID)
}

func (s *meetingService) completed(ctx context.Context, conferenceID string) (*Result, bool, error) {
	done, err := s.tracker.IsCompleted(ctx, conferenceID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check completion: %w", err)
	}
	if !done {
		return nil, false, nil
	}
	m, err := s.meetings.GetMeeting(ctx, conferenceID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get meeting: %w", err)
	}
	s.info("⏭️ meeting already completed", conferenceID)
	return &Result{Outcome: OutcomeAlreadyCompleted, Meeting: m}, true, nil
}

func (s *meetingService) run(ctx context.Context, c entities.Candidate, trigger string) (*Result, error) {
	// detached from request cancellation
	runCtx, cancel := jobcontext.RunBegin(ctx, c.ConferenceID, trigger, -1, 0)
	defer cancel()

	var rec *entities.MeetingRecord
	err := jobcontext.RunEnd(runCtx, func(ctx context.Context) error {
		var runErr error
		rec, runErr = s.runner.Run(ctx, c)
		return runErr
	})
	if err != nil {
		if errors.Is(err, entities.ErrMeetingProcessed) {
			m, gerr := s.meetings.GetMeeting(ctx, c.ConferenceID)
			if gerr == nil && m != nil {
				return &Result{Outcome: OutcomeAlreadyCompleted, Meeting: m}, nil
			}
		}
		return &Result{Outcome: OutcomeProcessed, Meeting: rec}, err
	}
	return &Result{Outcome: OutcomeProcessed, Meeting: rec}, nil
}

func (s *meetingService) info(msg, conferenceID string) {
	if s.logger != nil {
		s.logger.Info(msg, zap.String("conference_id", conferenceID))
	}
}
