package assemblyai

import (
	"context"
	"fmt"
	"strings"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	"github.com/johnquangdev/meeting-processor/pkg/config"
)

// transcriptAPI is the part of the SDK's transcript service the source uses
type transcriptAPI interface {
	List(ctx context.Context, params aai.ListTranscriptParams) (aai.TranscriptList, error)
	Get(ctx context.Context, transcriptID string) (aai.Transcript, error)
}

// CompletionChecker lets the source skip transcripts already processed
// before downloading them.
type CompletionChecker interface {
	IsProcessed(ctx context.Context, conferenceID string) (bool, error)
}

// TranscriptSource treats every completed AssemblyAI transcript as an ended
// meeting. The transcript id is the conference id.
type TranscriptSource struct {
	transcripts transcriptAPI
	limit       int64
	completed   CompletionChecker
	logger      *zap.Logger
}

// NewTranscriptSource creates a source backed by the official SDK client
func NewTranscriptSource(cfg config.AssemblyAIConfig, completed CompletionChecker, logger *zap.Logger) *TranscriptSource {
	opts := []aai.ClientOption{aai.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, aai.WithBaseURL(cfg.BaseURL))
	}
	client := aai.NewClientWithOptions(opts...)
	return newTranscriptSource(client.Transcripts, cfg.ListLimit, completed, logger)
}

func newTranscriptSource(api transcriptAPI, limit int64, completed CompletionChecker, logger *zap.Logger) *TranscriptSource {
	if limit <= 0 {
		limit = 50
	}
	return &TranscriptSource{transcripts: api, limit: limit, completed: completed, logger: logger}
}

// FetchEndedWithTranscript lists recently completed transcripts and returns
// those not yet processed. A transcript that cannot be fetched is logged and
// skipped; a failed listing fails the whole fetch.
func (s *TranscriptSource) FetchEndedWithTranscript(ctx context.Context) ([]entities.Candidate, error) {
	list, err := s.transcripts.List(ctx, aai.ListTranscriptParams{
		Status: aai.TranscriptStatusCompleted,
		Limit:  aai.Int64(s.limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list assemblyai transcripts: %w", err)
	}

	candidates := make([]entities.Candidate, 0, len(list.Transcripts))
	for _, item := range list.Transcripts {
		if item.ID == nil || *item.ID == "" || item.Status != aai.TranscriptStatusCompleted {
			continue
		}
		id := *item.ID
		if s.completed != nil {
			if done, err := s.completed.IsProcessed(ctx, id); err == nil && done {
				continue
			}
		}

		transcript, err := s.transcripts.Get(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if s.logger != nil {
				s.logger.Warn("⚠️ Failed to get assemblyai transcript", zap.String("transcript_id", id), zap.Error(err))
			}
			continue
		}

		c := toCandidate(id, transcript, parseTimestamp(item.Completed))
		if err := c.Validate(); err != nil {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// toCandidate renders utterances as "Speaker X: text" lines when present and
// collects their speakers as participants.
func toCandidate(id string, t aai.Transcript, completed *time.Time) entities.Candidate {
	var (
		b            strings.Builder
		participants []string
	)
	for _, u := range t.Utterances {
		if u.Text == nil || strings.TrimSpace(*u.Text) == "" {
			continue
		}
		speaker := "Unknown"
		if u.Speaker != nil && *u.Speaker != "" {
			speaker = "Speaker " + *u.Speaker
		}
		participants = append(participants, speaker)
		b.WriteString(speaker)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(*u.Text))
		b.WriteString("\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" && t.Text != nil {
		text = strings.TrimSpace(*t.Text)
	}

	return entities.Candidate{
		ConferenceID: id,
		Title:        "AssemblyAI transcript " + id,
		Transcript:   text,
		Participants: entities.NormalizeParticipants(participants),
		EndTime:      completed,
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
}

func parseTimestamp(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
