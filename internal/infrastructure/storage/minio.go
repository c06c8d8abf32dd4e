package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	"github.com/johnquangdev/meeting-processor/pkg/config"
)

// maxTranscriptObjectSize caps a single transcript object read
const maxTranscriptObjectSize = 16 << 20

// CompletionChecker lets the source skip meetings that are already processed
// before downloading their transcript.
type CompletionChecker interface {
	IsProcessed(ctx context.Context, conferenceID string) (bool, error)
}

// TranscriptObject is the JSON document stored per ended meeting at
// <prefix><conference_id>.json
type TranscriptObject struct {
	ConferenceID string     `json:"conference_id"`
	Title        string     `json:"title"`
	Transcript   string     `json:"transcript"`
	Participants []string   `json:"participants"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
}

// MinIOClient reads ended-meeting transcripts from a bucket
type MinIOClient struct {
	client    *minio.Client
	bucket    string
	prefix    string
	completed CompletionChecker
	logger    *zap.Logger
}

// NewMinIOClient creates a new MinIO client, creating the bucket if needed.
// The first contact is retried with exponential backoff.
func NewMinIOClient(cfg *config.StorageConfig, completed CompletionChecker, logger *zap.Logger) (*MinIOClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	client := &MinIOClient{
		client:    minioClient,
		bucket:    cfg.BucketName,
		prefix:    cfg.Prefix,
		completed: completed,
		logger:    logger,
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = time.Minute
	notify := func(err error, wait time.Duration) {
		if logger != nil {
			logger.Warn("⏳ minio not ready, retrying", zap.Error(err), zap.Duration("wait", wait))
		}
	}
	if err := backoff.RetryNotify(client.ensureBucket, b, notify); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	if logger != nil {
		logger.Info("✅ MinIO connected", zap.String("bucket", cfg.BucketName), zap.String("prefix", cfg.Prefix))
	}
	return client, nil
}

func (m *MinIOClient) ensureBucket() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// FetchEndedWithTranscript lists transcript objects and returns those not yet
// processed. An object that cannot be read or decoded is logged and skipped.
func (m *MinIOClient) FetchEndedWithTranscript(ctx context.Context) ([]entities.Candidate, error) {
	keys, err := m.ListFiles(ctx, m.prefix)
	if err != nil {
		return nil, err
	}

	candidates := make([]entities.Candidate, 0, len(keys))
	for _, key := range keys {
		id := conferenceIDFromKey(key)
		if id == "" {
			continue
		}
		if m.completed != nil {
			if done, err := m.completed.IsProcessed(ctx, id); err == nil && done {
				continue
			}
		}

		c, err := m.readTranscript(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if m.logger != nil {
				m.logger.Warn("⚠️ Skipping unreadable transcript object", zap.String("key", key), zap.Error(err))
			}
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// ListFiles lists all object keys under prefix
func (m *MinIOClient) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	var files []string

	objectCh := m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		files = append(files, object.Key)
	}
	return files, nil
}

func (m *MinIOClient) readTranscript(ctx context.Context, key string) (entities.Candidate, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return entities.Candidate{}, fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()

	return decodeTranscriptObject(key, io.LimitReader(obj, maxTranscriptObjectSize))
}

// decodeTranscriptObject turns one stored document into a candidate. The
// conference id falls back to the object's base name.
func decodeTranscriptObject(key string, r io.Reader) (entities.Candidate, error) {
	var doc TranscriptObject
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return entities.Candidate{}, fmt.Errorf("failed to decode transcript: %w", err)
	}
	if strings.TrimSpace(doc.ConferenceID) == "" {
		doc.ConferenceID = conferenceIDFromKey(key)
	}

	c := entities.Candidate{
		ConferenceID: strings.TrimSpace(doc.ConferenceID),
		Title:        doc.Title,
		Transcript:   doc.Transcript,
		Participants: doc.Participants,
		StartTime:    doc.StartTime,
		EndTime:      doc.EndTime,
	}
	if err := c.Validate(); err != nil {
		return entities.Candidate{}, err
	}
	return c, nil
}

func conferenceIDFromKey(key string) string {
	if !strings.HasSuffix(key, ".json") {
		return ""
	}
	return strings.TrimSuffix(path.Base(key), ".json")
}
