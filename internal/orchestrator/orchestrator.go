package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/frasal/image_describer/internal/domain"
)

// Sentinel errors double as the user-facing messages: nothing more
// structured ever crosses into the presentation layer.
var (
	ErrNoImage          = errors.New("please upload an image or take a photo")
	ErrSaveImageFailed  = errors.New("failed to save image")
	ErrUploadFailed     = errors.New("failed to upload image to cloud storage")
	ErrDescribeFailed   = errors.New("failed to analyze image")
	ErrNoActiveRequest  = errors.New("no active request, please upload an image first")
	ErrInvalidRequestID = errors.New("invalid request id")
	ErrSaveFeedback     = errors.New("failed to save feedback to cloud storage")
)

const (
	approvedMessage = "Thank you for your feedback!"
	rejectedMessage = "Thank you for your feedback. We'll improve our descriptions."
)

type ProcessResult struct {
	RequestID   string
	Description string
}

// Orchestrator drives one submission through save, upload, describe,
// feedback and metadata persistence. Every step is awaited in sequence;
// a failed step leaves the record at its last good status.
type Orchestrator struct {
	log           *slog.Logger
	tempDir       string
	tracker       Tracker
	uploader      ImageUploader
	metadataSaver MetadataSaver
	describer     Describer
}

func New(
	log *slog.Logger,
	tempDir string,
	tracker Tracker,
	uploader ImageUploader,
	metadataSaver MetadataSaver,
	describer Describer,
) *Orchestrator {
	return &Orchestrator{
		log:           log,
		tempDir:       tempDir,
		tracker:       tracker,
		uploader:      uploader,
		metadataSaver: metadataSaver,
		describer:     describer,
	}
}

func (o *Orchestrator) ProcessImage(ctx context.Context, image []byte) (*ProcessResult, error) {
	if len(image) == 0 {
		o.log.WarnContext(ctx, "no image provided")
		return nil, ErrNoImage
	}

	id := o.tracker.Create()
	log := o.log.With(slog.String("request_id", id))

	filename := fmt.Sprintf("%s_%s.jpg", time.Now().Format("20060102_150405"), id)
	tempPath := filepath.Join(o.tempDir, filename)

	if err := os.WriteFile(tempPath, image, 0o644); err != nil {
		log.ErrorContext(ctx, "failed to save image to temp path", slog.String("err", err.Error()))
		return nil, ErrSaveImageFailed
	}

	o.update(ctx, id, domain.RequestUpdate{
		Status:   statusPtr(domain.StatusImageReceived),
		TempPath: &tempPath,
	})

	log.InfoContext(ctx, "saved image, uploading to cloud storage", slog.String("temp_path", tempPath))

	// on upload failure the temp file is deliberately kept on disk for
	// operator recovery, there is no automatic retry
	key, err := o.uploader.PutImage(ctx, tempPath, filename)
	if err != nil {
		log.ErrorContext(ctx, "failed to upload image", slog.String("err", err.Error()))
		return nil, ErrUploadFailed
	}

	o.update(ctx, id, domain.RequestUpdate{
		Status:   statusPtr(domain.StatusUploadedToCloud),
		CloudKey: &key,
	})

	log.InfoContext(ctx, "uploaded image, requesting description", slog.String("cloud_key", key))

	description, err := o.describer.Describe(ctx, tempPath)
	if err != nil || description == "" {
		if err != nil {
			log.ErrorContext(ctx, "failed to analyze image", slog.String("err", err.Error()))
		} else {
			log.ErrorContext(ctx, "analysis returned empty description")
		}
		return nil, ErrDescribeFailed
	}

	o.update(ctx, id, domain.RequestUpdate{
		Status:      statusPtr(domain.StatusAnalyzed),
		Description: &description,
	})

	log.InfoContext(ctx, "image processing completed")

	return &ProcessResult{
		RequestID:   id,
		Description: description,
	}, nil
}

func (o *Orchestrator) SaveFeedback(ctx context.Context, id string, approved bool, note string) (string, error) {
	if id == "" {
		return "", ErrNoActiveRequest
	}

	req, err := o.tracker.Get(id)
	if err != nil {
		o.log.ErrorContext(ctx, "feedback for unknown request", slog.String("request_id", id))
		return "", ErrInvalidRequestID
	}

	log := o.log.With(slog.String("request_id", id))

	o.update(ctx, id, domain.RequestUpdate{
		Status:   statusPtr(domain.StatusFeedbackReceived),
		Feedback: &approved,
		Note:     &note,
	})

	metadata := domain.Metadata{
		Timestamp:   time.Now().Format(time.RFC3339),
		Description: req.Description,
		Approved:    approved,
		Note:        note,
	}

	if err := o.metadataSaver.PutMetadata(ctx, req.CloudKey, metadata); err != nil {
		log.ErrorContext(ctx, "failed to save metadata", slog.String("err", err.Error()))
		return "", ErrSaveFeedback
	}

	// cleanup failure is logged, never surfaced to the reviewer
	if err := o.tracker.CleanTempFile(id); err != nil {
		log.ErrorContext(ctx, "failed to clean temp file", slog.String("err", err.Error()))
	}

	o.update(ctx, id, domain.RequestUpdate{
		Status: statusPtr(domain.StatusCompleted),
	})

	log.InfoContext(ctx, "feedback saved", slog.Bool("approved", approved))

	if approved {
		return approvedMessage, nil
	}

	return rejectedMessage, nil
}

// update logs tracker failures instead of propagating them: the ids
// come from the tracker itself, so a miss here is an internal bug, not
// a user-facing condition.
func (o *Orchestrator) update(ctx context.Context, id string, upd domain.RequestUpdate) {
	if err := o.tracker.Update(id, upd); err != nil {
		o.log.ErrorContext(ctx, "failed to update request",
			slog.String("request_id", id),
			slog.String("err", err.Error()),
		)
	}
}

func statusPtr(s domain.Status) *domain.Status { return &s }
