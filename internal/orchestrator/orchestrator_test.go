package orchestrator_test

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/frasal/image_describer/internal/domain"
	"github.com/frasal/image_describer/internal/orchestrator"
	"github.com/frasal/image_describer/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	err error

	mu    sync.Mutex
	calls int
}

func (f *fakeUploader) PutImage(_ context.Context, _, name string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}

	return name, nil
}

type fakeSaver struct {
	err error

	mu    sync.Mutex
	saved map[string]domain.Metadata
}

func (f *fakeSaver) PutMetadata(_ context.Context, key string, metadata domain.Metadata) error {
	if f.err != nil {
		return f.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saved == nil {
		f.saved = make(map[string]domain.Metadata)
	}
	f.saved[key] = metadata

	return nil
}

type fakeDescriber struct {
	err error
	// when text is empty the description echoes the image filename, so
	// concurrent submissions get distinguishable results
	text string
}

func (f *fakeDescriber) Describe(_ context.Context, imagePath string) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	if f.text != "" {
		return f.text, nil
	}

	return "description of " + filepath.Base(imagePath), nil
}

type fixture struct {
	tracker   *tracker.Tracker
	uploader  *fakeUploader
	saver     *fakeSaver
	describer *fakeDescriber
	orch      *orchestrator.Orchestrator
	tempDir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := slog.New(slog.DiscardHandler)

	f := &fixture{
		tracker:   tracker.New(log),
		uploader:  &fakeUploader{},
		saver:     &fakeSaver{},
		describer: &fakeDescriber{},
		tempDir:   t.TempDir(),
	}

	f.orch = orchestrator.New(log, f.tempDir, f.tracker, f.uploader, f.saver, f.describer)

	return f
}

func TestOrchestrator_ProcessImage_HappyPath(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	result, err := f.orch.ProcessImage(t.Context(), []byte("fake image"))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.RequestID)
	assert.NotEmpty(t, result.Description)

	req, err := f.tracker.Get(result.RequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAnalyzed, req.Status)
	assert.Equal(t, result.Description, req.Description)
	assert.NotEmpty(t, req.CloudKey)
	assert.FileExists(t, req.TempPath)
}

func TestOrchestrator_ProcessImage_NoImage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.orch.ProcessImage(t.Context(), nil)
	require.ErrorIs(t, err, orchestrator.ErrNoImage)
	assert.Zero(t, f.uploader.calls)
}

func TestOrchestrator_ProcessImage_UploadFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.uploader.err = errors.New("service unavailable")

	_, err := f.orch.ProcessImage(t.Context(), []byte("fake image"))
	require.ErrorIs(t, err, orchestrator.ErrUploadFailed)
	require.ErrorContains(t, err, "cloud storage")

	// the record must be stalled at image_received with the temp file
	// kept on disk and no cloud key
	entries, err := filepath.Glob(filepath.Join(f.tempDir, "*.jpg"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must be kept for operator recovery")

	id := requestIDFromTempFile(t, entries[0])
	req, err := f.tracker.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusImageReceived, req.Status)
	assert.Empty(t, req.CloudKey)
	assert.Equal(t, entries[0], req.TempPath)
}

// requestIDFromTempFile recovers the record id from the generated
// "<timestamp>_<id>.jpg" temp file name.
func requestIDFromTempFile(t *testing.T, path string) string {
	t.Helper()

	name := filepath.Base(path)
	name = name[:len(name)-len(".jpg")]

	// timestamp prefix is "20060102_150405_"
	require.Greater(t, len(name), 16)

	return name[16:]
}

func TestOrchestrator_ProcessImage_DescribeFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.describer.err = errors.New("inference timeout")

	_, err := f.orch.ProcessImage(t.Context(), []byte("fake image"))
	require.ErrorIs(t, err, orchestrator.ErrDescribeFailed)

	entries, err := filepath.Glob(filepath.Join(f.tempDir, "*.jpg"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	req, err := f.tracker.Get(requestIDFromTempFile(t, entries[0]))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUploadedToCloud, req.Status)
	assert.Empty(t, req.Description)
}

func TestOrchestrator_ProcessImage_EmptyDescription(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	orch := orchestrator.New(slog.New(slog.DiscardHandler), f.tempDir, f.tracker, f.uploader, f.saver, emptyDescriber{})

	_, err := orch.ProcessImage(t.Context(), []byte("fake image"))
	require.ErrorIs(t, err, orchestrator.ErrDescribeFailed)
}

type emptyDescriber struct{}

func (emptyDescriber) Describe(context.Context, string) (string, error) { return "", nil }

func TestOrchestrator_SaveFeedback_Approved(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	result, err := f.orch.ProcessImage(t.Context(), []byte("fake image"))
	require.NoError(t, err)

	reqBefore, err := f.tracker.Get(result.RequestID)
	require.NoError(t, err)
	tempPath := reqBefore.TempPath

	msg, err := f.orch.SaveFeedback(t.Context(), result.RequestID, true, "looks good")
	require.NoError(t, err)
	assert.Equal(t, "Thank you for your feedback!", msg)

	req, err := f.tracker.Get(result.RequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, req.Status)
	require.NotNil(t, req.Feedback)
	assert.True(t, *req.Feedback)
	assert.Equal(t, "looks good", req.Note)

	assert.NoFileExists(t, tempPath)

	metadata, ok := f.saver.saved[req.CloudKey]
	require.True(t, ok, "metadata must be stored under the record's cloud key")
	assert.True(t, metadata.Approved)
	assert.Equal(t, "looks good", metadata.Note)
	assert.Equal(t, result.Description, metadata.Description)

	_, err = time.Parse(time.RFC3339, metadata.Timestamp)
	require.NoError(t, err)
}

func TestOrchestrator_SaveFeedback_Rejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	result, err := f.orch.ProcessImage(t.Context(), []byte("fake image"))
	require.NoError(t, err)

	msg, err := f.orch.SaveFeedback(t.Context(), result.RequestID, false, "wrong animal")
	require.NoError(t, err)
	assert.Equal(t, "Thank you for your feedback. We'll improve our descriptions.", msg)

	metadata := f.saver.saved[mustCloudKey(t, f.tracker, result.RequestID)]
	assert.False(t, metadata.Approved)
	assert.Equal(t, "wrong animal", metadata.Note)
}

func mustCloudKey(t *testing.T, tr *tracker.Tracker, id string) string {
	t.Helper()

	req, err := tr.Get(id)
	require.NoError(t, err)
	require.NotEmpty(t, req.CloudKey)

	return req.CloudKey
}

func TestOrchestrator_SaveFeedback_EmptyID(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.orch.SaveFeedback(t.Context(), "", true, "")
	require.ErrorIs(t, err, orchestrator.ErrNoActiveRequest)
	assert.Empty(t, f.saver.saved)
}

func TestOrchestrator_SaveFeedback_UnknownID(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.orch.SaveFeedback(t.Context(), "d5c7a7e5-0000-0000-0000-000000000000", true, "")
	require.ErrorIs(t, err, orchestrator.ErrInvalidRequestID)
	require.ErrorContains(t, err, "invalid request id")
	assert.Empty(t, f.saver.saved, "no storage writes on unknown id")
}

func TestOrchestrator_SaveFeedback_MetadataWriteFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.saver.err = errors.New("bucket gone")

	result, err := f.orch.ProcessImage(t.Context(), []byte("fake image"))
	require.NoError(t, err)

	_, err = f.orch.SaveFeedback(t.Context(), result.RequestID, true, "")
	require.ErrorIs(t, err, orchestrator.ErrSaveFeedback)

	req, err := f.tracker.Get(result.RequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFeedbackReceived, req.Status)
	assert.FileExists(t, req.TempPath, "temp file is kept until metadata is durable")
}

func TestOrchestrator_ProcessImage_ConcurrentSubmissions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	const n = 8

	results := make(chan *orchestrator.ProcessResult, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()

			result, err := f.orch.ProcessImage(t.Context(), []byte{byte(i)})
			assert.NoError(t, err)
			results <- result
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]struct{}, n)
	for result := range results {
		require.NotNil(t, result)

		_, dup := seen[result.RequestID]
		require.False(t, dup)
		seen[result.RequestID] = struct{}{}

		// the fake describer embeds the temp file name, which embeds the
		// record id: descriptions must never cross records
		assert.Contains(t, result.Description, result.RequestID)

		req, err := f.tracker.Get(result.RequestID)
		require.NoError(t, err)
		assert.Equal(t, result.Description, req.Description)
	}

	require.Len(t, seen, n)
}
