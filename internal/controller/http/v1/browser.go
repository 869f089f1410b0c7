package v1

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frasal/image_describer/internal/domain"
	"github.com/frasal/image_describer/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/jszwec/csvutil"
)

type ObjectStore interface {
	GetObject(ctx context.Context, name string) ([]byte, error)
	ListObjects(ctx context.Context) ([]string, error)
}

type ReportGenerator interface {
	Generate(entries []domain.GalleryEntry) ([]byte, error)
}

// BrowserHandler is the read-side collaborator: it pairs stored images
// with their metadata objects and renders listings and exports.
type BrowserHandler struct {
	log             *slog.Logger
	store           ObjectStore
	reportGenerator ReportGenerator
}

func NewBrowserHandler(log *slog.Logger, store ObjectStore, reportGenerator ReportGenerator) *BrowserHandler {
	return &BrowserHandler{
		log:             log,
		store:           store,
		reportGenerator: reportGenerator,
	}
}

func (h *BrowserHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	entries, err := h.listEntries(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *BrowserHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	data, err := h.store.GetObject(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			http.Error(w, "image not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}

func (h *BrowserHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	entries, err := h.listEntries(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data, err := csvutil.Marshal(entries)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="images.csv"`)
	_, _ = w.Write(data)
}

func (h *BrowserHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	entries, err := h.listEntries(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data, err := h.reportGenerator.Generate(entries)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="review_report.pdf"`)
	_, _ = w.Write(data)
}

// listEntries pairs every non-metadata object with its metadata blob.
// A missing or unparsable metadata object degrades to an empty entry,
// never to an error.
func (h *BrowserHandler) listEntries(ctx context.Context) ([]domain.GalleryEntry, error) {
	names, err := h.store.ListObjects(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.GalleryEntry, 0, len(names))

	for _, name := range names {
		if storage.IsMetadataKey(name) {
			continue
		}

		entry := domain.GalleryEntry{
			Name: name,
			URL:  "/image/" + name,
		}

		if data, err := h.store.GetObject(ctx, storage.MetadataKey(name)); err == nil {
			var metadata domain.Metadata
			if err := json.Unmarshal(data, &metadata); err == nil {
				approved := metadata.Approved
				entry.Description = metadata.Description
				entry.Note = metadata.Note
				entry.Approved = &approved
				entry.Timestamp = metadata.Timestamp
			} else {
				h.log.WarnContext(ctx, "unparsable metadata object", slog.String("key", name))
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
