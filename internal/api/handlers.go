package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ytfetch/internal/delivery"
	"ytfetch/internal/downloader"
	"ytfetch/internal/logger"
	"ytfetch/pkg/models"
)

const filesPrefix = "/files/"

type fileInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

type downloadResponse struct {
	Status      string   `json:"status"`
	JobID       string   `json:"jobId"`
	File        fileInfo `json:"file"`
	DownloadURL string   `json:"downloadUrl,omitempty"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	JobID   string `json:"jobId,omitempty"`
}

type libraryEntry struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"modTime"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
}

// handleDownload handles the /api/download endpoint
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	req, err := parseDownloadForm(r, s.config.OutputDir)
	if err != nil {
		writeJobError(w, "", err)
		return
	}

	job, err := s.orchestrator.Run(r.Context(), req)
	if err != nil {
		writeJobError(w, job.ID, err)
		return
	}

	resp := downloadResponse{
		Status: "ok",
		JobID:  job.ID,
		File: fileInfo{
			Name: job.File.Name,
			Path: job.File.Path(),
			Size: job.File.Size,
		},
	}
	if name, ok := s.gateway.RelativeName(job.File.Path()); ok {
		resp.DownloadURL = fileURL(name)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleFile streams a stored download as an attachment
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	// chi matches on the raw path when the request carried escapes
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		name = unescaped
	}

	f, info, err := s.gateway.Open(name)
	if err != nil {
		switch {
		case errors.Is(err, delivery.ErrForbidden):
			logger.FromContext(r.Context()).Warn("rejected file request", "name", name)
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, delivery.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		default:
			logger.FromContext(r.Context()).Error("failed to open file", "name", name, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": info.Name(),
	}))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// handleListFiles lists the stored downloads
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.gateway.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Status:  "error",
			Kind:    "unexpected_failure",
			Message: err.Error(),
		})
		return
	}

	entries := make([]libraryEntry, 0, len(files))
	for _, f := range files {
		entry := libraryEntry{Name: f.Name, Size: f.Size, ModTime: f.ModTime}
		if name, ok := s.gateway.RelativeName(f.Path()); ok {
			entry.DownloadURL = fileURL(name)
		}
		entries = append(entries, entry)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(entries),
		"files": entries,
	})
}

// parseDownloadForm turns the submitted form into a request, applying defaults
func parseDownloadForm(r *http.Request, defaultDir string) (models.DownloadRequest, error) {
	rawURL := strings.TrimSpace(r.FormValue("url"))
	if !downloader.IsAcceptedURL(rawURL) {
		return models.DownloadRequest{}, fmt.Errorf("%w: %q is not a YouTube URL", downloader.ErrInvalidURL, rawURL)
	}

	kind, err := models.ParseMediaKind(r.FormValue("dtype"))
	if err != nil {
		return models.DownloadRequest{}, err
	}

	field := "video_format"
	if kind == models.MediaKindAudio {
		field = "audio_format"
	}
	container, err := models.ParseContainer(kind, r.FormValue(field))
	if err != nil {
		return models.DownloadRequest{}, err
	}

	quality, err := models.ParseQuality(r.FormValue("quality"))
	if err != nil {
		return models.DownloadRequest{}, err
	}

	outDir := strings.TrimSpace(r.FormValue("outdir"))
	if outDir == "" {
		outDir = defaultDir
	}

	return models.DownloadRequest{
		URL:        rawURL,
		MediaKind:  kind,
		Container:  container,
		Quality:    quality,
		CustomName: r.FormValue("filename"),
		OutputDir:  outDir,
	}, nil
}

// statusForKind maps an error kind onto an HTTP status
func statusForKind(kind string) int {
	switch kind {
	case "invalid_url", "invalid_option":
		return http.StatusBadRequest
	case "missing_dependency":
		return http.StatusServiceUnavailable
	case "extraction_failure":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJobError(w http.ResponseWriter, jobID string, err error) {
	kind := downloader.ErrorKind(err)
	writeJSON(w, statusForKind(kind), errorResponse{
		Status:  "error",
		Kind:    kind,
		Message: err.Error(),
		JobID:   jobID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", "error", err)
	}
}

// fileURL builds the retrieval URL for a gateway-relative name
func fileURL(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return filesPrefix + strings.Join(parts, "/")
}
