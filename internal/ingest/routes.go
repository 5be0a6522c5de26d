package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// maxUploadBytes caps the size of a single uploaded file.
const maxUploadBytes = 32 << 20

// RegisterRoutes mounts the knowledge-base upload API.
func RegisterRoutes(r chi.Router, in *Ingester) {
	r.Route("/data/upload", func(r chi.Router) {
		r.Post("/text", handleText(in))
		r.Post("/{type}", handleFile(in))
	})
}

func handleFile(in *Ingester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected a multipart form with a file"})
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
			return
		}
		defer file.Close()

		raw, err := io.ReadAll(file)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading upload: " + err.Error()})
			return
		}

		res, err := in.IngestFile(r.Context(), header.Filename, raw, chi.URLParam(r, "type"), r.FormValue("category"))
		if err != nil {
			writeError(w, in, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message":  fmt.Sprintf("Successfully uploaded %d %s documents", res.Count, res.Type),
			"count":    res.Count,
			"category": res.Category,
		})
	}
}

func handleText(in *Ingester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := in.IngestText(r.Context(), r.FormValue("content"), r.FormValue("data_type"), r.FormValue("category"))
		if err != nil {
			writeError(w, in, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message":  fmt.Sprintf("Successfully uploaded %s data", res.Type),
			"type":     res.Type,
			"category": res.Category,
		})
	}
}

func writeError(w http.ResponseWriter, in *Ingester, err error) {
	switch {
	case errors.Is(err, ErrInvalidType), errors.Is(err, ErrEmptyContent),
		errors.Is(err, ErrBinaryContent), errors.Is(err, ErrMalformedFile):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		in.logger.Error("upload failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
