package handler

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// FilesHandler serves exported bundle files from the images directory.
type FilesHandler struct {
	baseDir string
	logger  *slog.Logger
}

// NewFilesHandler creates a new FilesHandler rooted at baseDir.
func NewFilesHandler(baseDir string, logger *slog.Logger) *FilesHandler {
	return &FilesHandler{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Serve handles GET /files/{folder}/{file}. Only direct children of a
// bundle folder are reachable; anything that would escape the images
// directory is rejected.
func (h *FilesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	folder := chi.URLParam(r, "folder")
	file := chi.URLParam(r, "file")

	if !safePathSegment(folder) || !safePathSegment(file) {
		writeError(w, http.StatusBadRequest, "INVALID_PATH", "Invalid file path")
		return
	}

	full := filepath.Join(h.baseDir, folder, file)

	// Belt and suspenders: the joined path must stay under the base dir.
	base, err := filepath.Abs(h.baseDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}
	abs, err := filepath.Abs(full)
	if err != nil || !strings.HasPrefix(abs, base+string(filepath.Separator)) {
		writeError(w, http.StatusBadRequest, "INVALID_PATH", "Invalid file path")
		return
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "FILE_NOT_FOUND", "File not found")
		return
	}

	http.ServeFile(w, r, abs)
}

// safePathSegment rejects traversal attempts and nested paths inside a
// single URL segment.
func safePathSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\") && !strings.Contains(s, "..")
}
