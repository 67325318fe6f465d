package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxCoverBytes = 10 << 20 // 10 MB

var coverExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

// CoverHandler serves and accepts book cover images under the configured
// covers folder inside the vault.
type CoverHandler struct {
	vaultRoot    string
	coversFolder string
}

// NewCoverHandler creates a handler rooted at the vault directory.
func NewCoverHandler(vaultRoot, coversFolder string) *CoverHandler {
	if coversFolder == "" {
		coversFolder = "covers"
	}
	return &CoverHandler{vaultRoot: vaultRoot, coversFolder: coversFolder}
}

func (h *CoverHandler) coversPath() string {
	return filepath.Join(h.vaultRoot, h.coversFolder)
}

// safeName validates that the filename is a plain image name (no path
// separators, no traversal) and returns the absolute path under the covers
// dir.
func (h *CoverHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	if !coverExtensions[strings.ToLower(filepath.Ext(cleaned))] {
		return "", fmt.Errorf("unsupported image type: %s", name)
	}
	abs := filepath.Join(h.coversPath(), cleaned)
	if !strings.HasPrefix(abs, h.coversPath()+string(os.PathSeparator)) && abs != h.coversPath() {
		return "", fmt.Errorf("path escapes covers directory")
	}
	return abs, nil
}

// ServeFile handles GET /covers/{filename}.
func (h *CoverHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	abs, err := h.safeName(filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

// Upload handles POST /api/covers (multipart/form-data, field "file").
func (h *CoverHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCoverBytes)

	if err := r.ParseMultipartForm(maxCoverBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	abs, err := h.safeName(header.Filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	if err := os.MkdirAll(h.coversPath(), 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to create covers dir"))
		return
	}

	dst, err := os.Create(abs)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to create file"))
		return
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to write file"))
		return
	}

	writeJSON(w, http.StatusCreated, CoverUploadResponse{
		Filename: header.Filename,
		Size:     written,
		URL:      "/covers/" + header.Filename,
	})
}
