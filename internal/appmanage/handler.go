// Package appmanage handles application package uploads. Files land in a
// flat directory on local disk; distribution is served from there by the
// fronting web server.
package appmanage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"appupdate-service/internal/apperror"
	"appupdate-service/internal/respond"
)

// APK uploads far exceed the default multipart memory limit.
const maxUploadBytes = 1 << 30 // 1 GB

// Older clients send the part under different names; all three are accepted.
var uploadFields = []string{"file", "upload_file", "app_file"}

const fallbackFilename = "file.bin"

// Handler exposes the app file upload endpoint.
type Handler struct {
	dir    string
	logger *zap.SugaredLogger
}

func NewHandler(dir string, logger *zap.SugaredLogger) *Handler {
	return &Handler{dir: dir, logger: logger}
}

// UploadResponse reports where the uploaded file was stored.
type UploadResponse struct {
	FilePath       string `json:"file_path"`
	UploadFileInfo string `json:"upload_file_info"`
}

// UploadAppFile stores one multipart file part on disk. The client-supplied
// filename is reduced to its base name so the part can never escape the
// upload directory.
func (h *Handler) UploadAppFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	part, header, err := h.filePart(r)
	if err != nil {
		h.logger.Debugw("app file upload rejected", "err", err)
		respond.Err(w, err)
		return
	}
	defer part.Close()

	name := filepath.Base(header.Filename)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		name = fallbackFilename
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		respond.Err(w, apperror.Internal("failed to create upload directory", err))
		return
	}

	dest := filepath.Join(h.dir, name)
	out, err := os.Create(dest)
	if err != nil {
		respond.Err(w, apperror.Internal("failed to save uploaded file", err))
		return
	}
	defer out.Close()

	size, err := io.Copy(out, part)
	if err != nil {
		respond.Err(w, apperror.Internal("failed to save uploaded file", err))
		return
	}

	h.logger.Infow("app file uploaded", "path", dest, "size", size)
	respond.OK(w, UploadResponse{
		FilePath:       dest,
		UploadFileInfo: fmt.Sprintf("file '%s' uploaded successfully", name),
	})
}

// filePart finds the uploaded part under any accepted field name. A missing
// part under one name falls through to the next; any other parse failure is
// a bad request.
func (h *Handler) filePart(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	for _, field := range uploadFields {
		f, fh, err := r.FormFile(field)
		if err == nil {
			return f, fh, nil
		}
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		return nil, nil, apperror.BadRequest(fmt.Sprintf("invalid multipart upload: %s", err))
	}
	return nil, nil, apperror.BadRequest("missing upload file field, use multipart/form-data with 'file' (or 'upload_file'/'app_file')")
}
