package appmanage

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	return NewHandler(dir, zap.NewNop().Sugar()), dir
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/app_manage/upload_app_file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func uploadEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (UploadResponse, int, string) {
	t.Helper()
	var env struct {
		Data UploadResponse `json:"data"`
		Code int            `json:"code"`
		Msg  string         `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data, env.Code, env.Msg
}

func TestUploadAppFile_SavesFile(t *testing.T) {
	h, dir := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.UploadAppFile(rec, multipartRequest(t, "file", "app-1.2.3.apk", []byte("apk-bytes")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data, code, _ := uploadEnvelope(t, rec)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, filepath.Join(dir, "app-1.2.3.apk"), data.FilePath)
	assert.Contains(t, data.UploadFileInfo, "uploaded successfully")

	saved, err := os.ReadFile(data.FilePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("apk-bytes"), saved)
}

func TestUploadAppFile_AcceptsLegacyFieldNames(t *testing.T) {
	for _, field := range []string{"upload_file", "app_file"} {
		h, _ := newTestHandler(t)

		rec := httptest.NewRecorder()
		h.UploadAppFile(rec, multipartRequest(t, field, "app.apk", []byte("x")))
		assert.Equalf(t, http.StatusOK, rec.Code, "field %s: %s", field, rec.Body.String())
	}
}

func TestUploadAppFile_MissingFileField(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.UploadAppFile(rec, multipartRequest(t, "something_else", "app.apk", []byte("x")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	_, _, msg := uploadEnvelope(t, rec)
	assert.Contains(t, msg, "missing upload file field")
}

func TestUploadAppFile_NotMultipart(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/app_manage/upload_app_file", strings.NewReader(`{"file":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.UploadAppFile(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	_, _, msg := uploadEnvelope(t, rec)
	assert.Contains(t, msg, "invalid multipart upload")
}

func TestUploadAppFile_FilenameCannotEscapeDir(t *testing.T) {
	h, dir := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.UploadAppFile(rec, multipartRequest(t, "file", "../../escape.apk", []byte("x")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data, _, _ := uploadEnvelope(t, rec)
	assert.Equal(t, filepath.Join(dir, "escape.apk"), data.FilePath)
	_, err := os.Stat(filepath.Join(dir, "escape.apk"))
	assert.NoError(t, err)
}

func TestUploadAppFile_BareTraversalFilenameFallsBack(t *testing.T) {
	h, dir := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.UploadAppFile(rec, multipartRequest(t, "file", "..", []byte("x")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data, _, _ := uploadEnvelope(t, rec)
	assert.Equal(t, filepath.Join(dir, "file.bin"), data.FilePath)
}

func TestUploadAppFile_UnwritableDirIsInternal(t *testing.T) {
	base := t.TempDir()
	// A regular file where the upload directory should be makes MkdirAll fail.
	blocker := filepath.Join(base, "uploads")
	require.NoError(t, os.WriteFile(blocker, []byte("in the way"), 0o644))
	h := NewHandler(blocker, zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	h.UploadAppFile(rec, multipartRequest(t, "file", "app.apk", []byte("x")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	_, _, msg := uploadEnvelope(t, rec)
	assert.Equal(t, "failed to create upload directory", msg)
}
