package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightprep/brightprep-be/internal/auth"
	"github.com/brightprep/brightprep-be/internal/blob"
	"github.com/brightprep/brightprep-be/internal/models"
)

// Minimal valid PNG header; DetectContentType only needs the magic bytes.
var pngBytes = []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 32))

func newUploadsServer(t *testing.T) (*httptest.Server, *blob.MemoryStore) {
	t.Helper()
	blobs := blob.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mux := http.NewServeMux()
	NewUploadsHandler(blobs, 1<<20, logger).Register(mux, auth.NewVerifier(testSecret, ""))

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, blobs
}

func multipartBody(t *testing.T, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func postUpload(t *testing.T, url, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/uploads/avatar", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAvatarUploadRequiresCredential(t *testing.T) {
	ts, _ := newUploadsServer(t)
	body, contentType := multipartBody(t, "a.png", pngBytes)

	resp := postUpload(t, ts.URL, "", body, contentType)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAvatarUploadStoresObject(t *testing.T) {
	ts, blobs := newUploadsServer(t)
	body, contentType := multipartBody(t, "avatar.png", pngBytes)

	resp := postUpload(t, ts.URL, tokenFor(t, "fb1", models.RoleUser), body, contentType)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var object blob.Object
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&object))
	assert.Equal(t, "memory", object.Provider)
	assert.True(t, strings.HasPrefix(object.StoragePath, "avatars/fb1/"), object.StoragePath)
	assert.True(t, strings.HasSuffix(object.StoragePath, ".png"), object.StoragePath)
	assert.NotEmpty(t, object.URL)

	stored, ok := blobs.Get(object.StoragePath)
	require.True(t, ok, "upload must land in the blob store")
	assert.Equal(t, pngBytes, stored)
}

func TestAvatarUploadRejectsNonImage(t *testing.T) {
	ts, _ := newUploadsServer(t)
	body, contentType := multipartBody(t, "notes.txt", []byte("plain text, not an image"))

	resp := postUpload(t, ts.URL, tokenFor(t, "fb1", models.RoleUser), body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func getAvatarLink(t *testing.T, url, token, storagePath string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url+"/uploads/"+storagePath, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAvatarLinkResolvesOwnUpload(t *testing.T) {
	ts, _ := newUploadsServer(t)
	body, contentType := multipartBody(t, "avatar.png", pngBytes)

	resp := postUpload(t, ts.URL, tokenFor(t, "fb1", models.RoleUser), body, contentType)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var object blob.Object
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&object))

	resp = getAvatarLink(t, ts.URL, tokenFor(t, "fb1", models.RoleUser), object.StoragePath)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var link map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&link))
	assert.Equal(t, "memory://"+object.StoragePath, link["url"])
}

func TestAvatarLinkOwnershipGate(t *testing.T) {
	ts, _ := newUploadsServer(t)
	body, contentType := multipartBody(t, "avatar.png", pngBytes)

	resp := postUpload(t, ts.URL, tokenFor(t, "fb1", models.RoleUser), body, contentType)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var object blob.Object
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&object))

	// Another non-privileged user may not resolve someone else's avatar.
	resp = getAvatarLink(t, ts.URL, tokenFor(t, "fb2", models.RoleUser), object.StoragePath)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Privileged roles bypass the ownership check.
	resp = getAvatarLink(t, ts.URL, tokenFor(t, "someone-else", models.RoleAdmin), object.StoragePath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAvatarLinkUnknownObject(t *testing.T) {
	ts, _ := newUploadsServer(t)

	resp := getAvatarLink(t, ts.URL, tokenFor(t, "fb1", models.RoleUser), "avatars/fb1/missing.png")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAvatarUploadRejectsMissingFile(t *testing.T) {
	ts, _ := newUploadsServer(t)
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.Close())

	resp := postUpload(t, ts.URL, tokenFor(t, "fb1", models.RoleUser), &buf, writer.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
