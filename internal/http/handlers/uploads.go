package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brightprep/brightprep-be/internal/apperr"
	"github.com/brightprep/brightprep-be/internal/blob"
	"github.com/brightprep/brightprep-be/internal/http/respond"
	"github.com/brightprep/brightprep-be/internal/middleware"
)

// UploadsHandler stores avatar images and returns their public location.
type UploadsHandler struct {
	blobs    blob.Store
	maxBytes int64
	logger   *slog.Logger
}

// NewUploadsHandler constructs the handler.
func NewUploadsHandler(blobs blob.Store, maxBytes int64, logger *slog.Logger) *UploadsHandler {
	return &UploadsHandler{blobs: blobs, maxBytes: maxBytes, logger: logger}
}

// Register attaches the upload routes behind the identity verifier. Reading
// an avatar back goes through the ownership gate: the uid segment of the
// storage path is the resource owner.
func (h *UploadsHandler) Register(mux *http.ServeMux, verifier middleware.TokenVerifier) {
	mux.Handle("POST /uploads/avatar",
		middleware.Authenticate(verifier, http.HandlerFunc(h.handleAvatar)))
	mux.Handle("GET /uploads/avatars/{firebaseUid}/{object}",
		middleware.Authenticate(verifier,
			middleware.RequireOwnership("firebaseUid", http.HandlerFunc(h.handleAvatarLink))))
}

func (h *UploadsHandler) handleAvatar(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFrom(r.Context())
	if err != nil {
		respond.Unauthorized(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respond.Failure(w, apperr.Validation("file exceeds the upload size limit"))
			return
		}
		respond.Failure(w, apperr.Validation("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	data, contentType, err := readImage(file, h.maxBytes)
	if err != nil {
		respond.Failure(w, err)
		return
	}

	key := "avatars/" + principal.ID + "/" + uuid.NewString() + extensionFor(header.Filename, contentType)
	object, err := h.blobs.Put(r.Context(), key, data, contentType)
	if err != nil {
		h.logger.Error("store avatar failed", "key", key, "error", err)
		respond.Failure(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, object)
}

// avatarLinkTTL bounds how long a presigned avatar link stays valid.
const avatarLinkTTL = 15 * time.Minute

// handleAvatarLink resolves a stored avatar to a time-limited URL for
// buckets that are not publicly readable.
func (h *UploadsHandler) handleAvatarLink(w http.ResponseWriter, r *http.Request) {
	key := "avatars/" + r.PathValue("firebaseUid") + "/" + r.PathValue("object")

	url, err := h.blobs.PresignGet(r.Context(), key, avatarLinkTTL)
	if err != nil {
		h.logger.Warn("presign avatar failed", "key", key, "error", err)
		respond.Failure(w, apperr.NotFound("avatar not found"))
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"url": url})
}

// readImage buffers the part and sniffs its content type, accepting images only.
func readImage(file multipart.File, limit int64) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, "", apperr.Internal("failed to read upload", err)
	}
	if int64(len(data)) > limit {
		return nil, "", apperr.Validation("file exceeds the upload size limit")
	}
	if len(data) == 0 {
		return nil, "", apperr.Validation("uploaded file is empty")
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", apperr.Validation("only image uploads are accepted")
	}
	return data, contentType, nil
}

func extensionFor(filename, contentType string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		return ext
	}
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
