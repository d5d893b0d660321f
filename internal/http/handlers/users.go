package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/brightprep/brightprep-be/internal/apperr"
	"github.com/brightprep/brightprep-be/internal/http/respond"
	"github.com/brightprep/brightprep-be/internal/middleware"
	"github.com/brightprep/brightprep-be/internal/models"
	"github.com/brightprep/brightprep-be/internal/models/dto"
	"github.com/brightprep/brightprep-be/internal/storage"
)

// UsersHandler owns the user lifecycle endpoints.
type UsersHandler struct {
	store  storage.UserStore
	logger *slog.Logger
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(store storage.UserStore, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{store: store, logger: logger}
}

// Register attaches user routes with their gates. Every route passes the
// identity verifier first; resource routes additionally pass the ownership
// or role gate.
func (h *UsersHandler) Register(mux *http.ServeMux, verifier middleware.TokenVerifier) {
	authed := func(next http.HandlerFunc) http.Handler {
		return middleware.Authenticate(verifier, next)
	}
	owned := func(next http.HandlerFunc) http.Handler {
		return middleware.Authenticate(verifier, middleware.RequireOwnership("firebaseUid", next))
	}

	mux.Handle("POST /users/signin", authed(h.handleSignIn))
	mux.Handle("GET /users/{firebaseUid}", owned(h.handleGet))
	mux.Handle("PATCH /users/{firebaseUid}", owned(h.handleUpdateProfile))
	mux.Handle("DELETE /users/{firebaseUid}", owned(h.handleDelete))
	mux.Handle("PATCH /users/{firebaseUid}/role",
		middleware.Authenticate(verifier, middleware.RequireOwner(http.HandlerFunc(h.handleUpdateRole))))
	mux.Handle("GET /users",
		middleware.Authenticate(verifier, middleware.RequireOwnerOrAdmin(http.HandlerFunc(h.handleList))))
}

func (h *UsersHandler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFrom(r.Context())
	if err != nil {
		respond.Unauthorized(w)
		return
	}

	var req dto.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.FirebaseUID == "" {
		req.FirebaseUID = principal.ID
	}
	if req.FirebaseUID != principal.ID && !principal.Role.Privileged() {
		respond.NotOwner(w)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		respond.Failure(w, apperr.Validation("email is required"))
		return
	}

	user, err := h.store.UpsertOnSignIn(r.Context(), storage.SignInParams{
		FirebaseUID:    req.FirebaseUID,
		Email:          strings.TrimSpace(req.Email),
		DisplayName:    req.DisplayName,
		AvatarURL:      req.AvatarURL,
		AvatarProvider: req.AvatarProvider,
		EmailVerified:  req.EmailVerified,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Failure(w, apperr.Validation("email already belongs to another account"))
			return
		}
		h.logger.Error("upsert on sign-in failed", "firebase_uid", req.FirebaseUID, "error", err)
		respond.Failure(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, user)
}

func (h *UsersHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("firebaseUid")
	user, err := h.store.GetByFirebaseUID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Failure(w, apperr.NotFound("user not found"))
			return
		}
		h.logger.Error("fetch user failed", "firebase_uid", uid, "error", err)
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UsersHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("firebaseUid")

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user, err := h.store.UpdateProfile(r.Context(), uid, storage.ProfileUpdate{
		Username:          req.Username,
		AvatarURL:         req.AvatarURL,
		AvatarStoragePath: req.AvatarStoragePath,
		AvatarProvider:    req.AvatarProvider,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Failure(w, apperr.NotFound("user not found"))
			return
		}
		h.logger.Error("update profile failed", "firebase_uid", uid, "error", err)
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UsersHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("firebaseUid")
	if err := h.store.SoftDelete(r.Context(), uid); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Failure(w, apperr.NotFound("user not found"))
			return
		}
		h.logger.Error("soft delete failed", "firebase_uid", uid, "error", err)
		respond.Failure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateRole changes an account's role. The route is owner-gated; on
// top of that, an owner's role can never be changed and the owner role can
// never be granted here.
func (h *UsersHandler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("firebaseUid")

	var req dto.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	requested := models.Role(req.Role)
	if requested != models.RoleUser && requested != models.RoleAdmin {
		respond.Failure(w, apperr.Validation("role must be user or admin"))
		return
	}

	target, err := h.store.GetByFirebaseUID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Failure(w, apperr.NotFound("user not found"))
			return
		}
		h.logger.Error("fetch user failed", "firebase_uid", uid, "error", err)
		respond.Failure(w, err)
		return
	}
	if target.Role == models.RoleOwner {
		respond.Failure(w, apperr.Forbidden("Forbidden - Cannot change an owner's role"))
		return
	}

	user, err := h.store.UpdateRole(r.Context(), uid, requested)
	if err != nil {
		h.logger.Error("update role failed", "firebase_uid", uid, "error", err)
		respond.Failure(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UsersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("list users failed", "error", err)
		respond.Failure(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respond.JSON(w, http.StatusOK, users)
}
