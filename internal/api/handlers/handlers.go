package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/talx-hub/gopher-users/internal/api/dto"
	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/model/user"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
	"github.com/talx-hub/gopher-users/internal/utils/semaphore"
)

const URLParamID = "id"

// maxBodyBytes caps request bodies; they hold an email and a password.
const maxBodyBytes = 4 << 10

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type HTTPHandler struct {
	*UserHandler
	*HealthHandler
}

func New(repo user.Repository, pinger Pinger, hashers *semaphore.Semaphore,
	log *slog.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		UserHandler:   NewUserHandler(repo, hashers, log),
		HealthHandler: NewHealthHandler(pinger, log),
	}
}

// UserHandler serves the user records. Password derivations are CPU bound
// and run only while holding a hashers slot.
type UserHandler struct {
	logger  *slog.Logger
	repo    user.Repository
	hashers *semaphore.Semaphore
	timeout time.Duration
}

func NewUserHandler(repo user.Repository, hashers *semaphore.Semaphore,
	log *slog.Logger,
) *UserHandler {
	return &UserHandler{
		logger:  log,
		repo:    repo,
		hashers: hashers,
		timeout: model.DefaultTimeout,
	}
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	log := logger.FromContextOr(ctx, h.logger)

	users, err := h.repo.GetUsers(ctx)
	if err != nil {
		log.LogAttrs(ctx,
			slog.LevelError,
			"failed to list users",
			slog.Any(model.KeyLoggerError, err),
		)
		writeError(w, http.StatusInternalServerError, dto.ErrInternal)
		return
	}

	writeJSON(ctx, log, w, http.StatusOK, dto.NewUsersResponse(users))
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	log := logger.FromContextOr(ctx, h.logger)
	id := chi.URLParam(r, URLParamID)

	u, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		log.LogAttrs(ctx,
			slog.LevelError,
			"failed to get user",
			slog.String(model.KeyUserID, id),
			slog.Any(model.KeyLoggerError, err),
		)
		writeError(w, http.StatusInternalServerError, dto.ErrInternal)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, dto.ErrNotFound)
		return
	}

	writeJSON(ctx, log, w, http.StatusOK, dto.NewUserResponse(u))
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	log := logger.FromContextOr(ctx, h.logger)

	var req dto.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		log.LogAttrs(ctx,
			slog.LevelDebug,
			"failed to decode create user request",
			slog.Any(model.KeyLoggerError, err),
		)
		writeError(w, http.StatusBadRequest, dto.ErrBadRequest)
		return
	}
	if err := req.IsValid(); err != nil {
		log.LogAttrs(ctx,
			slog.LevelDebug,
			"create user request rejected",
			slog.Any(model.KeyLoggerError, err),
		)
		writeError(w, http.StatusBadRequest, dto.ErrBadRequest)
		return
	}

	var (
		u      user.User
		newErr error
	)
	err := h.hashers.Do(ctx, func() {
		u, newErr = user.New(req.Email, req.Password)
	})
	if err = errors.Join(err, newErr); err != nil {
		log.LogAttrs(ctx,
			slog.LevelError,
			"failed to build user",
			slog.Any(model.KeyLoggerError, err),
		)
		writeError(w, http.StatusInternalServerError, dto.ErrCreationFailed)
		return
	}

	if err = h.repo.InsertUser(ctx, &u); err != nil {
		log.LogAttrs(ctx,
			slog.LevelError,
			"failed to store user",
			slog.String(model.KeyUserID, u.ID),
			slog.Any(model.KeyLoggerError, err),
		)
		if errors.Is(err, serviceerrs.ErrConstraint) {
			writeError(w, http.StatusConflict, dto.ErrConflict)
			return
		}
		writeError(w, http.StatusInternalServerError, dto.ErrCreationFailed)
		return
	}

	w.Header().Set("Location", "/users/"+u.ID)
	writeJSON(ctx, log, w, http.StatusCreated, dto.NewUserResponse(&u))
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	log := logger.FromContextOr(ctx, h.logger)
	id := chi.URLParam(r, URLParamID)

	err := h.repo.DeleteUser(ctx, id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, serviceerrs.ErrNotFound):
		writeError(w, http.StatusNotFound, dto.ErrNotFound)
	default:
		log.LogAttrs(ctx,
			slog.LevelError,
			"failed to delete user",
			slog.String(model.KeyUserID, id),
			slog.Any(model.KeyLoggerError, err),
		)
		writeError(w, http.StatusInternalServerError, dto.ErrInternal)
	}
}

func (h *UserHandler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	log := logger.FromContextOr(ctx, h.logger)
	id := chi.URLParam(r, URLParamID)

	var req dto.VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, dto.ErrBadRequest)
		return
	}

	u, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		log.LogAttrs(ctx,
			slog.LevelError,
			"failed to get user for verification",
			slog.String(model.KeyUserID, id),
			slog.Any(model.KeyLoggerError, err),
		)
		writeError(w, http.StatusInternalServerError, dto.ErrInternal)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, dto.ErrNotFound)
		return
	}

	var valid bool
	err = h.hashers.Do(ctx, func() {
		valid = u.Credential.Matches(req.Password)
	})
	if err != nil {
		log.LogAttrs(ctx,
			slog.LevelError,
			"failed to verify password",
			slog.String(model.KeyUserID, id),
			slog.Any(model.KeyLoggerError, err),
		)
		writeError(w, http.StatusInternalServerError, dto.ErrInternal)
		return
	}

	writeJSON(ctx, log, w, http.StatusOK, dto.VerifyResponse{Valid: valid})
}

type HealthHandler struct {
	logger  *slog.Logger
	pinger  Pinger
	timeout time.Duration
}

func NewHealthHandler(pinger Pinger, log *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger:  log,
		pinger:  pinger,
		timeout: model.DefaultTimeout,
	}
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		logger.FromContextOr(ctx, h.logger).LogAttrs(ctx,
			slog.LevelError,
			"storage is unreachable",
			slog.Any(model.KeyLoggerError, err),
		)
		writeError(w, http.StatusInternalServerError, dto.ErrInternal)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v) //nolint: wrapcheck // logged by the caller
}

func writeJSON(ctx context.Context, log *slog.Logger,
	w http.ResponseWriter, status int, v any,
) {
	body, err := json.Marshal(v)
	if err != nil {
		log.LogAttrs(ctx,
			slog.LevelError,
			"failed to encode response",
			slog.Any(model.KeyLoggerError, err),
		)
		writeError(w, http.StatusInternalServerError, dto.ErrInternal)
		return
	}

	w.Header().Set(model.HeaderContentType, model.ContentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, name dto.ErrorResponse) {
	w.Header().Set(model.HeaderContentType, model.ContentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(name))
}
