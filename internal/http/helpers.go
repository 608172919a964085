package http

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/Md905908324/NoSpendy/internal/auth"
	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/services"
	"github.com/Md905908324/NoSpendy/internal/storage"
)

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// errorResponseFor maps service errors onto HTTP responses. Unrecognized
// errors become opaque 500s so internal details never leak to clients.
func errorResponseFor(err error) *ResponseBuilder {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return UnauthorizedError("invalid credentials")
	case errors.Is(err, storage.ErrNotFound):
		return NotFoundError("not found")
	case errors.Is(err, storage.ErrDuplicate):
		return ConflictError("already exists")
	case errors.Is(err, core.ErrChallengeCompleted):
		return ConflictError("challenge already completed")
	case errors.Is(err, core.ErrChallengeNotEnded):
		return ConflictError("challenge has not ended yet")
	case errors.Is(err, services.ErrInvalidParams),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidDuration):
		return UnprocessableEntityError(err.Error())
	default:
		return InternalServerError("internal error")
	}
}
