package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ofcourt/storefront-backend/api/middleware"
	"github.com/ofcourt/storefront-backend/api/responses"
	"github.com/ofcourt/storefront-backend/internal/auth"
	pkgerrors "github.com/ofcourt/storefront-backend/pkg/errors"
	"github.com/ofcourt/storefront-backend/pkg/logger"
)

// SessionEstablish acknowledges a fresh sign-in and publishes the event so
// the sync worker can fold the guest cart into the user's. The bearer token
// was already verified upstream; the device header names the guest cart.
func SessionEstablish(stream *auth.Stream, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rawUserID := middleware.UserIDFromContext(ctx)
		if rawUserID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		userID, err := uuid.Parse(rawUserID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
			return
		}

		deviceID := strings.TrimSpace(r.Header.Get("X-Device-Id"))

		stream.Publish(auth.Event{
			Kind:     auth.EventSignedIn,
			UserID:   userID,
			Email:    middleware.EmailFromContext(ctx),
			DeviceID: deviceID,
		})

		responses.WriteSuccess(w, map[string]any{
			"userId":        rawUserID,
			"mergeEnqueued": deviceID != "",
		})
	}
}
