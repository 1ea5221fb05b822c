package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ofcourt/storefront-backend/api/responses"
	"github.com/ofcourt/storefront-backend/internal/cart"
	pkgerrors "github.com/ofcourt/storefront-backend/pkg/errors"
	"github.com/ofcourt/storefront-backend/pkg/logger"
)

const deviceIDHeader = "X-Device-Id"

// Subject requires an identifiable shopper: an authenticated user (seeded
// upstream by OptionalAuth) or a guest device header. Requests with neither
// are rejected.
func Subject(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if UserIDFromContext(ctx) != "" {
				next.ServeHTTP(w, r)
				return
			}

			deviceID := strings.TrimSpace(r.Header.Get(deviceIDHeader))
			if deviceID == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "a bearer token or device id is required"))
				return
			}

			ctx = WithDeviceID(ctx, deviceID)
			if logg != nil {
				ctx = logg.WithDeviceID(ctx, deviceID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectFromContext rebuilds the cart subject the Subject middleware
// established. The bool is false when neither identity is present.
func SubjectFromContext(r *http.Request) (cart.Subject, bool) {
	ctx := r.Context()
	if raw := UserIDFromContext(ctx); raw != "" {
		userID, err := uuid.Parse(raw)
		if err == nil {
			return cart.UserSubject(userID), true
		}
	}
	if deviceID := DeviceIDFromContext(ctx); deviceID != "" {
		return cart.GuestSubject(deviceID), true
	}
	return cart.Subject{}, false
}
