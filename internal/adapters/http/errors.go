package web

import (
	"errors"
	"log/slog"
	"net/http"

	"stayfit/internal/adapters/identity"
	"stayfit/internal/adapters/payment"
	"stayfit/internal/adapters/storage"
	"stayfit/internal/application/orchestrators"
	domainClientPack "stayfit/internal/domain/clientpack"
	domainCoupon "stayfit/internal/domain/coupon"
	domainPack "stayfit/internal/domain/pack"
	"stayfit/internal/domain/policy"
	domainReview "stayfit/internal/domain/review"
	domainService "stayfit/internal/domain/service"
	domainSession "stayfit/internal/domain/session"
	domainUser "stayfit/internal/domain/user"
)

// validationErrors are reported to the caller as 400 with their message.
var validationErrors = []error{
	domainUser.ErrEmptyExternalID, domainUser.ErrEmptyEmail, domainUser.ErrInvalidEmail,
	domainUser.ErrEmailTooLong, domainUser.ErrNameTooLong, domainUser.ErrBioTooLong,
	domainUser.ErrInvalidRole, domainUser.ErrNegativeYears,

	domainPack.ErrEmptyCategory, domainPack.ErrNoOffers, domainPack.ErrNegativeStartPrice,
	domainPack.ErrInvalidOfferPrice, domainPack.ErrInvalidSessionCount, domainPack.ErrInvalidExpiration,
	domainPack.ErrDuplicateOfferID,

	domainClientPack.ErrEmptyClientID, domainClientPack.ErrEmptyPackID, domainClientPack.ErrInvalidState,
	domainClientPack.ErrNegativeRemaining, domainClientPack.ErrExpiresBeforeBought,
	domainClientPack.ErrNegativePrice, domainClientPack.ErrExhausted,

	domainSession.ErrEmptyClientID, domainSession.ErrEmptyCoachID, domainSession.ErrEmptyPackID,
	domainSession.ErrEmptyDate, domainSession.ErrInvalidDate, domainSession.ErrEmptyTime,
	domainSession.ErrTimeTooLong, domainSession.ErrInvalidDuration, domainSession.ErrInvalidStatus,
	domainSession.ErrLocationTooLong, domainSession.ErrNotesTooLong,

	domainCoupon.ErrInvalidCode, domainCoupon.ErrInvalidPercentage, domainCoupon.ErrEmptyExpiry,
	domainCoupon.ErrInvalidStatus, domainCoupon.ErrNotApplicable,

	domainReview.ErrEmptyClientID, domainReview.ErrInvalidRating, domainReview.ErrEmptyComment,
	domainReview.ErrCommentTooLong,

	domainService.ErrEmptyTitle, domainService.ErrEmptyDescription, domainService.ErrImageURLTooLong,
	domainService.ErrNegativeOrder,

	orchestrators.ErrUnknownCoupon, orchestrators.ErrOrderMismatch, orchestrators.ErrNotACoach,
	orchestrators.ErrPackNotOwned, orchestrators.ErrPackNotUsable,
}

// conflictErrors report a state that no longer allows the request (409).
var conflictErrors = []error{
	domainSession.ErrAlreadyClosed, domainClientPack.ErrTerminalState, orchestrators.ErrNotCheckoutable,
}

// statusFor maps an error to its HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, policy.ErrUnauthenticated), errors.Is(err, orchestrators.ErrNoIdentity),
		errors.Is(err, identity.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, policy.ErrForbidden), errors.Is(err, orchestrators.ErrEmailUnverified):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, domainPack.ErrOfferNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, payment.ErrGateway):
		return http.StatusBadGateway
	}
	for _, v := range conflictErrors {
		if errors.Is(err, v) {
			return http.StatusConflict
		}
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// publicMessage is what the caller sees for err. 5xx details stay in the log.
func publicMessage(err error, status int) string {
	switch {
	case status == http.StatusInternalServerError:
		return "internal server error"
	case status == http.StatusBadGateway:
		return "payment gateway unavailable"
	case status == http.StatusNotFound:
		return "not found"
	case errors.Is(err, storage.ErrDuplicate):
		return "already exists"
	}
	for _, known := range []error{policy.ErrUnauthenticated, policy.ErrForbidden, orchestrators.ErrNoIdentity, orchestrators.ErrEmailUnverified, identity.ErrInvalidCredential} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return rootMessage(err)
}

// rootMessage returns the message of the first matching sentinel, so wrapping context
// from stores and orchestrators does not leak.
func rootMessage(err error) string {
	for _, list := range [][]error{validationErrors, conflictErrors} {
		for _, v := range list {
			if errors.Is(err, v) {
				return v.Error()
			}
		}
	}
	return err.Error()
}

// writeError logs err when it is unexpected and writes the JSON error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	switch {
	case status >= 500:
		slog.Error("internal_error", "method", r.Method, "path", r.URL.Path, "status", status, "error", err.Error())
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		slog.Warn("auth_denied", "method", r.Method, "path", r.URL.Path, "status", status)
	}
	writeJSONError(w, status, publicMessage(err, status))
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeJSONError(w, http.StatusInternalServerError, "internal server error")
}
