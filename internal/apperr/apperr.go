package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Machine-readable error codes returned to clients alongside the HTTP status.
const (
	CodeValidation               = "validation_error"
	CodeInvalidPaymentTerms      = "invalid_payment_terms"
	CodeEngagementModelMismatch  = "engagement_model_mismatch"
	CodeContractNotActive        = "contract_not_active"
	CodeInvalidStateTransition   = "invalid_state_transition"
	CodeDuplicateDailySubmission = "duplicate_daily_submission"
	CodeOverlappingTimeEntry     = "overlapping_time_entry"
	CodeCrossesDayBoundary       = "crosses_day_boundary"
	CodeDateNotAllowed           = "date_not_allowed"
	CodeInvalidEvidenceLink      = "invalid_evidence_link"
	CodeDocumentAlreadyExists    = "document_already_exists"
	CodeAlreadySigned            = "already_signed"
	CodeDocumentImmutable        = "document_immutable"
	CodeDuplicateInvitation      = "duplicate_invitation"
	CodeDuplicateContract        = "duplicate_contract"
	CodeEvidenceUploadFailed     = "evidence_upload_failed"
	CodeNotFound                 = "not_found"
	CodeForbidden                = "forbidden"
	CodeStorageUnavailable       = "storage_unavailable"
)

// Error is a domain error with a stable code and HTTP status. Services return
// these; handlers translate anything else into a generic 500 without leaking
// internals.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(code string, status int, format string, args ...any) *Error {
	return &Error{Code: code, Status: status, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return New(CodeValidation, fiber.StatusBadRequest, format, args...)
}

func BadRequest(code, format string, args ...any) *Error {
	return New(code, fiber.StatusBadRequest, format, args...)
}

func Conflict(code, format string, args ...any) *Error {
	return New(code, fiber.StatusConflict, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, fiber.StatusNotFound, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(CodeForbidden, fiber.StatusForbidden, format, args...)
}

func StorageUnavailable(format string, args ...any) *Error {
	return New(CodeStorageUnavailable, fiber.StatusInternalServerError, format, args...)
}

// From extracts an *Error, or nil when err is not a domain error.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	e := From(err)
	return e != nil && e.Code == code
}
