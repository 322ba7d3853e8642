package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "villacal/pkg/errors"
	"villacal/pkg/model"
)

// Repository sentinels.
var (
	ErrNotFound  = errors.New("booking not found")
	ErrInvalidID = errors.New("invalid booking ID format")
)

// Failure codes specific to booking writes, on top of the shared taxonomy
// in pkg/errors.
const (
	CodeMissingFields     = "MISSING_FIELDS"
	CodeEmptyTitle        = "EMPTY_TITLE"
	CodeInvalidTimeFormat = "INVALID_TIME_FORMAT"
	CodePastStart         = "PAST_START"
	CodeEndBeforeStart    = "END_BEFORE_START"
)

func MissingFields(fields ...string) *apperrors.AppError {
	return apperrors.New(
		CodeMissingFields,
		fmt.Sprintf("Missing required fields: %s", strings.Join(fields, ", ")),
		http.StatusBadRequest,
	).WithDetails(map[string]any{"fields": fields})
}

func EmptyTitle() *apperrors.AppError {
	return apperrors.New(
		CodeEmptyTitle,
		"Title cannot be empty",
		http.StatusBadRequest,
	)
}

func InvalidTimeFormat(field, value string) *apperrors.AppError {
	return apperrors.New(
		CodeInvalidTimeFormat,
		fmt.Sprintf("Invalid %s timestamp: %q", field, value),
		http.StatusBadRequest,
	).WithDetails(map[string]any{"field": field, "value": value})
}

func PastStart(start time.Time) *apperrors.AppError {
	return apperrors.New(
		CodePastStart,
		"Start cannot be in the past",
		http.StatusBadRequest,
	).WithDetails(map[string]any{"start": start.Format(time.RFC3339)})
}

func EndBeforeStart(start, end time.Time) *apperrors.AppError {
	return apperrors.New(
		CodeEndBeforeStart,
		"End must be after start",
		http.StatusBadRequest,
	).WithDetails(map[string]any{
		"start": start.Format(time.RFC3339),
		"end":   end.Format(time.RFC3339),
	})
}

// ConflictWith reports an interval collision. The conflicting booking's
// identity is included so the calendar UI can highlight it.
func ConflictWith(b *model.Booking) *apperrors.AppError {
	return apperrors.Conflict(
		"The selected dates overlap with an existing booking",
	).WithDetails(map[string]any{
		"conflicting_id":    b.ID,
		"conflicting_title": b.Title,
		"conflicting_start": b.Start.Format(time.RFC3339),
		"conflicting_end":   b.End.Format(time.RFC3339),
	})
}

func NotFound(id string) *apperrors.AppError {
	return apperrors.NotFoundWithID("Booking", id)
}
