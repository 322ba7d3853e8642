package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	bookingserrors "villacal/internal/bookings/errors"
	apperrors "villacal/pkg/errors"
	"villacal/pkg/logger"
	"villacal/pkg/model"
	"villacal/pkg/sanitizer"
)

// Accepted timestamp layouts. The calendar widget sends zone-less local
// stamps; API clients send RFC 3339.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

type BookingValidator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
		log:      log,
	}
}

// ParseTime parses a proposed timestamp, trying each accepted layout.
func ParseTime(field, value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, bookingserrors.InvalidTimeFormat(field, value)
}

// ValidateCreate checks a creation request against the write policy and
// returns the normalized booking. Inverted or past intervals are rejected
// outright, never clamped.
func (v *BookingValidator) ValidateCreate(input *model.BookingInput, now time.Time) (*model.Booking, error) {
	var missing []string
	if input.Title == nil {
		missing = append(missing, "title")
	}
	if input.Start == nil {
		missing = append(missing, "start")
	}
	if input.End == nil {
		missing = append(missing, "end")
	}
	if len(missing) > 0 {
		return nil, bookingserrors.MissingFields(missing...)
	}

	title := sanitizer.SanitizeTitle(*input.Title)
	if title == "" {
		return nil, bookingserrors.EmptyTitle()
	}

	start, err := ParseTime("start", *input.Start)
	if err != nil {
		return nil, err
	}
	end, err := ParseTime("end", *input.End)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		Title: title,
		Start: start,
		End:   end,
	}
	if input.AllDay != nil {
		booking.AllDay = *input.AllDay
	}
	if input.Notes != nil {
		booking.Notes = sanitizer.SanitizeNotes(*input.Notes)
	}

	if err := v.checkInterval(booking.Start, booking.End, true, now); err != nil {
		return nil, err
	}
	if err := v.checkStruct(booking); err != nil {
		return nil, err
	}

	return booking, nil
}

// ValidateUpdate merges the supplied fields over the existing booking and
// validates the result. The returned flag reports whether the merged
// interval differs from the stored one; title/notes-only edits skip all
// time policy.
func (v *BookingValidator) ValidateUpdate(existing *model.Booking, input *model.BookingInput, now time.Time) (*model.Booking, bool, error) {
	merged := *existing

	if input.Title != nil {
		title := sanitizer.SanitizeTitle(*input.Title)
		if title == "" {
			return nil, false, bookingserrors.EmptyTitle()
		}
		merged.Title = title
	}
	if input.AllDay != nil {
		merged.AllDay = *input.AllDay
	}
	if input.Notes != nil {
		merged.Notes = sanitizer.SanitizeNotes(*input.Notes)
	}

	if input.Start != nil {
		start, err := ParseTime("start", *input.Start)
		if err != nil {
			return nil, false, err
		}
		merged.Start = start
	}
	if input.End != nil {
		end, err := ParseTime("end", *input.End)
		if err != nil {
			return nil, false, err
		}
		merged.End = end
	}

	timesChanged := !merged.Start.Equal(existing.Start) || !merged.End.Equal(existing.End)
	if timesChanged {
		startChanged := !merged.Start.Equal(existing.Start)
		if err := v.checkInterval(merged.Start, merged.End, startChanged, now); err != nil {
			return nil, false, err
		}
	}

	if err := v.checkStruct(&merged); err != nil {
		return nil, false, err
	}

	return &merged, timesChanged, nil
}

// checkInterval enforces the write policy: end strictly after start, and no
// past start on creation or on an edit that moves the start.
func (v *BookingValidator) checkInterval(start, end time.Time, enforcePastStart bool, now time.Time) error {
	if !end.After(start) {
		return bookingserrors.EndBeforeStart(start, end)
	}
	if enforcePastStart && start.Before(now) {
		return bookingserrors.PastStart(start)
	}
	return nil
}

func (v *BookingValidator) checkStruct(booking *model.Booking) error {
	err := v.validate.Struct(booking)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := map[string]any{}
		for _, fe := range validationErrs {
			details[fe.Field()] = translateTag(fe)
		}
		v.log.Warn("Booking failed structural validation", "details", details)
		return apperrors.New(apperrors.CodeValidation, "Booking validation failed", 400).WithDetails(details)
	}
	return err
}

func translateTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "mongodb":
		return fmt.Sprintf("%s must be a valid ObjectID", fe.Field())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", fe.Field(), strings.ToLower(fe.Param()))
	}
	return fe.Error()
}
