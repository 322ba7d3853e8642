package validator

import (
	"io"
	"testing"
	"time"

	bookingserrors "villacal/internal/bookings/errors"
	apperrors "villacal/pkg/errors"
	"villacal/pkg/logger"
	"villacal/pkg/model"
)

func testValidator() *BookingValidator {
	return NewBookingValidator(logger.New(logger.Config{Output: io.Discard}))
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func appCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected *AppError, got %T (%v)", err, err)
	}
	return appErr.Code
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "RFC 3339",
			value: "2025-06-01T10:00:00Z",
			want:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "zone-less with seconds",
			value: "2025-06-01T10:00:00",
			want:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "zone-less without seconds",
			value: "2025-06-01T10:00",
			want:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:    "date only is rejected",
			value:   "2025-06-01",
			wantErr: true,
		},
		{
			name:    "garbage",
			value:   "next tuesday",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTime("start", tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error for %q", tt.value)
				}
				if code := appCode(t, err); code != bookingserrors.CodeInvalidTimeFormat {
					t.Errorf("code = %s, want %s", code, bookingserrors.CodeInvalidTimeFormat)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTime(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidateCreate(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    *model.BookingInput
		wantCode string
	}{
		{
			name:     "all fields missing",
			input:    &model.BookingInput{},
			wantCode: bookingserrors.CodeMissingFields,
		},
		{
			name: "missing end only",
			input: &model.BookingInput{
				Title: strPtr("Familia García"),
				Start: strPtr("2025-06-01T10:00:00Z"),
			},
			wantCode: bookingserrors.CodeMissingFields,
		},
		{
			name: "whitespace title",
			input: &model.BookingInput{
				Title: strPtr("   \t  "),
				Start: strPtr("2025-06-01T10:00:00Z"),
				End:   strPtr("2025-06-03T10:00:00Z"),
			},
			wantCode: bookingserrors.CodeEmptyTitle,
		},
		{
			name: "unparseable start",
			input: &model.BookingInput{
				Title: strPtr("Familia García"),
				Start: strPtr("not-a-date"),
				End:   strPtr("2025-06-03T10:00:00Z"),
			},
			wantCode: bookingserrors.CodeInvalidTimeFormat,
		},
		{
			name: "end equals start",
			input: &model.BookingInput{
				Title: strPtr("Familia García"),
				Start: strPtr("2025-06-01T10:00:00Z"),
				End:   strPtr("2025-06-01T10:00:00Z"),
			},
			wantCode: bookingserrors.CodeEndBeforeStart,
		},
		{
			name: "end before start",
			input: &model.BookingInput{
				Title: strPtr("Familia García"),
				Start: strPtr("2025-06-03T10:00:00Z"),
				End:   strPtr("2025-06-01T10:00:00Z"),
			},
			wantCode: bookingserrors.CodeEndBeforeStart,
		},
		{
			name: "start in the past",
			input: &model.BookingInput{
				Title: strPtr("Familia García"),
				Start: strPtr("2025-05-30T10:00:00Z"),
				End:   strPtr("2025-06-03T10:00:00Z"),
			},
			wantCode: bookingserrors.CodePastStart,
		},
	}

	v := testValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateCreate(tt.input, now)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if code := appCode(t, err); code != tt.wantCode {
				t.Errorf("code = %s, want %s", code, tt.wantCode)
			}
		})
	}
}

func TestValidateCreate_Normalizes(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	v := testValidator()

	booking, err := v.ValidateCreate(&model.BookingInput{
		Title: strPtr("  Familia   García  "),
		Start: strPtr("2025-06-01T10:00:00Z"),
		End:   strPtr("2025-06-03T10:00:00Z"),
		Notes: strPtr("  late checkout  \n  bring crib  "),
	}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Title != "Familia García" {
		t.Errorf("title = %q, want %q", booking.Title, "Familia García")
	}
	if booking.Notes != "late checkout\nbring crib" {
		t.Errorf("notes = %q, want %q", booking.Notes, "late checkout\nbring crib")
	}
	if booking.AllDay {
		t.Errorf("all_day should default to false")
	}
	if !booking.Start.Equal(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", booking.Start)
	}
}

func TestValidateCreate_StartAtNowAllowed(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	v := testValidator()

	_, err := v.ValidateCreate(&model.BookingInput{
		Title: strPtr("Same minute arrival"),
		Start: strPtr("2025-06-01T10:00:00Z"),
		End:   strPtr("2025-06-02T10:00:00Z"),
	}, now)
	if err != nil {
		t.Fatalf("a start exactly at now must be accepted, got %v", err)
	}
}

func TestValidateUpdate_MergeAndTimesChanged(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	existing := &model.Booking{
		ID:    "665f1c2e9b1e8a3d4c5b6a79",
		Title: "Familia García",
		Start: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC),
		Notes: "late checkout",
	}

	v := testValidator()

	t.Run("notes-only edit keeps the interval", func(t *testing.T) {
		merged, timesChanged, err := v.ValidateUpdate(existing, &model.BookingInput{
			Notes: strPtr("early arrival"),
		}, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if timesChanged {
			t.Errorf("timesChanged = true for a notes-only edit")
		}
		if merged.Notes != "early arrival" {
			t.Errorf("notes = %q", merged.Notes)
		}
		if merged.Title != existing.Title {
			t.Errorf("title should be untouched, got %q", merged.Title)
		}
		if !merged.Start.Equal(existing.Start) || !merged.End.Equal(existing.End) {
			t.Errorf("interval should be untouched")
		}
	})

	t.Run("moving the end flags the interval", func(t *testing.T) {
		merged, timesChanged, err := v.ValidateUpdate(existing, &model.BookingInput{
			End: strPtr("2025-06-04T10:00:00Z"),
		}, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !timesChanged {
			t.Errorf("timesChanged = false after the end moved")
		}
		if !merged.End.Equal(time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)) {
			t.Errorf("end = %v", merged.End)
		}
	})

	t.Run("restating the same times is not a change", func(t *testing.T) {
		_, timesChanged, err := v.ValidateUpdate(existing, &model.BookingInput{
			Start: strPtr("2025-06-01T10:00:00Z"),
			End:   strPtr("2025-06-03T10:00:00Z"),
		}, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if timesChanged {
			t.Errorf("identical times must not count as a change")
		}
	})

	t.Run("empty title rejected", func(t *testing.T) {
		_, _, err := v.ValidateUpdate(existing, &model.BookingInput{
			Title: strPtr("   "),
		}, now)
		if err == nil {
			t.Fatalf("expected an error")
		}
		if code := appCode(t, err); code != bookingserrors.CodeEmptyTitle {
			t.Errorf("code = %s", code)
		}
	})

	t.Run("moved end before start rejected", func(t *testing.T) {
		_, _, err := v.ValidateUpdate(existing, &model.BookingInput{
			End: strPtr("2025-06-01T09:00:00Z"),
		}, now)
		if err == nil {
			t.Fatalf("expected an error")
		}
		if code := appCode(t, err); code != bookingserrors.CodeEndBeforeStart {
			t.Errorf("code = %s", code)
		}
	})
}

func TestValidateUpdate_PastStartPolicy(t *testing.T) {
	// The stay began two days ago and is in progress.
	now := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	existing := &model.Booking{
		ID:    "665f1c2e9b1e8a3d4c5b6a79",
		Title: "Familia García",
		Start: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC),
	}

	v := testValidator()

	t.Run("extending an in-progress stay keeps the past start", func(t *testing.T) {
		_, timesChanged, err := v.ValidateUpdate(existing, &model.BookingInput{
			End: strPtr("2025-06-06T10:00:00Z"),
		}, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !timesChanged {
			t.Errorf("timesChanged = false")
		}
	})

	t.Run("moving the start into the past is rejected", func(t *testing.T) {
		_, _, err := v.ValidateUpdate(existing, &model.BookingInput{
			Start: strPtr("2025-05-28T10:00:00Z"),
		}, now)
		if err == nil {
			t.Fatalf("expected an error")
		}
		if code := appCode(t, err); code != bookingserrors.CodePastStart {
			t.Errorf("code = %s", code)
		}
	})
}

func TestValidateUpdate_AllDayToggle(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	existing := &model.Booking{
		ID:    "665f1c2e9b1e8a3d4c5b6a79",
		Title: "Familia García",
		Start: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC),
	}

	v := testValidator()
	merged, timesChanged, err := v.ValidateUpdate(existing, &model.BookingInput{
		AllDay: boolPtr(true),
	}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !merged.AllDay {
		t.Errorf("all_day should be true after the toggle")
	}
	if timesChanged {
		t.Errorf("toggling all_day must not count as a time change")
	}
}
