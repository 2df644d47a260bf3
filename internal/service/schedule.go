package service

import (
	"fmt"
	"time"

	"github.com/diverkids/diverkids-api/internal/domain"
)

const (
	defaultEventTime     = "12:00"
	defaultDurationHours = 2
	timeLayout           = "15:04"
)

// BuildEventWindow derives the calendar window for a booking: start is the
// event date combined with the event time (noon when absent), end is start
// plus the duration in hours, never less than one. The window is only used
// for calendar sync and is never persisted on the booking.
func BuildEventWindow(eventDate time.Time, eventTime string, durationHours int) (start, end time.Time, err error) {
	if eventTime == "" {
		eventTime = defaultEventTime
	}
	t, err := time.Parse(timeLayout, eventTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid event time %q: %w", eventTime, err)
	}

	if durationHours < 1 {
		durationHours = 1
	}

	start = time.Date(
		eventDate.Year(), eventDate.Month(), eventDate.Day(),
		t.Hour(), t.Minute(), 0, 0, time.Local,
	)
	end = start.Add(time.Duration(durationHours) * time.Hour)
	return start, end, nil
}

// bookingDuration picks the duration in hours for a booking's calendar
// window: the package's own duration when the booking includes one, the
// default otherwise.
func bookingDuration(bookingType domain.BookingType, pkg *domain.AnimationPackage) int {
	if (bookingType == domain.BookingPackage || bookingType == domain.BookingBoth) && pkg != nil {
		return pkg.DurationHours
	}
	return defaultDurationHours
}
