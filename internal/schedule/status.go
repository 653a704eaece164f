package schedule

import (
	"fmt"
	"strings"
	"time"

	"center-directory-service/internal/models"
)

// Status values reported by the engine.
const (
	StatusOpen            = "open"
	StatusClosingLater    = "closing_later"
	StatusClosingSoon     = "closing_soon"
	StatusClosingVerySoon = "closing_very_soon"
	StatusClosed          = "closed"
)

// Status is the open/closed state of a center at one instant.
type Status struct {
	IsOpen            bool    `json:"is_open"`
	Status            string  `json:"status"`
	Message           string  `json:"message"`
	MinutesUntilClose *int    `json:"minutes_until_close"`
	HoursUntilClose   *int    `json:"hours_until_close"`
	ClosingTime       *string `json:"closing_time"`
}

// Opening is the next future opening slot of a closed center.
type Opening struct {
	Day       time.Weekday
	DaysAhead int
	OpenTime  string
}

// Label renders the day relative to today: "tomorrow", a weekday name, or "next week".
func (o Opening) Label() string {
	switch {
	case o.DaysAhead == 1:
		return "tomorrow"
	case o.DaysAhead >= 2 && o.DaysAhead <= 6:
		name := DayName(o.Day)
		return strings.ToUpper(name[:1]) + name[1:]
	default:
		return "next week"
	}
}

// Engine computes center status against an injected clock.
type Engine struct {
	clock Clock
}

// NewEngine creates a status engine.
func NewEngine(clock Clock) *Engine {
	return &Engine{clock: clock}
}

// Clock returns the engine's clock.
func (e *Engine) Clock() Clock {
	return e.clock
}

// Status evaluates hours at the clock's current instant.
func (e *Engine) Status(hours []models.DayHours, timezone string) Status {
	return e.StatusAt(hours, timezone, e.clock.Now())
}

// StatusAt evaluates hours at now, interpreted in the center's timezone.
func (e *Engine) StatusAt(hours []models.DayHours, timezone string, now time.Time) Status {
	today, current := e.clock.LocalWeekdayAndMinutes(now, timezone)

	entry, ok := DayEntry(hours, today)
	if !ok || entry.Closed() {
		return closedUntilNext(hours, today)
	}

	open, errOpen := TimeToMinutes(entry.OpenTime)
	closeAt, errClose := TimeToMinutes(entry.CloseTime)
	if errOpen != nil || errClose != nil {
		return closedUntilNext(hours, today)
	}

	if current < open {
		return Status{
			Status:  StatusClosed,
			Message: "Closed • Opens at " + entry.OpenTime,
		}
	}
	if current > closeAt {
		return closedUntilNext(hours, today)
	}

	minutesLeft := closeAt - current
	hoursLeft := minutesLeft / 60
	closing := entry.CloseTime
	st := Status{
		IsOpen:            true,
		MinutesUntilClose: &minutesLeft,
		HoursUntilClose:   &hoursLeft,
		ClosingTime:       &closing,
	}

	switch {
	case minutesLeft <= 30:
		st.Status = StatusClosingVerySoon
		st.Message = fmt.Sprintf("Closing in %d minutes", minutesLeft)
	case minutesLeft <= 60:
		st.Status = StatusClosingSoon
		st.Message = "Closing soon • Closes at " + closing
	case minutesLeft < 120:
		st.Status = StatusClosingLater
		unit := "hours"
		if hoursLeft == 1 {
			unit = "hour"
		}
		st.Message = fmt.Sprintf("Open • Closes in %d %s", hoursLeft, unit)
	default:
		st.Status = StatusOpen
		st.Message = "Open • Closes at " + closing
	}
	return st
}

// IsOpenAt reports whether the center is open at now.
func (e *Engine) IsOpenAt(hours []models.DayHours, timezone string, now time.Time) bool {
	return e.StatusAt(hours, timezone, now).IsOpen
}

// Today returns the center-local weekday at now.
func (e *Engine) Today(timezone string, now time.Time) time.Weekday {
	d, _ := e.clock.LocalWeekdayAndMinutes(now, timezone)
	return d
}

// NextOpening searches the seven days after today for the first non-closed entry.
func NextOpening(hours []models.DayHours, today time.Weekday) (Opening, bool) {
	for ahead := 1; ahead <= 7; ahead++ {
		day := time.Weekday((int(today) + ahead) % 7)
		entry, ok := DayEntry(hours, day)
		if !ok || entry.IsClosed || entry.OpenTime == "" {
			continue
		}
		return Opening{Day: day, DaysAhead: ahead, OpenTime: entry.OpenTime}, true
	}
	return Opening{}, false
}

// DayEntry finds the schedule entry for a weekday.
func DayEntry(hours []models.DayHours, day time.Weekday) (models.DayHours, bool) {
	for _, h := range hours {
		if d, ok := ParseDay(h.Day); ok && d == day {
			return h, true
		}
	}
	return models.DayHours{}, false
}

func closedUntilNext(hours []models.DayHours, today time.Weekday) Status {
	next, ok := NextOpening(hours, today)
	if !ok {
		return Status{Status: StatusClosed, Message: "Closed"}
	}
	return Status{
		Status:  StatusClosed,
		Message: fmt.Sprintf("Closed • Opens %s at %s", next.Label(), next.OpenTime),
	}
}
