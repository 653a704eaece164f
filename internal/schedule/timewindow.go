// Package schedule converts 12-hour clock strings and weekly opening hours into
// open/closed status for a center's local time.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var clockPattern = regexp.MustCompile(`^(1[0-2]|[1-9]):([0-5][0-9]) (AM|PM)$`)

// MalformedTimeError is returned when a clock string does not match "H:MM AM/PM".
type MalformedTimeError struct {
	Value string
}

func (e *MalformedTimeError) Error() string {
	return fmt.Sprintf("malformed time %q: expected H:MM AM/PM", e.Value)
}

// TimeToMinutes parses "H:MM AM" / "H:MM PM" into minutes since midnight (0-1439).
func TimeToMinutes(clock string) (int, error) {
	m := clockPattern.FindStringSubmatch(clock)
	if m == nil {
		return 0, &MalformedTimeError{Value: clock}
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	hour %= 12
	if m[3] == "PM" {
		hour += 12
	}
	return hour*60 + minute, nil
}

var dayNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// DayName returns the lowercase name used in schedules for a weekday.
func DayName(d time.Weekday) string {
	return dayNames[d]
}

// ParseDay maps a schedule day name (any case) to a weekday.
func ParseDay(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range dayNames {
		if n == name {
			return time.Weekday(i), true
		}
	}
	return 0, false
}
