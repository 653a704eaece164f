package filter

import (
	"fmt"
	"time"

	"center-directory-service/internal/models"
	"center-directory-service/internal/schedule"
)

// HoursPredicate names an hours-based filter.
type HoursPredicate string

const (
	OpenNow      HoursPredicate = "openNow"
	OpenLate     HoursPredicate = "openLate"
	OpenWeekends HoursPredicate = "openWeekends"
)

// LateCloseMinutes is 9:00 PM; closing at or after it counts as open late.
const LateCloseMinutes = 21 * 60

// LateScope selects which days openLate inspects.
type LateScope int

const (
	LateAnyDay LateScope = iota
	LateTodayOnly
)

// ParseLateScope accepts "any" or "today"; empty selects def.
func ParseLateScope(s string, def LateScope) (LateScope, error) {
	switch s {
	case "":
		return def, nil
	case "any":
		return LateAnyDay, nil
	case "today":
		return LateTodayOnly, nil
	}
	return def, fmt.Errorf("invalid late scope %q", s)
}

// ParseHoursPredicates validates predicate names.
func ParseHoursPredicates(values []string) ([]HoursPredicate, error) {
	out := make([]HoursPredicate, 0, len(values))
	for _, v := range values {
		switch p := HoursPredicate(v); p {
		case OpenNow, OpenLate, OpenWeekends:
			out = append(out, p)
		default:
			return nil, fmt.Errorf("invalid hours filter %q", v)
		}
	}
	return out, nil
}

// ByHours keeps centers satisfying every predicate at now.
func ByHours(centers []models.Center, preds []HoursPredicate, scope LateScope, engine *schedule.Engine, now time.Time) []models.Center {
	if len(preds) == 0 {
		return centers
	}

	out := make([]models.Center, 0, len(centers))
	for _, c := range centers {
		if matchHours(c, preds, scope, engine, now) {
			out = append(out, c)
		}
	}
	return out
}

func matchHours(c models.Center, preds []HoursPredicate, scope LateScope, engine *schedule.Engine, now time.Time) bool {
	for _, p := range preds {
		var ok bool
		switch p {
		case OpenNow:
			ok = engine.IsOpenAt(c.Hours, c.Timezone, now)
		case OpenLate:
			if scope == LateTodayOnly {
				entry, found := schedule.DayEntry(c.Hours, engine.Today(c.Timezone, now))
				ok = found && closesLate(entry)
			} else {
				ok = anyLate(c.Hours)
			}
		case OpenWeekends:
			ok = openOn(c.Hours, time.Saturday) || openOn(c.Hours, time.Sunday)
		}
		if !ok {
			return false
		}
	}
	return true
}

func closesLate(h models.DayHours) bool {
	if h.Closed() {
		return false
	}
	m, err := schedule.TimeToMinutes(h.CloseTime)
	return err == nil && m >= LateCloseMinutes
}

func anyLate(hours []models.DayHours) bool {
	for _, h := range hours {
		if closesLate(h) {
			return true
		}
	}
	return false
}

func openOn(hours []models.DayHours, day time.Weekday) bool {
	entry, ok := schedule.DayEntry(hours, day)
	return ok && !entry.Closed()
}
