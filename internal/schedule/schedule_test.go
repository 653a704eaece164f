package schedule

import (
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"center-directory-service/internal/models"
)

func TestTimeToMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"12:00 AM", 0},
		{"12:59 AM", 59},
		{"1:00 AM", 60},
		{"9:30 AM", 570},
		{"12:00 PM", 720},
		{"12:30 PM", 750},
		{"1:05 PM", 785},
		{"11:59 PM", 1439},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := TimeToMinutes(tt.in)
			if err != nil {
				t.Fatalf("TimeToMinutes(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("TimeToMinutes(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestTimeToMinutes_Malformed(t *testing.T) {
	for _, in := range []string{"", "9:30", "09:30 AM", "13:00 PM", "0:15 AM", "9:5 AM", "9:30 am", "9:30AM", "9:60 PM", " 9:30 AM"} {
		t.Run(in, func(t *testing.T) {
			_, err := TimeToMinutes(in)
			var mte *MalformedTimeError
			if !errors.As(err, &mte) {
				t.Fatalf("TimeToMinutes(%q) error = %v, want *MalformedTimeError", in, err)
			}
			if mte.Value != in {
				t.Errorf("Value = %q, want %q", mte.Value, in)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	if d, ok := ParseDay("Saturday"); !ok || d != time.Saturday {
		t.Errorf("ParseDay(Saturday) = %v, %v", d, ok)
	}
	if _, ok := ParseDay("someday"); ok {
		t.Error("ParseDay(someday) should fail")
	}
	if DayName(time.Wednesday) != "wednesday" {
		t.Errorf("DayName(Wednesday) = %q", DayName(time.Wednesday))
	}
}

func officeHours() []models.DayHours {
	var hours []models.DayHours
	for _, d := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		hours = append(hours, models.DayHours{Day: d, OpenTime: "9:00 AM", CloseTime: "5:00 PM"})
	}
	hours = append(hours,
		models.DayHours{Day: "saturday", OpenTime: "10:00 AM", CloseTime: "2:00 PM"},
		models.DayHours{Day: "sunday", IsClosed: true},
	)
	return hours
}

func allClosed() []models.DayHours {
	var hours []models.DayHours
	for _, d := range dayNames {
		hours = append(hours, models.DayHours{Day: d, IsClosed: true})
	}
	return hours
}

func alwaysOpen() []models.DayHours {
	var hours []models.DayHours
	for _, d := range dayNames {
		hours = append(hours, models.DayHours{Day: d, OpenTime: "12:00 AM", CloseTime: "11:59 PM"})
	}
	return hours
}

// 2026-10-19 is a Monday.
func at(day, hour, minute int) time.Time {
	return time.Date(2026, 10, day, hour, minute, 0, 0, time.UTC)
}

func TestEngine_StatusAt(t *testing.T) {
	engine := NewEngine(NewSystemClock())

	tests := []struct {
		name     string
		hours    []models.DayHours
		now      time.Time
		open     bool
		status   string
		message  string
		minsLeft int
	}{
		{
			name:    "before opening",
			hours:   officeHours(),
			now:     at(19, 8, 0),
			status:  StatusClosed,
			message: "Closed • Opens at 9:00 AM",
		},
		{
			name:     "open with plenty of time",
			hours:    officeHours(),
			now:      at(19, 10, 0),
			open:     true,
			status:   StatusOpen,
			message:  "Open • Closes at 5:00 PM",
			minsLeft: 420,
		},
		{
			name:     "closing later",
			hours:    officeHours(),
			now:      at(19, 15, 30),
			open:     true,
			status:   StatusClosingLater,
			message:  "Open • Closes in 1 hour",
			minsLeft: 90,
		},
		{
			name:     "closing soon",
			hours:    officeHours(),
			now:      at(19, 16, 0),
			open:     true,
			status:   StatusClosingSoon,
			message:  "Closing soon • Closes at 5:00 PM",
			minsLeft: 60,
		},
		{
			name:     "closing very soon",
			hours:    officeHours(),
			now:      at(19, 16, 45),
			open:     true,
			status:   StatusClosingVerySoon,
			message:  "Closing in 15 minutes",
			minsLeft: 15,
		},
		{
			name:    "after close opens tomorrow",
			hours:   officeHours(),
			now:     at(19, 18, 0),
			status:  StatusClosed,
			message: "Closed • Opens tomorrow at 9:00 AM",
		},
		{
			name:    "closed sunday opens tomorrow",
			hours:   officeHours(),
			now:     at(25, 12, 0),
			status:  StatusClosed,
			message: "Closed • Opens tomorrow at 9:00 AM",
		},
		{
			name: "weekday label for later opening",
			hours: []models.DayHours{
				{Day: "monday", IsClosed: true},
				{Day: "thursday", OpenTime: "8:00 AM", CloseTime: "12:00 PM"},
			},
			now:     at(19, 12, 0),
			status:  StatusClosed,
			message: "Closed • Opens Thursday at 8:00 AM",
		},
		{
			name: "same weekday next week",
			hours: []models.DayHours{
				{Day: "monday", OpenTime: "8:00 AM", CloseTime: "9:00 AM"},
			},
			now:     at(19, 12, 0),
			status:  StatusClosed,
			message: "Closed • Opens next week at 8:00 AM",
		},
		{
			name:    "no schedule at all",
			hours:   nil,
			now:     at(19, 12, 0),
			status:  StatusClosed,
			message: "Closed",
		},
		{
			name: "malformed hours treated as closed",
			hours: []models.DayHours{
				{Day: "monday", OpenTime: "9:00 AM", CloseTime: "late"},
			},
			now:     at(19, 12, 0),
			status:  StatusClosed,
			message: "Closed • Opens next week at 9:00 AM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.StatusAt(tt.hours, "UTC", tt.now)
			if got.IsOpen != tt.open {
				t.Errorf("IsOpen = %v, want %v", got.IsOpen, tt.open)
			}
			if got.Status != tt.status {
				t.Errorf("Status = %q, want %q", got.Status, tt.status)
			}
			if got.Message != tt.message {
				t.Errorf("Message = %q, want %q", got.Message, tt.message)
			}
			if tt.open {
				if got.MinutesUntilClose == nil || *got.MinutesUntilClose != tt.minsLeft {
					t.Errorf("MinutesUntilClose = %v, want %d", got.MinutesUntilClose, tt.minsLeft)
				}
				if got.HoursUntilClose == nil || *got.HoursUntilClose != tt.minsLeft/60 {
					t.Errorf("HoursUntilClose = %v, want %d", got.HoursUntilClose, tt.minsLeft/60)
				}
				if got.ClosingTime == nil {
					t.Error("ClosingTime should be set when open")
				}
			} else if got.MinutesUntilClose != nil || got.HoursUntilClose != nil || got.ClosingTime != nil {
				t.Error("closing fields should be nil when closed")
			}
		})
	}
}

func TestEngine_AllClosedNeverOpens(t *testing.T) {
	engine := NewEngine(NewSystemClock())
	start := at(19, 0, 0)
	for i := 0; i < 7*24*4; i++ {
		now := start.Add(time.Duration(i) * 15 * time.Minute)
		st := engine.StatusAt(allClosed(), "UTC", now)
		if st.IsOpen {
			t.Fatalf("IsOpen at %v, want closed", now)
		}
		if !strings.Contains(st.Message, "Closed") {
			t.Fatalf("Message %q does not contain Closed", st.Message)
		}
	}
}

func TestEngine_AlwaysOpen(t *testing.T) {
	engine := NewEngine(NewSystemClock())
	start := at(19, 0, 0)
	for i := 0; i < 7*24*60; i += 7 {
		now := start.Add(time.Duration(i) * time.Minute)
		if !engine.StatusAt(alwaysOpen(), "America/Chicago", now).IsOpen {
			t.Fatalf("24/7 schedule reported closed at %v", now)
		}
	}
}

func TestEngine_UsesCenterTimezone(t *testing.T) {
	// 15:00 UTC is 11:00 in New York (EDT) on a Monday.
	clock := NewFixedClock(at(19, 15, 0))
	engine := NewEngine(clock)

	hours := []models.DayHours{{Day: "monday", OpenTime: "10:00 AM", CloseTime: "11:30 AM"}}

	st := engine.Status(hours, "America/New_York")
	if !st.IsOpen || *st.MinutesUntilClose != 30 {
		t.Fatalf("Status = %+v, want open with 30 minutes left", st)
	}

	if engine.Status(hours, "UTC").IsOpen {
		t.Error("expected closed when interpreted in UTC")
	}

	clock.Advance(time.Hour)
	if engine.Status(hours, "America/New_York").IsOpen {
		t.Error("expected closed after advancing past close")
	}
}

func TestSystemClock_UnknownZoneFallsBackToUTC(t *testing.T) {
	c := NewSystemClock()
	day, mins := c.LocalWeekdayAndMinutes(at(19, 13, 45), "Not/AZone")
	if day != time.Monday || mins != 13*60+45 {
		t.Errorf("got %v %d, want Monday 825", day, mins)
	}
}

func TestNextOpening(t *testing.T) {
	next, ok := NextOpening(officeHours(), time.Friday)
	if !ok {
		t.Fatal("expected an opening")
	}
	if next.Day != time.Saturday || next.DaysAhead != 1 || next.Label() != "tomorrow" {
		t.Errorf("NextOpening = %+v (%s)", next, next.Label())
	}

	if _, ok := NextOpening(allClosed(), time.Monday); ok {
		t.Error("expected no opening for all-closed schedule")
	}
}
