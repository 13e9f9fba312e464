package scheduler

import (
	"fmt"
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// WeekdayRange is an inclusive run of weekdays. From may be after To, in which
// case the range wraps through the weekend (e.g. fri-mon).
type WeekdayRange struct {
	From time.Weekday
	To   time.Weekday
}

// ParseWeekdays accepts "mon-fri" or a single day such as "wed".
func ParseWeekdays(value string) (WeekdayRange, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	from, to, found := strings.Cut(value, "-")
	if !found {
		to = from
	}
	fromDay, ok := weekdayNames[strings.TrimSpace(from)]
	if !ok {
		return WeekdayRange{}, fmt.Errorf("invalid weekday: %q", from)
	}
	toDay, ok := weekdayNames[strings.TrimSpace(to)]
	if !ok {
		return WeekdayRange{}, fmt.Errorf("invalid weekday: %q", to)
	}
	return WeekdayRange{From: fromDay, To: toDay}, nil
}

func (r WeekdayRange) Contains(day time.Weekday) bool {
	if r.From <= r.To {
		return day >= r.From && day <= r.To
	}
	return day >= r.From || day <= r.To
}

func (r WeekdayRange) String() string {
	return fmt.Sprintf("%s-%s", r.From, r.To)
}

type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay accepts 24h "HH:MM".
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", value, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Schedule fires once per day at At on every day in Days, in Location.
type Schedule struct {
	Days     WeekdayRange
	At       TimeOfDay
	Location *time.Location
}

func NewSchedule(days, at, timezone string) (Schedule, error) {
	dayRange, err := ParseWeekdays(days)
	if err != nil {
		return Schedule{}, err
	}
	tod, err := ParseTimeOfDay(at)
	if err != nil {
		return Schedule{}, err
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return Schedule{Days: dayRange, At: tod, Location: loc}, nil
}

// Next returns the first slot strictly after the given instant.
func (s Schedule) Next(after time.Time) time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	local := after.In(loc)
	// Eight days always reaches the same weekday again.
	for i := 0; i <= 7; i++ {
		day := local.AddDate(0, 0, i)
		slot := time.Date(day.Year(), day.Month(), day.Day(), s.At.Hour, s.At.Minute, 0, 0, loc)
		if slot.After(after) && s.Days.Contains(slot.Weekday()) {
			return slot
		}
	}
	return time.Time{}
}
