package reminder

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Kind identifies one daily reminder.
type Kind string

const (
	KindBreakfast Kind = "breakfast"
	KindLunch     Kind = "lunch"
	KindDinner    Kind = "dinner"
	KindSnacks    Kind = "snacks"
	KindWeight    Kind = "weight"
)

// Kinds lists every reminder kind in arming order.
var Kinds = []Kind{KindBreakfast, KindLunch, KindDinner, KindSnacks, KindWeight}

// Message is the notification shown when a reminder fires.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

var messages = map[Kind]Message{
	KindBreakfast: {Title: "Breakfast Time!", Body: "Time to enjoy your breakfast."},
	KindLunch:     {Title: "Lunch Time!", Body: "Hope you're hungry! It's time for lunch."},
	KindDinner:    {Title: "Dinner Time!", Body: "Your delicious dinner is waiting."},
	KindSnacks:    {Title: "Snack Time!", Body: "A quick snack to keep you going."},
	KindWeight:    {Title: "Weight Log Reminder", Body: "Don't forget to log your weight today!"},
}

// Message returns the notification text for k.
func (k Kind) Message() Message {
	return messages[k]
}

// MealReminders holds the "HH:mm" time for each meal.
type MealReminders struct {
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
	Snacks    string `json:"snacks"`
}

// WeightReminder is the optional daily weigh-in reminder.
type WeightReminder struct {
	Enabled bool   `json:"enabled"`
	Time    string `json:"time"`
}

// Settings is the persisted reminder configuration.
type Settings struct {
	Enabled        bool           `json:"enabled"`
	MealReminders  MealReminders  `json:"mealReminders"`
	WeightReminder WeightReminder `json:"weightReminder"`
}

// DefaultSettings is used when nothing has been saved yet.
func DefaultSettings() Settings {
	return Settings{
		Enabled: false,
		MealReminders: MealReminders{
			Breakfast: "08:00",
			Lunch:     "12:30",
			Dinner:    "18:30",
			Snacks:    "15:30",
		},
		WeightReminder: WeightReminder{Enabled: false, Time: "07:30"},
	}
}

// Time returns the configured time string for k and whether k is switched on.
// Meal kinds follow the master switch only; the weight kind also needs its own flag.
func (s Settings) Time(k Kind) (string, bool) {
	switch k {
	case KindBreakfast:
		return s.MealReminders.Breakfast, true
	case KindLunch:
		return s.MealReminders.Lunch, true
	case KindDinner:
		return s.MealReminders.Dinner, true
	case KindSnacks:
		return s.MealReminders.Snacks, true
	case KindWeight:
		return s.WeightReminder.Time, s.WeightReminder.Enabled
	}
	return "", false
}

// Validate checks every configured time. Empty times are allowed and leave
// that reminder unarmed.
func (s Settings) Validate() error {
	for _, k := range Kinds {
		hhmm, _ := s.Time(k)
		if hhmm == "" {
			continue
		}
		if _, err := ParseTimeOfDay(hhmm); err != nil {
			return fmt.Errorf("%s reminder: %w", k, err)
		}
	}
	return nil
}

// SetTime updates the time for k.
func (s *Settings) SetTime(k Kind, hhmm string) error {
	if _, err := ParseTimeOfDay(hhmm); err != nil {
		return err
	}
	switch k {
	case KindBreakfast:
		s.MealReminders.Breakfast = hhmm
	case KindLunch:
		s.MealReminders.Lunch = hhmm
	case KindDinner:
		s.MealReminders.Dinner = hhmm
	case KindSnacks:
		s.MealReminders.Snacks = hhmm
	case KindWeight:
		s.WeightReminder.Time = hhmm
	default:
		return fmt.Errorf("unknown reminder kind %q", k)
	}
	return nil
}

// TimeOfDay is a local wall-clock time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

var hhmmRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// ParseTimeOfDay parses a strict 24-hour "HH:mm" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	m := hhmmRe.FindStringSubmatch(s)
	if m == nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q, want HH:mm", s)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return TimeOfDay{Hour: h, Minute: mm}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// NextOccurrence returns today at t in now's location if that instant is
// still ahead of now, otherwise the same time tomorrow.
func NextOccurrence(now time.Time, t TimeOfDay) time.Time {
	y, m, d := now.Date()
	next := time.Date(y, m, d, t.Hour, t.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(y, m, d+1, t.Hour, t.Minute, 0, 0, now.Location())
	}
	return next
}
