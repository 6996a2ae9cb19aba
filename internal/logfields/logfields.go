package logfields

import "log/slog"

// Canonical log field names shared by every package.
const (
	KeyKey        = "key"
	KeyPlanDate   = "plan_date"
	KeyRecipeID   = "recipe_id"
	KeyReminder   = "reminder"
	KeyDueAt      = "due_at"
	KeyAgent      = "agent"
	KeyDurationMS = "duration_ms"
	KeyTokens     = "tokens"
	KeyPath       = "path"
	KeyError      = "error"
)

func Key(k string) slog.Attr          { return slog.String(KeyKey, k) }
func PlanDate(d string) slog.Attr     { return slog.String(KeyPlanDate, d) }
func RecipeID(id string) slog.Attr    { return slog.String(KeyRecipeID, id) }
func Reminder(kind string) slog.Attr  { return slog.String(KeyReminder, kind) }
func DueAt(s string) slog.Attr        { return slog.String(KeyDueAt, s) }
func Agent(name string) slog.Attr     { return slog.String(KeyAgent, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Tokens(n int) slog.Attr          { return slog.Int(KeyTokens, n) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
