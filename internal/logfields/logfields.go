package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPageID        = "page_id"
	KeyPageTitle     = "page_title"
	KeyParentID      = "parent_id"
	KeyLayoutContext = "layout_context"
	KeyOrder         = "order"
	KeyRule          = "rule"
	KeyStage         = "stage"
	KeyAttempt       = "attempt"
	KeyOperation     = "operation"
	KeyDurationMS    = "duration_ms"
	KeyPath          = "path"
	KeyHook          = "hook"
	KeyError         = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func PageID(id string) slog.Attr         { return slog.String(KeyPageID, id) }
func PageTitle(t string) slog.Attr       { return slog.String(KeyPageTitle, t) }
func ParentID(id string) slog.Attr       { return slog.String(KeyParentID, id) }
func LayoutContext(c string) slog.Attr   { return slog.String(KeyLayoutContext, c) }
func Order(o int) slog.Attr              { return slog.Int(KeyOrder, o) }
func Rule(r string) slog.Attr            { return slog.String(KeyRule, r) }
func Stage(name string) slog.Attr        { return slog.String(KeyStage, name) }
func Attempt(n int) slog.Attr            { return slog.Int(KeyAttempt, n) }
func Operation(op string) slog.Attr      { return slog.String(KeyOperation, op) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func Hook(name string) slog.Attr         { return slog.String(KeyHook, name) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
