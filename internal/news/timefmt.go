package news

import (
	"fmt"
	"time"
)

// ShortDateLayout is used once an article is a week old or more.
const ShortDateLayout = "Jan 2, 2006"

// RelativeTime renders published relative to now: minutes under an hour,
// hours under a day, days under a week, then a short date.
func RelativeTime(published, now time.Time) string {
	if published.IsZero() {
		return ""
	}
	d := now.Sub(published)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	default:
		return published.Local().Format(ShortDateLayout)
	}
}
