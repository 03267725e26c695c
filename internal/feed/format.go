package feed

import (
	"fmt"
	"time"
)

// RelativeAge renders how long ago a post was created, for feed display.
func RelativeAge(createdAt time.Time, now time.Time) string {
	diff := now.Sub(createdAt)

	minutes := int(diff.Minutes())
	hours := int(diff.Hours())
	days := int(diff.Hours() / 24)

	switch {
	case minutes < 60:
		return fmt.Sprintf("%d min ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%d %s ago", hours, plural("hour", hours))
	default:
		return fmt.Sprintf("%d %s ago", days, plural("day", days))
	}
}

func plural(unit string, n int) string {
	if n > 1 {
		return unit + "s"
	}
	return unit
}
