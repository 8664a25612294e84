package format

import (
	"fmt"
	"time"
)

// Elapsed renders the wall time of a tabulation. Sub-second runs print in
// whole milliseconds, runs under a minute in tenths of a second, and longer
// runs are rounded to the second.
func Elapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}
