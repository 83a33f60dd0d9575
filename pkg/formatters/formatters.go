// Package formatters renders sizes, rates, durations and progress counts
// for logs and the terminal UI.
package formatters

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes formats bytes into human-readable format (e.g., "1.5 KiB").
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}

	return humanize.IBytes(uint64(bytes))
}

// FormatRate formats a transfer rate (e.g., "5.2 MiB/s").
func FormatRate(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return "0 B/s"
	}

	return humanize.IBytes(uint64(bytesPerSec)) + "/s"
}

// FormatDuration formats a duration as "2h 3m 4s", "3m 4s" or "4s".
func FormatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)
	hours := duration / time.Hour
	duration %= time.Hour
	minutes := duration / time.Minute
	duration %= time.Minute
	seconds := duration / time.Second

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// Percent returns done/total as a whole percentage. An empty total is 100%.
func Percent(done, total int) int {
	if total <= 0 {
		return 100 //nolint:mnd // Nothing to do is complete.
	}

	return done * 100 / total //nolint:mnd // Percentage.
}

// Progress renders "N / Total (P%)".
func Progress(done, total int) string {
	return fmt.Sprintf("%s / %s (%d%%)", humanize.Comma(int64(done)), humanize.Comma(int64(total)), Percent(done, total))
}
