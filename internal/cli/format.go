package cli

import (
	"fmt"
	"time"
)

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatSpeed renders bytes-per-second as a human rate.
func formatSpeed(bps float64) string {
	if bps <= 0 {
		return "-"
	}
	return formatBytes(int64(bps)) + "/s"
}

// formatExpiry renders when an upload falls off the remote service, with
// warnings as the date gets close.
func formatExpiry(uploadTime time.Time, expiryDays int) string {
	if uploadTime.IsZero() {
		return "Unknown"
	}
	expiry := uploadTime.AddDate(0, 0, expiryDays)
	daysLeft := int(time.Until(expiry).Hours() / 24)
	switch {
	case daysLeft < 0:
		return "EXPIRED"
	case daysLeft <= 3:
		return fmt.Sprintf("EXPIRES SOON (%d days)", daysLeft)
	default:
		return expiry.Format("2006-01-02")
	}
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 || len([]rune(s)) <= max {
		return s
	}
	r := []rune(s)
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
