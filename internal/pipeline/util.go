package pipeline

import (
	"fmt"
	"time"
)

// FormatDurationShort formats a duration compactly.
//
//	<1s  -> "0.Xs"
//	<1m  -> "X.Xs"
//	<1h  -> "XmYs"
//	else -> "XhYm"
func FormatDurationShort(d time.Duration) string {
	ms := d.Milliseconds()
	switch {
	case ms < 1000:
		return fmt.Sprintf("0.%ds", ms/100)
	case ms < 60000:
		return fmt.Sprintf("%d.%ds", ms/1000, (ms%1000)/100)
	case ms < 3600000:
		return fmt.Sprintf("%dm%ds", ms/60000, (ms%60000)/1000)
	default:
		return fmt.Sprintf("%dh%dm", ms/3600000, (ms%3600000)/60000)
	}
}
