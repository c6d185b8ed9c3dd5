package game

import (
	"fmt"
	"time"
)

// formatElapsed formats a duration as SS.mmm for the debug overlay.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d.Seconds())
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d.%03d", seconds, millis)
}

// labelOrigin centers debug-font text in a box. The debug font is 6x16.
func labelOrigin(text string, x, y, w, h float64) (int, int) {
	tw := float64(len(text) * 6)
	return int(x + (w-tw)/2), int(y + (h-16)/2)
}
