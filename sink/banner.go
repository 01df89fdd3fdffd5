package sink

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	bannerWidth = 52
	timeFormat  = "2006-01-02 15:04:05"
)

var separator = strings.Repeat("=", bannerWidth)

// Banner is the three-line block opening a tracking session in the log.
func Banner(startedAt time.Time) string {
	title := "Tracking started " + startedAt.Local().Format(timeFormat)
	return separator + "\n" + center(title, bannerWidth) + "\n" + separator + "\n"
}

// center pads s with spaces to width. When the padding is odd the extra space
// goes left only if width is odd, matching Python's str.center.
func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	pad := width - n
	left := pad/2 + (pad & width & 1)
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
