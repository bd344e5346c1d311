package preview

import (
	"fmt"
	"math"
	"strings"
)

var sizeUnits = [...]string{"KB", "MB", "GB"}

// FormatFileSize renders bytes in binary units with one decimal place,
// e.g. 1572864 -> "1.5 MB". Values under 1024 are shown as whole bytes
// and GB is the largest unit.
func FormatFileSize(bytes int64) string {
	if bytes < 0 {
		return ""
	}
	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	}
	value := float64(bytes) / 1024
	unit := 0
	// Compare the rounded value so 1048575 reads "1.0 MB", not "1024.0 KB".
	for math.Round(value*10)/10 >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", value, sizeUnits[unit])
}

// FormatSize is FormatFileSize for an optional size; nil gives "".
func FormatSize(bytes *int64) string {
	if bytes == nil {
		return ""
	}
	return FormatFileSize(*bytes)
}

// TruncateDisplayName shortens names whose base (before the last dot) is
// longer than 10 characters to the first five, "..." and the extension:
// "presentation_slides_q4.pptx" -> "prese...pptx". Names without a dot are
// returned unchanged.
func TruncateDisplayName(name string) string {
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return name
	}
	base := []rune(name[:dot])
	if len(base) <= 10 {
		return name
	}
	return string(base[:5]) + "..." + name[dot+1:]
}
