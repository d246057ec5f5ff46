package utils

import (
	"fmt"
	"strconv"
)

// FormatBytes renders a file size the way the console shows it, one decimal
// at most and no trailing ".0".
func FormatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	value := float64(size)
	exp := 0
	for value >= unit && exp < 4 {
		value /= unit
		exp++
	}

	formatted := strconv.FormatFloat(value, 'f', 1, 64)
	if len(formatted) > 2 && formatted[len(formatted)-2:] == ".0" {
		formatted = formatted[:len(formatted)-2]
	}
	return formatted + " " + []string{"B", "KB", "MB", "GB", "TB"}[exp]
}

// FormatCount adds thousands separators to row and column counts.
func FormatCount(count int64) string {
	digits := strconv.FormatInt(count, 10)
	negative := false
	if len(digits) > 0 && digits[0] == '-' {
		negative = true
		digits = digits[1:]
	}

	if len(digits) <= 3 {
		if negative {
			return "-" + digits
		}
		return digits
	}

	var out []byte
	lead := len(digits) % 3
	if lead > 0 {
		out = append(out, digits[:lead]...)
	}
	for i := lead; i < len(digits); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i:i+3]...)
	}

	if negative {
		return "-" + string(out)
	}
	return string(out)
}
