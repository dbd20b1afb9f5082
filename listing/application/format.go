package application

import "strconv"

// formatID renders an integer primary key as the opaque listing id the
// gallery core expects.
func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
