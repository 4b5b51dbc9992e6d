package exporter

import (
	"strconv"
	"time"

	"covidpulse/pkg/contracts/domain"
)

const dateLayout = "2006-01-02"

// formatFloat formats a float64 with the shortest exact representation
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatDate formats a date as YYYY-MM-DD; the zero time is empty
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// formatNull formats an optional value; unknown values are empty
func formatNull(n domain.NullFloat64) string {
	return n.String()
}
