package main

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	numberPrinter = message.NewPrinter(language.English)
	titleCaser    = cases.Title(language.English)
)

// formatQuantity groups thousands and keeps one decimal only when the value
// is fractional.
func formatQuantity(qty float64, uom string) string {
	var s string
	if qty == math.Trunc(qty) {
		s = numberPrinter.Sprintf("%d", int64(qty))
	} else {
		s = numberPrinter.Sprintf("%.1f", qty)
	}
	if uom = strings.TrimSpace(uom); uom != "" {
		s += " " + uom
	}
	return s
}

func formatCount(n int) string {
	return numberPrinter.Sprintf("%d", n)
}

func formatDays(days float64) string {
	return numberPrinter.Sprintf("%.1f", days)
}

// humanize turns identifiers like "ready_not_advanced" into "Ready Not Advanced".
func humanize(value string) string {
	value = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(value))
	if value == "" {
		return ""
	}
	return titleCaser.String(value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}

func fallback(value, alt string) string {
	if strings.TrimSpace(value) == "" {
		return alt
	}
	return value
}
