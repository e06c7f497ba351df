package output

import (
	"fmt"
	"strings"
)

// Labels holds the user-facing titles of a report.
type Labels struct {
	Level  string // first column title
	Count  string // second column title
	Detail string // detail header, %s is the selected level
}

var (
	English = Labels{
		Level:  "logging level",
		Count:  "count",
		Detail: "Log details for level '%s':",
	}
	Ukrainian = Labels{
		Level:  "Рівень логування",
		Count:  "Кількість",
		Detail: "Деталі логів для рівня '%s':",
	}
)

// LabelsFor returns the labels of a locale ("en" or "uk").
func LabelsFor(locale string) (Labels, error) {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "", "en":
		return English, nil
	case "uk", "ua":
		return Ukrainian, nil
	default:
		return Labels{}, fmt.Errorf("unsupported locale %q (want en or uk)", locale)
	}
}
