package parser

import (
	"strings"
	"time"
)

const canonicalLayout = "January 2006"

var dateLayouts = []string{
	"January 2006",
	"Jan 2006",
	"Jan. 2006",
	"January, 2006",
	"Jan, 2006",
	"01/2006",
	"1/2006",
	"01-2006",
	"2006-01",
	"2006/01",
	"2006-01-02",
}

// NormalizeDate rewrites a month/year date into "June 2023" form. Values it
// does not recognize, such as "Present", are returned trimmed but otherwise
// unchanged.
func NormalizeDate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(canonicalLayout)
		}
	}
	return s
}

// normalizeSpan applies the single-date rule: a lone date is an end date.
func normalizeSpan(start, end string) (string, string) {
	start, end = NormalizeDate(start), NormalizeDate(end)
	if end == "" && start != "" {
		return "", start
	}
	return start, end
}
