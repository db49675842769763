package experience

import (
	"regexp"
	"strings"
	"time"
)

// rangeSep matches the separator between the two endpoints of a range.
// ASCII hyphen, en dash and em dash are all accepted.
const rangeSep = `\s*[-–—]\s*`

// rangePatterns are tried in order. Every match of every pattern counts,
// so a span written in two compatible notations is counted twice.
var rangePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2} \w{3,9}, \d{4})` + rangeSep + `(\d{1,2} \w{3,9}, \d{4})`),
	regexp.MustCompile(`(\w{3,9} \d{4})` + rangeSep + `(\w{3,9} \d{4})`),
	regexp.MustCompile(`(\d{2}/\d{4})` + rangeSep + `(\d{2}/\d{4})`),
	regexp.MustCompile(`(\d{4})` + rangeSep + `(\d{4})`),
	regexp.MustCompile(`(\w{3,9} \d{4})` + rangeSep + `(Present)`),
}

// dateLayouts are attempted in order until one parses the endpoint.
var dateLayouts = []string{
	"2 Jan, 2006",
	"January 2006",
	"01/2006",
	"2006",
	"Jan 2006",
}

// DateRange is a span of employment parsed from text.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Raw   string    `json:"raw"`
}

// Months returns the whole-month distance between Start and End,
// ignoring the day of month.
func (r DateRange) Months() int {
	return (r.End.Year()-r.Start.Year())*12 + int(r.End.Month()) - int(r.Start.Month())
}

// parseDate tries every known layout. ok is false when none match.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// findRanges returns every parsable range with a positive month count.
// "Present" resolves to ref.
func findRanges(text string, ref time.Time) []DateRange {
	var ranges []DateRange
	for _, pattern := range rangePatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			start, ok := parseDate(m[1])
			if !ok {
				continue
			}

			var end time.Time
			if m[2] == "Present" {
				end = ref
			} else if end, ok = parseDate(m[2]); !ok {
				continue
			}

			r := DateRange{Start: start, End: end, Raw: m[0]}
			if r.Months() <= 0 {
				continue
			}
			ranges = append(ranges, r)
		}
	}
	return ranges
}
