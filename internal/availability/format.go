package availability

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	usageRangePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(AM|PM)-(\d{1,2}):(\d{2})(AM|PM)`)
	usageCodePrefix   = regexp.MustCompile(`^\d{4} `)
)

// FormatTime12h converts "HH:mm" to "h:mm AM/PM". Input that does not parse is
// returned as is.
func FormatTime12h(hhmm string) string {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return hhmm
	}

	hour, period := t.Hour(), "AM"
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		period = "PM"
	case hour > 12:
		hour -= 12
		period = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute(), period)
}

// FormatRange12h renders a range as "h:mm AM - h:mm PM".
func FormatRange12h(start, end string) string {
	return FormatTime12h(start) + " - " + FormatTime12h(end)
}

// FormatRanges renders every range with FormatRange12h, joined by ", ".
func FormatRanges(ranges []TimeRange) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = FormatRange12h(r.Start, r.End)
	}
	return strings.Join(parts, ", ")
}

// ParseUsageRange parses a course-schedule time such as "0800 08:00AM - 08:50AM" or
// "08:00AM - 08:50AM" into a 24-hour range.
func ParseUsageRange(s string) (TimeRange, bool) {
	s = strings.TrimSpace(s)
	if usageCodePrefix.MatchString(s) {
		s = s[5:]
	}
	m := usageRangePattern.FindStringSubmatch(strings.ReplaceAll(s, " ", ""))
	if m == nil {
		return TimeRange{}, false
	}

	start, ok := to24h(m[1], m[2], m[3])
	if !ok {
		return TimeRange{}, false
	}
	end, ok := to24h(m[4], m[5], m[6])
	if !ok {
		return TimeRange{}, false
	}
	return TimeRange{Start: start, End: end}, true
}

func to24h(hh, mm, period string) (string, bool) {
	h, err := strconv.Atoi(hh)
	if err != nil || h < 1 || h > 12 {
		return "", false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m > 59 {
		return "", false
	}
	if period == "PM" && h != 12 {
		h += 12
	}
	if period == "AM" && h == 12 {
		h = 0
	}
	return fmt.Sprintf("%02d:%02d", h, m), true
}
