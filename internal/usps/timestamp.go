package usps

import (
	"strings"
	"time"

	"myusps/pkg/htmlutil"
)

var timestampLayouts = []string{
	"January 2, 2006 3:04 PM",
	"January 2, 2006, 3:04 PM",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006, 3:04 PM",
	"Monday, January 2, 2006 3:04 PM",
	"Monday, January 2, 2006, 3:04 PM",
	"01/02/2006 3:04 PM",
	"January 2, 2006 15:04",
	"January 2, 2006",
	"Jan 2, 2006",
	"Monday, January 2, 2006",
	"01/02/2006",
}

// parseTimestamp reads the formats the dashboard uses for scan times,
// ex. "September 7, 2017 at 7:14 pm". ok is false when nothing matched.
func parseTimestamp(text string, loc *time.Location) (time.Time, bool) {
	text = htmlutil.CollapseWhitespace(text)
	if text == "" {
		return time.Time{}, false
	}
	// month and weekday names match case insensitively, AM/PM does not
	text = strings.ToUpper(text)
	text = strings.ReplaceAll(text, " AT ", " ")
	text = strings.ReplaceAll(text, "A.M.", "AM")
	text = strings.ReplaceAll(text, "P.M.", "PM")

	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, text, loc)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
