package citation

import (
	"strconv"
	"strings"
	"time"
)

// date is a possibly partial calendar date.
type date struct {
	year  int
	month time.Month
	day   int
}

func parseDate(s string) (date, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		d := date{year: t.Year()}
		if len(layout) >= 7 {
			d.month = t.Month()
		}
		if len(layout) == 10 {
			d.day = t.Day()
		}
		return d, true
	}
	return date{}, false
}

var mlaMonths = [...]string{"", "Jan.", "Feb.", "Mar.", "Apr.", "May", "June", "July", "Aug.", "Sept.", "Oct.", "Nov.", "Dec."}

// apa renders "2020", "2020, March" or "2020, March 5"; "n.d." when unknown.
func (d date) apa() string {
	if d.year == 0 {
		return "n.d."
	}
	return join(", ", strconv.Itoa(d.year), d.monthDay())
}

// mla renders "2020", "Mar. 2020" or "5 Mar. 2020".
func (d date) mla() string {
	if d.year == 0 {
		return ""
	}
	var day, month string
	if d.day > 0 {
		day = strconv.Itoa(d.day)
	}
	if d.month > 0 {
		month = mlaMonths[d.month]
	}
	return join(" ", day, month, strconv.Itoa(d.year))
}

// chicago renders "2020", "March 2020" or "March 5, 2020".
func (d date) chicago() string {
	if d.year == 0 {
		return ""
	}
	if d.month == 0 {
		return strconv.Itoa(d.year)
	}
	if d.day == 0 {
		return d.month.String() + " " + strconv.Itoa(d.year)
	}
	return d.monthDay() + ", " + strconv.Itoa(d.year)
}

func (d date) monthDay() string {
	if d.month == 0 {
		return ""
	}
	if d.day == 0 {
		return d.month.String()
	}
	return d.month.String() + " " + strconv.Itoa(d.day)
}

func (d date) yearString() string {
	if d.year == 0 {
		return ""
	}
	return strconv.Itoa(d.year)
}
