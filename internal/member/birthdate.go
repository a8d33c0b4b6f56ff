package member

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ymdRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dmyRe = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
)

// NormalizeBirthDate accepts YYYY-MM-DD or DD/MM/YYYY. An empty value or
// the form placeholder "dd/mm/yyyy" means no birth date (nil, nil).
func NormalizeBirthDate(raw string) (*time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "dd/mm/yyyy") {
		return nil, nil
	}

	var y, m, d int
	if p := ymdRe.FindStringSubmatch(s); p != nil {
		y, m, d = atoi(p[1]), atoi(p[2]), atoi(p[3])
	} else if p := dmyRe.FindStringSubmatch(s); p != nil {
		d, m, y = atoi(p[1]), atoi(p[2]), atoi(p[3])
	} else {
		return nil, ErrInvalid("tgl_lahir: expected YYYY-MM-DD or DD/MM/YYYY")
	}

	if !validDate(y, m, d) {
		return nil, ErrInvalid("tgl_lahir: not a calendar date")
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t, nil
}

// validDate rejects what time.Date would silently roll over (31/02).
func validDate(y, m, d int) bool {
	if y < 1 || m < 1 || m > 12 || d < 1 {
		return false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return t.Year() == y && int(t.Month()) == m && t.Day() == d
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
