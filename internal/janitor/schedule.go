package janitor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// parser accepts both 5-field and 6-field (with seconds) cron specs.
var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

var reHHMM = regexp.MustCompile(`^\s*(\d{1,3}):(\d{2})\s*$`)

// ParseSchedule normalizes a sweep schedule into a cron spec.
//
// Supported forms:
//   - Cron: "*/30 * * * *", "@hourly", "@every 45m"
//   - Interval duration: "45m", "2h30m"
//   - Interval HH:MM: "02:30" (2 hours 30 minutes)
func ParseSchedule(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("schedule required")
	}

	spec := s
	switch {
	case strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@"):
	case reHHMM.MatchString(s):
		d, err := parseHHMM(s)
		if err != nil {
			return "", err
		}
		spec = "@every " + d.String()
	default:
		d, err := time.ParseDuration(s)
		if err != nil {
			return "", fmt.Errorf(
				"invalid schedule %q (use cron like '*/30 * * * *', HH:MM like '02:30', or duration like '45m')", raw)
		}
		if d <= 0 {
			return "", fmt.Errorf("interval must be > 0")
		}
		spec = "@every " + d.String()
	}

	if _, err := parser.Parse(spec); err != nil {
		return "", fmt.Errorf("invalid schedule %q: %w", raw, err)
	}
	return spec, nil
}

func parseHHMM(v string) (time.Duration, error) {
	m := reHHMM.FindStringSubmatch(v)
	if len(m) != 3 {
		return 0, fmt.Errorf("invalid HH:MM %q", v)
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if mm > 59 {
		return 0, fmt.Errorf("invalid minutes in %q", v)
	}
	d := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
	if d <= 0 {
		return 0, fmt.Errorf("interval must be > 0")
	}
	return d, nil
}
