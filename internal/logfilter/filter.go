// Package logfilter provides grep-style filtering for pod log output:
// include and exclude patterns (literal or regex) plus parsing of "since"
// expressions into the forms the Kubernetes log API accepts.
package logfilter

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FilterOptions selects which log lines survive filtering. Include patterns
// behave like grep, exclude patterns like grep -v; exclusion is applied after
// inclusion.
type FilterOptions struct {
	GrepInclude []string
	GrepExclude []string

	// UseRegex compiles the patterns as regular expressions instead of
	// matching them as literal substrings.
	UseRegex bool
}

// matcher reports whether a line matches any of a pattern set.
type matcher func(line string) bool

func compileMatcher(patterns []string, useRegex bool) (matcher, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	if !useRegex {
		return func(line string) bool {
			for _, pattern := range patterns {
				if strings.Contains(line, pattern) {
					return true
				}
			}
			return false
		}, nil
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}

	return func(line string) bool {
		for _, re := range compiled {
			if re.MatchString(line) {
				return true
			}
		}
		return false
	}, nil
}

// FilterLogs applies the options to raw log content line by line and returns
// the surviving lines joined back together. Trailing empty lines are dropped.
func FilterLogs(content string, opts *FilterOptions) (string, error) {
	if opts == nil {
		return content, nil
	}

	include, err := compileMatcher(opts.GrepInclude, opts.UseRegex)
	if err != nil {
		return "", fmt.Errorf("include: %w", err)
	}
	exclude, err := compileMatcher(opts.GrepExclude, opts.UseRegex)
	if err != nil {
		return "", fmt.Errorf("exclude: %w", err)
	}

	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		if line == "" && len(kept) > 0 {
			continue
		}
		if include != nil && !include(line) {
			continue
		}
		if exclude != nil && exclude(line) {
			continue
		}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n"), nil
}

// CountMatchingLines reports how many lines survive the filter.
func CountMatchingLines(content string, opts *FilterOptions) (int, error) {
	filtered, err := FilterLogs(content, opts)
	if err != nil {
		return 0, err
	}
	if filtered == "" {
		return 0, nil
	}
	return len(strings.Split(filtered, "\n")), nil
}

// ValidateFilterOptions checks that regex patterns compile before any log
// content is fetched, so bad patterns fail fast.
func ValidateFilterOptions(opts *FilterOptions) error {
	if opts == nil {
		return nil
	}
	if _, err := compileMatcher(opts.GrepInclude, opts.UseRegex); err != nil {
		return fmt.Errorf("include: %w", err)
	}
	if _, err := compileMatcher(opts.GrepExclude, opts.UseRegex); err != nil {
		return fmt.Errorf("exclude: %w", err)
	}
	return nil
}

var absoluteFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseSinceTime parses a since expression into either an absolute time or a
// relative duration in seconds. Durations use Go syntax extended with a day
// suffix ("5m", "1h", "2h30m", "1d"); absolute times accept RFC3339 and a few
// relaxed date formats. Exactly one of the returned pointers is non-nil for
// non-empty input.
func ParseSinceTime(since string) (*time.Time, *int64, error) {
	if since == "" {
		return nil, nil, nil
	}

	if duration, err := parseDuration(since); err == nil {
		seconds := int64(duration.Seconds())
		return nil, &seconds, nil
	}

	for _, format := range absoluteFormats {
		if t, err := time.Parse(format, since); err == nil {
			return &t, nil, nil
		}
	}

	return nil, nil, fmt.Errorf("invalid since time format: %s", since)
}

// parseDuration is time.ParseDuration plus a "d" suffix for days.
func parseDuration(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		if d, err := time.ParseDuration(days + "h"); err == nil {
			return d * 24, nil
		}
	}
	return time.ParseDuration(s)
}
