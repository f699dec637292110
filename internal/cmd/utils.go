package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hargabyte/ctxpack/internal/facts"
)

// Shared utility functions for command implementations

// parseLineRange parses a --lines value: "12-18", or "12" for a single line.
func parseLineRange(s string) (start, end int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("%w: --lines is required (e.g. --lines 10-20)", facts.ErrInvalidInput)
	}

	from, to, found := strings.Cut(s, "-")
	if !found {
		to = from
	}
	start, err = strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad start line in %q", facts.ErrInvalidInput, s)
	}
	end, err = strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad end line in %q", facts.ErrInvalidInput, s)
	}
	if start < 1 || end < start {
		return 0, 0, fmt.Errorf("%w: invalid line range %d-%d", facts.ErrInvalidInput, start, end)
	}
	return start, end, nil
}
