// Package summary implements the monthly summary engine: timezone-aware
// month-range resolution, single-pass transaction aggregation and the
// service tying them to the persistence ports.
package summary

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"bilancio/internal/core"
)

// ErrBadTimezone wraps core.ErrInvalidTimezone for callers that only see
// this package.
var ErrBadTimezone = core.ErrInvalidTimezone

// MonthLabelPattern matches the YYYY-MM month labels accepted by the API.
var MonthLabelPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ResolveMonthRange computes the half-open UTC range [Start, End) covering
// one calendar month as experienced in tz. An empty label means the current
// month of now as seen in tz, so the boundary depends on the user's
// timezone, not the server's.
//
// Both endpoints are built as wall-clock "first of month, 00:00" instants in
// tz and converted to UTC with the offset the IANA database assigns to that
// wall-clock moment. Around a DST transition this is the Go runtime's
// canonical normalization, which is well defined for every input.
func ResolveMonthRange(label, tz string, now time.Time) (core.MonthRange, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return core.MonthRange{}, fmt.Errorf("%w: %q", ErrBadTimezone, tz)
	}

	var year, month int
	if label == "" {
		local := now.In(loc)
		year, month = local.Year(), int(local.Month())
	} else {
		// Labels are validated at the HTTP boundary; this parse only
		// splits the two fields.
		year, _ = strconv.Atoi(label[:4])
		month, _ = strconv.Atoi(label[5:7])
	}

	// time.Date normalizes month 13 to January of the next year, which
	// handles the December rollover.
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, loc)

	if label == "" {
		label = fmt.Sprintf("%04d-%02d", year, month)
	}

	return core.MonthRange{
		Start: start.UTC(),
		End:   end.UTC(),
		Label: label,
	}, nil
}
