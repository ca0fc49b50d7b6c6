package payroll

import (
	"fmt"
	"time"
)

// =============================================================================
// CALENDAR DATE - Day value used as the attendance key
// =============================================================================

// CalendarDate is a plain year/month/day triple. It is comparable and can be
// used directly inside map keys.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{Year: year, Month: month, Day: day}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseCalendarDate parses YYYY-MM-DD and rejects impossible days.
func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d CalendarDate) String() string { return d.Time().Format(dateLayout) }

func (d CalendarDate) Before(other CalendarDate) bool { return d.Time().Before(other.Time()) }

// =============================================================================
// PAY PERIOD - 16th of the previous month through the 15th of this month
// =============================================================================

const (
	periodStartDay = 16
	periodEndDay   = 15
)

// DaysIn returns the number of days in month/year, leap years included.
func DaysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// previousMonth wraps January back to December of the previous year.
func previousMonth(month time.Month, year int) (time.Month, int) {
	if month == time.January {
		return time.December, year - 1
	}
	return month - 1, year
}

func validMonth(month time.Month) bool {
	return month >= time.January && month <= time.December
}

// ComputePeriod returns the ordered dates of the pay period that ends on the
// 15th of month/year. The result always holds the tail of the previous month
// (16th onwards) followed by the 1st to the 15th of month.
func ComputePeriod(month time.Month, year int) ([]CalendarDate, error) {
	if !validMonth(month) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMonth, int(month))
	}

	prevMonth, prevYear := previousMonth(month, year)
	last := DaysIn(prevMonth, prevYear)

	dates := make([]CalendarDate, 0, last-periodStartDay+1+periodEndDay)
	for day := periodStartDay; day <= last; day++ {
		dates = append(dates, CalendarDate{Year: prevYear, Month: prevMonth, Day: day})
	}
	for day := 1; day <= periodEndDay; day++ {
		dates = append(dates, CalendarDate{Year: year, Month: month, Day: day})
	}
	return dates, nil
}

// Bounds returns the first and last day of the pay period for month/year.
func Bounds(month time.Month, year int) (start, end CalendarDate, err error) {
	if !validMonth(month) {
		return CalendarDate{}, CalendarDate{}, fmt.Errorf("%w: %d", ErrInvalidMonth, int(month))
	}
	prevMonth, prevYear := previousMonth(month, year)
	return CalendarDate{Year: prevYear, Month: prevMonth, Day: periodStartDay},
		CalendarDate{Year: year, Month: month, Day: periodEndDay}, nil
}

// PeriodFor returns the reference month/year a view opened at t starts on.
// The form opens on the current calendar month.
func PeriodFor(t time.Time) (time.Month, int) {
	return t.Month(), t.Year()
}
