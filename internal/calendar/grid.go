package calendar

import (
	"strconv"
	"strings"
	"time"
)

// MinRows is the number of week rows a grid always carries (w1..w5).
const MinRows = 5

// WeekdayInitials are the column headers of a Sunday-first grid.
var WeekdayInitials = [7]string{"S", "M", "T", "W", "T", "F", "S"}

// Cell is one slot of a week row. Blank cells only appear at the start of
// the first row and carry no day.
type Cell struct {
	Blank   bool         `json:"blank,omitempty"`
	Day     int          `json:"day,omitempty"`
	Weekday time.Weekday `json:"weekday"`
}

// Grid is the Sunday-first layout of one month.
type Grid struct {
	Month     int         `json:"month"` // 0-based
	Year      int         `json:"year"`
	MonthName string      `json:"monthName"`
	Padding   int         `json:"padding"`
	Days      []time.Time `json:"-"`
	Rows      [][]Cell    `json:"rows"`
}

// Layout maps the days of (month, year) onto week rows. month is 0-based;
// values outside 0..11 normalize the way time.Date does.
func Layout(month, year int) Grid {
	d := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	month, year = int(d.Month())-1, d.Year()

	var days []time.Time
	for int(d.Month())-1 == month {
		days = append(days, d)
		d = d.AddDate(0, 0, 1)
	}

	rows := make([][]Cell, MinRows)
	row := 0
	for _, day := range days {
		if row == len(rows) {
			rows = append(rows, nil)
		}
		rows[row] = append(rows[row], Cell{Day: day.Day(), Weekday: day.Weekday()})
		if day.Weekday() == time.Saturday {
			row++
		}
	}

	padding := 7 - len(rows[0])
	if padding > 0 {
		lead := make([]Cell, 0, 7)
		for i := 0; i < padding; i++ {
			lead = append(lead, Cell{Blank: true, Weekday: time.Weekday(i)})
		}
		rows[0] = append(lead, rows[0]...)
	}

	return Grid{
		Month:     month,
		Year:      year,
		MonthName: time.Month(month + 1).String(),
		Padding:   padding,
		Days:      days,
		Rows:      rows,
	}
}

// DaysIn returns the length of a month (0-based).
func DaysIn(month, year int) int {
	// Day 0 of next month is last day of this month.
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// DayCount is the number of non-blank cells.
func (g Grid) DayCount() int {
	n := 0
	for _, r := range g.Rows {
		for _, c := range r {
			if !c.Blank {
				n++
			}
		}
	}
	return n
}

// Cell returns the cell at (row, col) and whether that slot is populated.
func (g Grid) Cell(row, col int) (Cell, bool) {
	if row < 0 || row >= len(g.Rows) || col < 0 || col >= len(g.Rows[row]) {
		return Cell{}, false
	}
	return g.Rows[row][col], true
}

// Position finds the row/column of a day of the month.
func (g Grid) Position(day int) (row, col int, ok bool) {
	for r, cells := range g.Rows {
		for c, cell := range cells {
			if !cell.Blank && cell.Day == day {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// Contains reports whether day is a day of the displayed month.
func (g Grid) Contains(day int) bool {
	return day >= 1 && day <= len(g.Days)
}

// Text renders the grid as a plain month table:
//
//	   March 2024
//	 S  M  T  W  T  F  S
//	                1  2
//	 3  4  5 ...
func (g Grid) Text() string {
	var b strings.Builder
	title := g.MonthName + " " + strconv.Itoa(g.Year)
	const width = 20
	if pad := (width - len(title)) / 2; pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(title)
	b.WriteByte('\n')
	b.WriteString(" " + strings.Join(WeekdayInitials[:], "  "))
	b.WriteByte('\n')
	for _, r := range g.Rows {
		if len(r) == 0 {
			continue
		}
		cols := make([]string, 0, len(r))
		for _, c := range r {
			if c.Blank {
				cols = append(cols, "  ")
				continue
			}
			cols = append(cols, pad2(c.Day))
		}
		b.WriteString(strings.TrimRight(strings.Join(cols, " "), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

func pad2(n int) string {
	if n < 10 {
		return " " + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
