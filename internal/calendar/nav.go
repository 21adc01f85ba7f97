package calendar

import (
	"fmt"
	"strings"
)

// Nav is one of the four header controls.
type Nav int

const (
	NavPrevYear Nav = iota
	NavNextYear
	NavPrevMonth
	NavNextMonth
)

var navNames = map[Nav]string{
	NavPrevYear:  "prev-year",
	NavNextYear:  "next-year",
	NavPrevMonth: "prev-month",
	NavNextMonth: "next-month",
}

func (n Nav) String() string {
	if s, ok := navNames[n]; ok {
		return s
	}
	return fmt.Sprintf("nav(%d)", int(n))
}

// ParseNav accepts the names produced by Nav.String.
func ParseNav(s string) (Nav, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for n, name := range navNames {
		if name == s {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unknown navigation %q (expected prev-year|next-year|prev-month|next-month)", s)
}

// WrapPolicy decides what happens to the year when the month wraps around.
type WrapPolicy int

const (
	// WrapCarryYear moves to December of the previous year / January of the
	// next year.
	WrapCarryYear WrapPolicy = iota
	// WrapKeepYear wraps the month but leaves the year alone (legacy picker
	// behavior).
	WrapKeepYear
)

func (p WrapPolicy) String() string {
	if p == WrapKeepYear {
		return "keep-year"
	}
	return "carry-year"
}

// PolicyFor maps the carry_year config switch to a policy.
func PolicyFor(carryYear bool) WrapPolicy {
	if carryYear {
		return WrapCarryYear
	}
	return WrapKeepYear
}

// Step applies one navigation to a 0-based (month, year) pair.
func (p WrapPolicy) Step(nav Nav, month, year int) (int, int) {
	switch nav {
	case NavPrevYear:
		return month, year - 1
	case NavNextYear:
		return month, year + 1
	case NavPrevMonth:
		if month < 1 {
			if p == WrapCarryYear {
				year--
			}
			return 11, year
		}
		return month - 1, year
	case NavNextMonth:
		if month > 10 {
			if p == WrapCarryYear {
				year++
			}
			return 0, year
		}
		return month + 1, year
	}
	return month, year
}
