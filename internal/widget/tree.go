package widget

import (
	"strconv"

	"datepick/internal/calendar"
)

// Element ids and classes of the rendered picker. Stylesheets and tests rely
// on these names.
const (
	ContainerID  = "calendarMain"
	YearLabelID  = "calendarYear"
	MonthLabelID = "calendarMonth"
	TableID      = "fillDate"

	panelClass = "main"
)

func shell(g calendar.Grid) *Node {
	container := &Node{
		Tag:    "div",
		ID:     ContainerID,
		Action: BackdropMsg{},
		Children: []*Node{
			el("div", panelClass,
				el("div", "yearDiv",
					arrow("left", "Previous year", calendar.NavPrevYear),
					yearLabel(g.Year),
					arrow("right", "Next year", calendar.NavNextYear),
				),
				el("div", "monthDiv",
					arrow("left", "Previous month", calendar.NavPrevMonth),
					monthLabel(g.MonthName),
					arrow("right", "Next month", calendar.NavNextMonth),
				),
				el("div", "dateMain", emptyTable()),
			),
		},
	}
	return container
}

func arrow(side, label string, nav calendar.Nav) *Node {
	text := "‹"
	if side == "right" {
		text = "›"
	}
	return &Node{
		Tag:    "span",
		Class:  side,
		Attrs:  []Attr{{Key: "role", Val: "button"}, {Key: "aria-label", Val: label}},
		Text:   text,
		Action: NavMsg{Nav: nav},
	}
}

func yearLabel(year int) *Node {
	return &Node{Tag: "span", ID: YearLabelID, Class: "year", Text: strconv.Itoa(year)}
}

func monthLabel(name string) *Node {
	return &Node{Tag: "span", ID: MonthLabelID, Class: "month", Text: name}
}

func weekHeader() *Node {
	tr := el("tr", "weekT")
	for i, s := range calendar.WeekdayInitials {
		tr.Children = append(tr.Children, &Node{
			Tag:   "td",
			Class: "wDay",
			Attrs: []Attr{{Key: "value", Val: strconv.Itoa(i)}},
			Text:  s,
		})
	}
	return tr
}

// emptyTable is the date table with its header and week rows but no cells.
func emptyTable() *Node {
	t := &Node{Tag: "table", ID: TableID, Children: []*Node{weekHeader()}}
	for i := 1; i <= calendar.MinRows; i++ {
		t.Children = append(t.Children, el("tr", "w"+strconv.Itoa(i)))
	}
	return t
}

func dateTable(g calendar.Grid) *Node {
	t := &Node{Tag: "table", ID: TableID, Children: []*Node{weekHeader()}}
	for i, row := range g.Rows {
		tr := el("tr", "w"+strconv.Itoa(i+1))
		for _, c := range row {
			if c.Blank {
				tr.Children = append(tr.Children, &Node{Tag: "td", Text: "\u00a0"})
				continue
			}
			day := strconv.Itoa(c.Day)
			tr.Children = append(tr.Children, &Node{
				Tag:    "td",
				Class:  "date",
				Attrs:  []Attr{{Key: "value", Val: day}},
				Text:   day,
				Action: SelectMsg{Day: c.Day},
			})
		}
		t.Children = append(t.Children, tr)
	}
	return t
}
