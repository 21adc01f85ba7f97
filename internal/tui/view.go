package tui

import (
	"strconv"
	"strings"

	"datepick/internal/docs"
	"datepick/internal/widget"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// pickerWidth is seven two-cell columns with single spaces between them.
const pickerWidth = 20

func (m model) View() string {
	if m.showHelp {
		return m.helpView()
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("datepick"))
	b.WriteString("\n\n")

	nameW := 0
	for _, n := range m.names {
		nameW = max(nameW, xansi.StringWidth(n))
	}
	for i, name := range m.names {
		marker := "  "
		label := styleMuted().Render(padRight(name, nameW))
		if i == m.focus {
			marker = lipgloss.NewStyle().Foreground(colorAccent).Render("› ")
			label = lipgloss.NewStyle().Foreground(colorSurfaceFg).Bold(true).Render(padRight(name, nameW))
		}
		input := lipgloss.NewStyle().Background(colorInputBg).Render(m.inputs[i].View())
		b.WriteString(marker + label + "  " + input + "\n")
		if i == m.focus && m.picker.IsOpen() {
			indent := strings.Repeat(" ", nameW+4)
			for _, line := range strings.Split(renderPicker(m.doc, m.cursor), "\n") {
				b.WriteString(indent + line + "\n")
			}
		}
	}

	b.WriteString("\n")
	if m.status != "" {
		st := styleMuted()
		if m.statusErr {
			st = lipgloss.NewStyle().Foreground(colorError)
		}
		b.WriteString(st.Render(m.status) + "\n")
	}
	if m.picker.IsOpen() {
		b.WriteString(m.help.View(pickerKeys{m.keys}))
	} else {
		b.WriteString(m.help.View(formKeys{m.keys}))
	}
	return b.String()
}

func (m model) helpView() string {
	src, _ := docs.Get("keys")
	w := m.width
	if w <= 0 || w > 100 {
		w = 80
	}
	return renderMarkdown(src, w) + "\n\n" + styleMuted().Render("? or esc to close")
}

// renderPicker draws the mounted picker from the document tree. cursor is
// the highlighted day.
func renderPicker(doc *widget.Document, cursor int) string {
	if doc.Find(widget.ContainerID) == nil {
		return ""
	}
	arrow := lipgloss.NewStyle().Foreground(colorAccent)
	header := func(id string) string {
		text := ""
		if n := doc.Find(id); n != nil {
			text = n.Text
		}
		return center(arrow.Render("‹")+" "+text+" "+arrow.Render("›"), pickerWidth)
	}

	lines := []string{header(widget.YearLabelID), header(widget.MonthLabelID)}

	cursorStyle := lipgloss.NewStyle().Background(colorAccent).Foreground(colorAccentFg)
	dayStyle := lipgloss.NewStyle().Foreground(colorSurfaceFg)
	if table := doc.Find(widget.TableID); table != nil {
		for _, tr := range table.Children {
			cells := make([]string, 0, len(tr.Children))
			for _, td := range tr.Children {
				switch {
				case tr.HasClass("weekT"):
					cells = append(cells, styleMuted().Render(padLeft(td.Text, 2)))
				case td.HasClass("date"):
					v, _ := td.Attr("value")
					s := padLeft(td.Text, 2)
					if day, err := strconv.Atoi(v); err == nil && day == cursor {
						cells = append(cells, cursorStyle.Render(s))
					} else {
						cells = append(cells, dayStyle.Render(s))
					}
				default:
					cells = append(cells, "  ")
				}
			}
			lines = append(lines, padRight(strings.Join(cells, " "), pickerWidth))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func padLeft(s string, w int) string {
	if n := xansi.StringWidth(s); n < w {
		return strings.Repeat(" ", w-n) + s
	}
	return s
}

func padRight(s string, w int) string {
	if n := xansi.StringWidth(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func center(s string, w int) string {
	n := xansi.StringWidth(s)
	if n >= w {
		return s
	}
	left := (w - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-n-left)
}
