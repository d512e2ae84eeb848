package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lotwatch/internal/funpay"
)

func (m Model) viewConvo() string {
	var b strings.Builder

	b.WriteString(" " + titleStyle.Render("Thread: ") + selectedStyle.Render(m.openName) + "\n")
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", maxInt(m.width-2, 4))) + "\n")

	chrome := 5 // header, separator, compose, status, help
	viewport := m.height - chrome
	if viewport < 2 {
		viewport = 2
	}

	if len(m.messages) == 0 {
		for i := 0; i < viewport; i++ {
			b.WriteByte('\n')
		}
		b.WriteString(" " + dimStyle.Render("no messages yet") + "\n")
	} else {
		var lines []string
		lastDay := ""
		for _, msg := range m.messages {
			if msg.Day != "" && msg.Day != lastDay {
				lastDay = msg.Day
				lines = append(lines, " "+metaStyle.Render("── "+msg.Day+" ──"))
			}
			lines = append(lines, strings.Split(m.renderMessage(msg), "\n")...)
		}

		start := len(lines) - viewport
		if start < 0 {
			start = 0
		}
		visible := lines[start:]
		for i := len(visible); i < viewport; i++ {
			b.WriteByte('\n')
		}
		for _, line := range visible {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	b.WriteString(" " + selfStyle.Render("you") + metaStyle.Render(" · ") + m.compose + accentStyle.Render("█") + "\n")
	if m.status != "" {
		b.WriteString(" " + errStyle.Render(m.status) + "\n")
	}
	b.WriteString(" " + metaStyle.Render("enter send · esc back") + "\n")
	return b.String()
}

func (m Model) renderMessage(msg funpay.Message) string {
	timePart := metaStyle.Render(msg.Time)
	namePart := selectedStyle.Render(msg.Author)
	sep := metaStyle.Render(" · ")

	bodyWidth := m.width - 24
	if bodyWidth < 20 {
		bodyWidth = 20
	}
	wrapped := lipgloss.NewStyle().Width(bodyWidth).Render(msg.Text)
	lines := strings.Split(wrapped, "\n")

	out := " " + timePart + "  " + namePart + sep + lines[0]
	if len(lines) > 1 {
		indent := strings.Repeat(" ", 10)
		for _, line := range lines[1:] {
			out += "\n" + indent + line
		}
	}
	return out
}
