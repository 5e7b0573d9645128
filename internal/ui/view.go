package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"aptodo/internal/output"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("aptodo") + "\n\n")

	var bindings []key.Binding
	switch {
	case !m.snap.Connected():
		b.WriteString("No wallet connected.\n\n")
		if m.connecting {
			b.WriteString(m.spinner.View() + " connecting\n")
		} else {
			b.WriteString(dimStyle.Render("Run `aptodo connect` to create or import a wallet, then press c.") + "\n")
		}
		bindings = []key.Binding{m.keys.Connect, m.keys.Quit}

	case !m.snap.HasList():
		m.writeAccount(&b)
		b.WriteString("This account has no todo list yet.\n\n")
		b.WriteString(dimStyle.Render("Press enter to create one.") + "\n")
		bindings = []key.Binding{m.keys.Submit, m.keys.Refresh, m.keys.Copy, m.keys.Disconnect, m.keys.Quit}

	default:
		m.writeAccount(&b)
		b.WriteString(m.input.View() + "\n\n")
		m.writeTasks(&b)
		if m.focus == focusInput {
			bindings = []key.Binding{m.keys.Submit, m.keys.Focus}
		} else {
			bindings = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Complete, m.keys.Refresh, m.keys.Copy, m.keys.Focus, m.keys.Disconnect, m.keys.Quit}
		}
	}

	b.WriteString("\n")
	m.writeStatus(&b)
	b.WriteString(m.help.View(helpKeys(bindings)) + "\n")
	return b.String()
}

func (m *Model) writeAccount(b *strings.Builder) {
	line := "Account " + output.ShortAddress(m.snap.Account)
	if m.explorer != "" {
		line += dimStyle.Render("  " + m.explorer + "/account/" + m.snap.Account)
	}
	b.WriteString(line + "\n\n")
}

func (m *Model) writeTasks(b *strings.Builder) {
	tasks := m.snap.List.Tasks
	if len(tasks) == 0 {
		b.WriteString(dimStyle.Render("  "+output.NoTasksMessage) + "\n")
		return
	}
	for i, t := range tasks {
		prefix := "  "
		if m.focus == focusList && i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		line := fmt.Sprintf("%s %s", output.Checkbox(t.Completed), output.NormalizeContent(t.Content))
		if t.Completed {
			line = doneStyle.Render(line)
		}
		fmt.Fprintf(b, "%s%4s  %s  %s\n", prefix, t.TaskID, line, dimStyle.Render(output.ShortAddress(t.Address)))
	}
}

func (m *Model) writeStatus(b *strings.Builder) {
	switch {
	case m.snap.Pending:
		b.WriteString(m.spinner.View() + " " + m.snap.Phase.String() + "\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	case m.status != "":
		b.WriteString(okStyle.Render(m.status) + "\n")
	default:
		b.WriteString("\n")
	}
}
