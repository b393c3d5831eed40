package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/Azahorscak/remitter-tui/internal/remitter"
)

// focusCount is the number of focusable controls: every field plus the
// save button.
const focusCount = remitter.FieldCount + 1

func newInputs() [remitter.FieldCount]textinput.Model {
	var inputs [remitter.FieldCount]textinput.Model
	for _, f := range remitter.Fields() {
		in := textinput.New()
		in.Placeholder = f.Placeholder()
		in.Width = 40
		inputs[f] = in
	}
	return inputs
}

// syncInputs mirrors the shadow record into the inputs and sets focus.
// Inputs are only focused while the form is editable.
func (m *Model) syncInputs() {
	for _, f := range remitter.Fields() {
		in := &m.inputs[f]
		if v := m.state.Profile.Get(f); in.Value() != v {
			in.SetValue(v)
		}
		if m.state.Editing && !m.state.Submitting && int(f) == m.focused {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// View renders the form.
func (m Model) View() string {
	if m.state.Mode() == remitter.ModeLoading {
		return fmt.Sprintf("\n  %s Loading bank details...\n", m.spinner.View())
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(1, 0, 1, 2)

	labelStyle := lipgloss.NewStyle().
		Bold(true).
		Width(26).
		Padding(0, 1, 0, 2)

	focusedLabelStyle := labelStyle.
		Foreground(lipgloss.Color("205"))

	readOnlyStyle := lipgloss.NewStyle().
		Faint(true).
		Padding(0, 1)

	missingStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Padding(0, 1)

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Padding(0, 0, 1, 2)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Padding(0, 0, 1, 2)

	buttonStyle := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.NormalBorder())

	focusedButtonStyle := buttonStyle.
		BorderForeground(lipgloss.Color("205")).
		Foreground(lipgloss.Color("205"))

	helpStyle := lipgloss.NewStyle().
		Faint(true).
		Padding(1, 0, 0, 2)

	var subtitle string
	switch m.state.Mode() {
	case remitter.ModeEditingNew:
		subtitle = "Add bank details"
	case remitter.ModeEditingExisting:
		subtitle = "Edit details"
	case remitter.ModeSubmitting:
		subtitle = "Saving"
	default:
		subtitle = "View"
	}
	header := headerStyle.Render(fmt.Sprintf("%s  %s", titleStyle.Render(" Bank Details "), subtitle))

	rows := []string{header}

	if m.state.Status != "" {
		style := errorStyle
		if m.state.StatusKind == remitter.StatusSuccess {
			style = successStyle
		}
		rows = append(rows, style.Render(sanitize(m.state.Status)))
	}

	if !m.state.Exists && !m.state.Editing {
		hint, help := "You haven't added your bank details yet. Press a to get started.", "a: add bank details | q: quit"
		if m.state.ReadOnly {
			hint, help = "No bank details are on record.", m.helpText()
		}
		rows = append(rows,
			lipgloss.NewStyle().Bold(true).Padding(0, 0, 0, 2).Render("No Bank Details Added"),
			lipgloss.NewStyle().Faint(true).Padding(0, 0, 0, 2).Render(hint),
		)
		rows = append(rows, helpStyle.Render(help))
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	for _, f := range remitter.Fields() {
		label := f.Label()
		if f.Required() {
			label += " *"
		}
		lbl := labelStyle
		if m.state.Editing && m.focused == int(f) {
			lbl = focusedLabelStyle
		}

		var value string
		if m.state.Editing {
			value = m.inputs[f].View()
		} else {
			value = readOnlyStyle.Render(sanitize(m.state.Profile.Get(f)))
		}

		row := lipgloss.JoinHorizontal(lipgloss.Top, lbl.Render(label), value)
		if m.state.IsMissing(f) {
			row = lipgloss.JoinHorizontal(lipgloss.Top, row, missingStyle.Render("required"))
		}
		rows = append(rows, row)
	}

	if m.state.Editing {
		var button string
		switch {
		case m.state.Submitting:
			button = fmt.Sprintf("  %s Saving...", m.spinner.View())
		default:
			text := "Save Details"
			if m.state.Exists {
				text = "Update Details"
			}
			style := buttonStyle
			if m.focused == remitter.FieldCount {
				style = focusedButtonStyle
			}
			button = lipgloss.NewStyle().Padding(1, 0, 0, 2).Render(style.Render(text))
		}
		rows = append(rows, button)
	}

	rows = append(rows, helpStyle.Render(m.helpText()))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) helpText() string {
	switch m.state.Mode() {
	case remitter.ModeSubmitting:
		return "Ctrl+C: quit"
	case remitter.ModeEditingExisting:
		return "Tab/Shift+Tab: navigate | Enter/Ctrl+S: save | Esc: cancel | Ctrl+C: quit"
	case remitter.ModeEditingNew:
		return "Tab/Shift+Tab: navigate | Enter/Ctrl+S: save | Ctrl+C: quit"
	}
	if m.state.ReadOnly {
		return "READ-ONLY | q: quit"
	}
	return "e: edit details | q: quit"
}
