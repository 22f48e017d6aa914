package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// ErrWizardCancelled is returned when the user aborts the wizard.
var ErrWizardCancelled = errors.New("wizard cancelled")

// workItemField indexes into the wizard's input list.
const (
	fieldDeveloper = iota
	fieldWorkTeam
	fieldUserStory
	fieldCount
)

// workItemModel is the bubbletea model for the work-item form.
type workItemModel struct {
	inputs    [fieldCount]textinput.Model
	focus     int
	done      bool
	cancelled bool
	err       string
}

func newWorkItemModel(defaults mdmerge.WorkItem) workItemModel {
	var m workItemModel

	labels := [fieldCount]string{"Developer name", "Work team", "User story"}
	values := [fieldCount]string{defaults.Developer, defaults.WorkTeam, defaults.UserStory}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = labels[i]
		ti.CharLimit = 128
		ti.Width = 40
		ti.SetValue(values[i])
		m.inputs[i] = ti
	}
	m.inputs[fieldDeveloper].Focus()
	return m
}

func (m workItemModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m workItemModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if m.focus == fieldCount-1 {
				if err := m.validate(); err != nil {
					m.err = err.Error()
					return m, nil
				}
				m.done = true
				return m, tea.Quit
			}
			m.advance(1)
			return m, nil
		case "tab", "down":
			m.advance(1)
			return m, nil
		case "shift+tab", "up":
			m.advance(-1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *workItemModel) advance(delta int) {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + fieldCount) % fieldCount
	m.inputs[m.focus].Focus()
}

func (m workItemModel) validate() error {
	if strings.TrimSpace(m.inputs[fieldDeveloper].Value()) == "" {
		return errors.New("developer name is required")
	}
	if strings.TrimSpace(m.inputs[fieldWorkTeam].Value()) == "" {
		return errors.New("work team is required")
	}
	return nil
}

func (m workItemModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Work item"))
	b.WriteString("\n")

	labels := [fieldCount]string{"Developer", "Team", "Story"}
	for i, input := range m.inputs {
		style := LabelStyle
		if i == m.focus {
			style = FocusedLabelStyle
		}
		fmt.Fprintf(&b, "%s %s\n", style.Render(fmt.Sprintf("%-9s", labels[i])), input.View())
	}

	if m.err != "" {
		b.WriteString(ErrorStyle.Render(m.err))
		b.WriteString("\n")
	}
	b.WriteString(HelpStyle.Render("tab: next field · enter: confirm · esc: cancel"))
	b.WriteString("\n")
	return b.String()
}

// PromptWorkItem runs the work-item wizard and returns the completed
// item. Defaults pre-fill the fields. A generated work-log name is
// attached to the result.
func PromptWorkItem(defaults mdmerge.WorkItem) (mdmerge.WorkItem, error) {
	program := tea.NewProgram(newWorkItemModel(defaults))
	final, err := program.Run()
	if err != nil {
		return mdmerge.WorkItem{}, fmt.Errorf("wizard failed: %w", err)
	}

	m := final.(workItemModel)
	if m.cancelled || !m.done {
		return mdmerge.WorkItem{}, ErrWizardCancelled
	}

	item := mdmerge.WorkItem{
		LogName:   defaults.LogName,
		Developer: strings.TrimSpace(m.inputs[fieldDeveloper].Value()),
		WorkTeam:  strings.TrimSpace(m.inputs[fieldWorkTeam].Value()),
		UserStory: strings.TrimSpace(m.inputs[fieldUserStory].Value()),
	}
	if item.LogName == "" {
		item.LogName = mdmerge.NewWorkLogName()
	}
	return item, nil
}
