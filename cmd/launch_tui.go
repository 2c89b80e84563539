package cmd

import (
	"fmt"
	"strings"

	"mc-launcher/session"
	"mc-launcher/ui"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const visibleLogLines = 8

// LaunchProgressMsg carries one session update into the view; done marks the
// end of the launch.
type LaunchProgressMsg struct {
	Update session.Update
	done   bool
}

// LaunchModel controls the UI for the launch command
type LaunchModel struct {
	spinner      spinner.Model
	bar          progress.Model
	progressChan chan LaunchProgressMsg

	label   string
	status  string
	percent int
	logs    []string
	state   session.State
	done    bool
}

func initialLaunchModel(label string) LaunchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return LaunchModel{
		spinner:      s,
		bar:          progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		progressChan: make(chan LaunchProgressMsg, 100),
		label:        label,
		status:       "Initializing...",
		logs:         []string{},
	}
}

func (m LaunchModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForActivity(),
	)
}

func (m LaunchModel) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.progressChan
		if !ok {
			return LaunchProgressMsg{done: true}
		}
		return msg
	}
}

func (m LaunchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.done {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case LaunchProgressMsg:
		if msg.done {
			m.done = true
			if m.state != session.Running {
				m.status = "Launch aborted"
			}
			return m, tea.Quit
		}
		m.apply(msg.Update)
		return m, m.waitForActivity()
	}

	return m, nil
}

func (m *LaunchModel) apply(u session.Update) {
	m.state = u.State
	if u.Status != "" {
		m.status = u.Status
	}
	m.percent = u.Progress
	if u.Log != nil {
		line := fmt.Sprintf("%s %s %s", u.Log.Time.Format("15:04:05"), ui.Level(string(u.Log.Level)), u.Log.Message)
		m.logs = append(m.logs, line)
	}
	if u.State == session.Running {
		m.percent = 100
	}
}

func (m LaunchModel) View() string {
	var symbol string
	switch {
	case m.state == session.Running:
		symbol = ui.Success.Render("✓")
	case m.done:
		symbol = ui.Failure.Render("✗")
	default:
		symbol = m.spinner.View()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n %s\n\n", ui.Title.Render(m.label))
	fmt.Fprintf(&b, " %s %s\n", symbol, m.status)
	fmt.Fprintf(&b, " %s\n\n", m.bar.ViewAs(float64(m.percent)/100))

	start := 0
	if len(m.logs) > visibleLogLines {
		start = len(m.logs) - visibleLogLines
	}
	for _, line := range m.logs[start:] {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	if !m.done {
		b.WriteString("\n" + ui.Muted.Render("q: abort") + "\n")
	}
	return b.String()
}
