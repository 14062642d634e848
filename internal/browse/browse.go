// Package browse is a terminal viewer over the latest run's accepted jobs.
// It reads the results cache only; no network calls.
package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikmel/jobwire/internal/model"
	"github.com/nikmel/jobwire/internal/pipeline"
)

// Lines per job item in the list view (title + subtitle + blank separator).
const jobItemHeight = 3

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(1, 0, 0, 2)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	jobTitleStyle = lipgloss.NewStyle().
			Bold(true)

	jobSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(0, 0, 0, 2)
)

type browseModel struct {
	generatedAt time.Time
	jobs        []model.Job
	vp          viewport.Model
	cursor      int
	width       int
	height      int
	ready       bool
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp = viewport.New(msg.Width-4, msg.Height-6)
		m.ready = true

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.jobs)-1 {
				m.cursor++
			}
		case "o", "enter":
			if m.cursor < len(m.jobs) {
				openURL(m.jobs[m.cursor].URL)
			}
		}
	}

	if m.ready {
		m.vp.SetContent(m.renderList())
		m.scrollToCursor()
	}
	return m, nil
}

func (m *browseModel) scrollToCursor() {
	top := m.cursor * jobItemHeight
	if top < m.vp.YOffset {
		m.vp.SetYOffset(top)
	}
	bottom := top + jobItemHeight
	if bottom > m.vp.YOffset+m.vp.Height {
		m.vp.SetYOffset(bottom - m.vp.Height)
	}
}

func (m browseModel) renderList() string {
	var sb strings.Builder
	for i, j := range m.jobs {
		title, subtitle := jobLines(j)
		if i == m.cursor {
			sb.WriteString(selectedTitleStyle.Render(" "+title+" ") + "\n")
			sb.WriteString(selectedSubtitleStyle.Render(" "+subtitle+" ") + "\n\n")
		} else {
			sb.WriteString(jobTitleStyle.Render(" "+title) + "\n")
			sb.WriteString(jobSubtitleStyle.Render(" "+subtitle) + "\n\n")
		}
	}
	return sb.String()
}

func jobLines(j model.Job) (string, string) {
	title := j.Title
	if j.Company != "" {
		title += " — " + j.Company
	}
	parts := []string{j.Source}
	if j.Location != "" {
		parts = append(parts, j.Location)
	}
	if j.PostedAt != nil {
		parts = append(parts, j.PostedAt.Format("Jan 2"))
	}
	return title, strings.Join(parts, " · ")
}

func (m browseModel) View() string {
	if !m.ready {
		return "loading..."
	}
	header := titleStyle.Render(fmt.Sprintf("Latest accepted jobs (%d) — run of %s",
		len(m.jobs), m.generatedAt.Format("Jan 2 15:04")))
	status := statusBarStyle.Width(m.width).Render(
		fmt.Sprintf("%d/%d", m.cursor+1, len(m.jobs)))
	hint := hintStyle.Render("↑/↓/j/k navigate  o open  q quit")
	return header + "\n" + borderStyle.Render(m.vp.View()) + "\n" + status + "\n" + hint
}

// openURL opens the posting in the system browser; failures are ignored
// (the URL stays visible in the detail line).
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}

// Run shows the TUI over the given cached result. Returns an error when the
// cache is empty (no run has happened yet).
func Run(result pipeline.Result) error {
	if len(result.Jobs) == 0 {
		return fmt.Errorf("no cached results yet, run `jobwire run` first")
	}
	m := browseModel{
		generatedAt: result.GeneratedAt,
		jobs:        result.Jobs,
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
