package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mc-launcher/logger"
	"mc-launcher/mods"
	"mc-launcher/profile"
)

// guiCmd represents the gui command
var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Manage the mods of a profile interactively",
	Long:  `Launch an interactive TUI to toggle, remove and install the mods of a game profile.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		id, _ := cmd.Flags().GetString("profile")
		p, err := a.resolveProfile(cmd.Context(), id)
		if err != nil {
			return err
		}
		return runGUI(cmd.Context(), a.mods, p)
	},
}

func init() {
	rootCmd.AddCommand(guiCmd)
	guiCmd.Flags().StringP("profile", "p", "", "profile id (default profile when empty)")
}

// Row statuses.
const (
	statusEnabled   = "enabled"
	statusDisabled  = "disabled"
	statusAvailable = "available"
)

// ModInfo is one row of the mod manager: an installed mod or a catalog entry
// that is not installed yet.
type ModInfo struct {
	ID       string
	Title    string
	Version  string
	Size     string
	Status   string
	Selected bool // Whether this catalog entry is selected for download
}

func (m ModInfo) installed() bool {
	return m.Status != statusAvailable
}

// Model represents the state of the TUI
type Model struct {
	ctx           context.Context
	registry      *mods.Registry
	profile       profile.Profile
	mods          []ModInfo
	selectedIndex int
	loading       bool
	downloading   bool
	error         string
	message       string
	width         int
	height        int
	spinnerFrame  int
}

func newModel(ctx context.Context, registry *mods.Registry, p profile.Profile) Model {
	return Model{
		ctx:      ctx,
		registry: registry,
		profile:  p,
		loading:  true,
		width:    80,
		height:   24,
	}
}

// Initialize the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadMods(),
		tickSpinner(),
	)
}

func tickSpinner() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case modsLoadedMsg:
		m.handleModsLoaded(msg)
	case spinnerTickMsg:
		return m.handleSpinnerTick()
	case errorMsg:
		m.error = string(msg)
		m.loading = false
		m.downloading = false
	case downloadCompleteMsg:
		return m.handleDownloadComplete(msg)
	case actionDoneMsg:
		m.message = msg.message
		return m, tea.Batch(m.loadMods(), clearMessageAfter(3*time.Second))
	case clearMessageMsg:
		m.message = ""
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case "down", "j":
		if m.selectedIndex < len(m.mods)-1 {
			m.selectedIndex++
		}
	case " ":
		if len(m.mods) > 0 && !m.mods[m.selectedIndex].installed() {
			m.mods[m.selectedIndex].Selected = !m.mods[m.selectedIndex].Selected
		}
	case "e":
		if len(m.mods) > 0 && m.mods[m.selectedIndex].installed() {
			return m, m.toggleMod(m.mods[m.selectedIndex])
		}
	case "x":
		if len(m.mods) > 0 && m.mods[m.selectedIndex].installed() {
			return m, m.removeMod(m.mods[m.selectedIndex])
		}
	case "ctrl+d":
		if !m.downloading {
			m.downloading = true
			return m, tea.Batch(m.downloadSelectedMods(), tickSpinner())
		}
	}
	return m, nil
}

func (m *Model) handleModsLoaded(msg modsLoadedMsg) {
	m.mods = msg.mods
	m.loading = false
	sort.SliceStable(m.mods, func(i, j int) bool {
		if m.mods[i].installed() != m.mods[j].installed() {
			return m.mods[i].installed()
		}
		return strings.ToLower(m.mods[i].Title) < strings.ToLower(m.mods[j].Title)
	})
	if m.selectedIndex >= len(m.mods) {
		m.selectedIndex = max(len(m.mods)-1, 0)
	}
}

func (m Model) handleSpinnerTick() (tea.Model, tea.Cmd) {
	m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
	if m.loading || m.downloading {
		return m, tickSpinner()
	}
	return m, nil
}

func (m Model) handleDownloadComplete(msg downloadCompleteMsg) (tea.Model, tea.Cmd) {
	m.downloading = false
	m.message = msg.message
	return m, tea.Batch(m.loadMods(), clearMessageAfter(3*time.Second))
}

func clearMessageAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearMessageMsg{}
	})
}

// View renders the UI
func (m Model) View() string {
	if m.loading {
		return m.renderLoadingScreen()
	}

	if m.downloading {
		return m.renderDownloadingScreen()
	}

	if m.error != "" {
		return fmt.Sprintf("Error: %s\n", m.error)
	}

	if !m.profile.Loader.SupportsMods() {
		return fmt.Sprintf("%s is a vanilla profile, mods are not supported.\n", m.profile.Name)
	}

	if len(m.mods) == 0 {
		return "No mods installed and nothing in the catalog for this loader.\n"
	}

	var output string
	output += lipgloss.NewStyle().Bold(true).Render(profileLabel(m.profile)) + "\n\n"
	output += renderHeader()
	output += "\n"

	for i, mod := range m.mods {
		output += m.renderModRow(i, mod)
		output += "\n"
	}

	output += "\n" + renderFooter()

	if m.message != "" {
		output += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.message)
	}

	return output
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m Model) renderLoadingScreen() string {
	loadingStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	return loadingStyle.Render(fmt.Sprintf("%s Loading mods...", spinnerFrames[m.spinnerFrame])) + "\n"
}

func renderHeader() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Padding(0, 1)

	return headerStyle.Render(fmt.Sprintf("  %-32s %-12s %-10s %-10s", "Mod Name", "Version", "Size", "Status"))
}

func renderFooter() string {
	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Italic(true)

	return footerStyle.Render("↑/k ↓/j: move  space: select  ctrl+d: install selected  e: enable/disable  x: remove  q: quit")
}

func (m Model) renderModRow(index int, mod ModInfo) string {
	var statusColor string
	switch mod.Status {
	case statusEnabled:
		statusColor = "10" // Green
	case statusDisabled:
		statusColor = "8" // Grey
	case statusAvailable:
		statusColor = "12" // Blue
	default:
		statusColor = "7" // White
	}

	rowStyle := lipgloss.NewStyle().Padding(0, 1)
	if index == m.selectedIndex {
		rowStyle = rowStyle.
			Background(lipgloss.Color("8")).
			Bold(true)
	}

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(statusColor))

	selectionIndicator := " "
	if mod.Selected {
		selectionIndicator = "✓"
	} else if mod.installed() {
		selectionIndicator = "-"
	}

	// Pad status before applying color to maintain column alignment
	coloredStatus := statusStyle.Render(fmt.Sprintf("%-10s", mod.Status))

	row := fmt.Sprintf("%s %-32s %-12s %-10s %s",
		selectionIndicator,
		truncate(mod.Title, 32),
		truncate(mod.Version, 12),
		mod.Size,
		coloredStatus,
	)

	return rowStyle.Render(row)
}

// Message types
type modsLoadedMsg struct {
	mods []ModInfo
}

type errorMsg string

type spinnerTickMsg struct{}

type downloadCompleteMsg struct {
	message string
}

type actionDoneMsg struct {
	message string
}

type clearMessageMsg struct{}

func (m Model) loadMods() tea.Cmd {
	return func() tea.Msg {
		rows, err := buildModRows(m.ctx, m.registry, m.profile)
		if err != nil {
			logger.Log.Errorw("Failed to load mods", zap.Error(err))
			return errorMsg(fmt.Sprintf("Failed to load mods: %v", err))
		}
		return modsLoadedMsg{mods: rows}
	}
}

// buildModRows lists the installed mods of p followed by the catalog entries
// for its loader that are not installed.
func buildModRows(ctx context.Context, registry *mods.Registry, p profile.Profile) ([]ModInfo, error) {
	installed, err := registry.List(ctx, p.ID, p.Loader)
	if err != nil {
		return nil, err
	}
	if !p.Loader.SupportsMods() {
		return nil, nil
	}

	rows := make([]ModInfo, 0, len(installed))
	seen := make(map[string]bool, len(installed))
	for _, r := range installed {
		status := statusEnabled
		if !r.Enabled {
			status = statusDisabled
		}
		rows = append(rows, ModInfo{ID: r.ID, Title: r.Name, Version: r.Version, Size: r.HumanSize(), Status: status})
		if r.CatalogID != "" {
			seen[r.CatalogID] = true
		}
	}

	for _, e := range mods.Search("", p.Loader) {
		if seen[e.ID] {
			continue
		}
		rows = append(rows, ModInfo{ID: e.ID, Title: e.Name, Version: e.Version, Size: "-", Status: statusAvailable})
	}
	return rows, nil
}

func (m Model) renderDownloadingScreen() string {
	downloadingStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	return downloadingStyle.Render(fmt.Sprintf("%s Installing selected mods...", spinnerFrames[m.spinnerFrame])) + "\n"
}

func (m Model) toggleMod(mod ModInfo) tea.Cmd {
	return func() tea.Msg {
		enable := mod.Status == statusDisabled
		if _, err := m.registry.SetEnabled(m.ctx, mod.ID, enable); err != nil {
			return errorMsg(err.Error())
		}
		state := "Disabled"
		if enable {
			state = "Enabled"
		}
		return actionDoneMsg{message: fmt.Sprintf("%s %s", state, mod.Title)}
	}
}

func (m Model) removeMod(mod ModInfo) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.registry.Remove(m.ctx, mod.ID); err != nil {
			return errorMsg(err.Error())
		}
		return actionDoneMsg{message: "Removed " + mod.Title}
	}
}

func (m Model) downloadSelectedMods() tea.Cmd {
	return func() tea.Msg {
		var selectedMods []ModInfo
		for _, mod := range m.mods {
			if mod.Selected {
				selectedMods = append(selectedMods, mod)
			}
		}

		if len(selectedMods) == 0 {
			return downloadCompleteMsg{message: "No mods selected for installation"}
		}

		successCount := 0
		for _, mod := range selectedMods {
			if _, err := addCatalogMod(m.ctx, m.registry, mod.ID, m.profile, nil); err != nil {
				logger.Log.Warnw("Failed to install mod", zap.String("id", mod.ID), zap.Error(err))
				continue
			}
			successCount++
		}

		message := fmt.Sprintf("Installed %d/%d selected mods", successCount, len(selectedMods))
		return downloadCompleteMsg{message: message}
	}
}

func runGUI(ctx context.Context, registry *mods.Registry, p profile.Profile) error {
	prog := tea.NewProgram(newModel(ctx, registry, p), tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("failed to run GUI: %w", err)
	}
	return nil
}
