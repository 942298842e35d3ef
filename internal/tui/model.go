package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"emurig/internal/device"
)

// refreshInterval drives the periodic registry reload.
const refreshInterval = 2 * time.Second

// Controller defines the subset of the device manager the TUI needs.
type Controller interface {
	List() []device.Snapshot
	Destroy(ctx context.Context, id string) error
}

// Model represents the Bubble Tea state.
type Model struct {
	controller Controller

	list      list.Model
	instances []device.Snapshot

	statusMsg string
	err       error

	width  int
	height int

	lastUpdated time.Time
}

// New constructs a TUI model with default styles.
func New(ctrl Controller) *Model {
	delegate := list.NewDefaultDelegate()
	lst := list.New([]list.Item{}, delegate, 0, 0)
	lst.Title = "Devices"
	lst.SetShowHelp(false)
	lst.SetFilteringEnabled(false)
	lst.DisableQuitKeybindings()

	return &Model{
		controller: ctrl,
		list:       lst,
		statusMsg:  "Press r to refresh, d to destroy, q to quit.",
	}
}

// Run spins up the Bubble Tea program with sensible defaults.
func Run(ctrl Controller) error {
	m := New(ctrl)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(loadInstancesCmd(m.controller), tickCmd())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.height > 4 {
			m.list.SetSize(msg.Width, msg.Height-4)
		}

	case tickMsg:
		return m, tea.Batch(loadInstancesCmd(m.controller), tickCmd())

	case instancesLoadedMsg:
		m.err = nil
		m.instances = msg.instances
		items := make([]list.Item, 0, len(msg.instances))
		for _, inst := range msg.instances {
			items = append(items, instanceItem{Snapshot: inst})
		}
		m.list.SetItems(items)
		m.lastUpdated = time.Now()

	case destroyedMsg:
		m.statusMsg = fmt.Sprintf("Destroyed %s.", msg.id)
		return m, loadInstancesCmd(m.controller)

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, loadInstancesCmd(m.controller)
		case "d":
			if current := m.currentInstance(); current != nil {
				m.statusMsg = fmt.Sprintf("Destroying %s…", current.ID)
				return m, destroyCmd(m.controller, current.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	statusStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	b.WriteString(statusStyle.Render(m.statusMsg))
	b.WriteByte('\n')

	if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
		b.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteByte('\n')
	}

	if len(m.list.Items()) == 0 && m.err == nil {
		b.WriteString("No live devices.\n")
	} else {
		b.WriteString(m.list.View())
		b.WriteByte('\n')
	}

	if current := m.currentInstance(); current != nil {
		detail := fmt.Sprintf(
			"id=%s state=%s\nmodel=%s firmware=%s\napp=%s@%s\napdu=%d vnc=%d button=%d automation=%d",
			current.ID,
			current.State,
			current.Model,
			current.FirmwareVersion,
			current.AppName,
			current.AppVersion,
			current.Ports.APDU,
			current.Ports.VNC,
			current.Ports.Button,
			current.Ports.Automation,
		)
		detailStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginBottom(1)
		b.WriteString(detailStyle.Render(detail))
		b.WriteByte('\n')
	}

	help := "Commands: q quit • r reload • d destroy"
	if !m.lastUpdated.IsZero() {
		help += fmt.Sprintf(" • last update %s", m.lastUpdated.Format(time.Kitchen))
	}
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

// instanceItem adapts device.Snapshot to the bubbles list item interface.
type instanceItem struct {
	Snapshot device.Snapshot
}

func (i instanceItem) Title() string {
	return fmt.Sprintf("[%s] %s %s@%s (%s)",
		i.Snapshot.ID, i.Snapshot.Model, i.Snapshot.AppName, i.Snapshot.AppVersion, i.Snapshot.State)
}

func (i instanceItem) Description() string {
	return fmt.Sprintf("firmware=%s apdu=%d vnc=%d",
		i.Snapshot.FirmwareVersion, i.Snapshot.Ports.APDU, i.Snapshot.Ports.VNC)
}

func (i instanceItem) FilterValue() string {
	return fmt.Sprintf("%s %s %s", i.Snapshot.ID, i.Snapshot.Model, i.Snapshot.AppName)
}

func (m *Model) currentInstance() *device.Snapshot {
	if len(m.instances) == 0 {
		return nil
	}
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.instances) {
		return nil
	}
	return &m.instances[idx]
}

type tickMsg struct{}

type instancesLoadedMsg struct {
	instances []device.Snapshot
}

type destroyedMsg struct{ id string }

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func loadInstancesCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		return instancesLoadedMsg{instances: ctrl.List()}
	}
}

func destroyCmd(ctrl Controller, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := ctrl.Destroy(ctx, id); err != nil {
			return errMsg{err}
		}
		return destroyedMsg{id: id}
	}
}
