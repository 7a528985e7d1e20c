package ui

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/genricoloni/camrec/internal/domain"
	"github.com/genricoloni/camrec/internal/screen"
	"go.uber.org/zap"
)

const (
	// DeviceRefreshInterval is how often devices are re-evaluated while loading
	DeviceRefreshInterval = time.Second

	spinnerInterval = 100 * time.Millisecond

	// rows taken by everything around the preview
	chromeRows     = 15
	marginCols     = 4
	minPreviewRows = 4
	minPreviewCols = 8
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Screen is the controller the model drives
type Screen interface {
	Snapshot() screen.State
	Updates() <-chan screen.State
	RefreshDevices(ctx context.Context) error
	StartRecording(ctx context.Context)
	StopRecording(ctx context.Context)
	Preview(ctx context.Context) (image.Image, error)
	Unmount()
	TargetPath() string
}

// Renderer turns a preview frame into terminal art
type Renderer interface {
	Render(img image.Image) (string, error)
	Resize(cols, rows int)
}

type control int

const (
	controlStart control = iota
	controlStop
	controlCount
)

type (
	stateMsg       screen.State
	frameMsg       string
	deviceTickMsg  struct{}
	previewTickMsg struct{}
	spinnerTickMsg struct{}
)

// Model is the bubbletea model of the recording screen
type Model struct {
	logger          *zap.Logger
	ctrl            Screen
	renderer        Renderer
	previewInterval time.Duration

	state    screen.State
	preview  string
	focus    control
	spin     int
	width    int
	height   int
	quitting bool
}

// NewModel creates the screen model
func NewModel(logger *zap.Logger, cfg domain.Config, ctrl Screen, renderer Renderer) Model {
	return Model{
		logger:          logger,
		ctrl:            ctrl,
		renderer:        renderer,
		previewInterval: cfg.GetPreviewInterval(),
		state:           ctrl.Snapshot(),
	}
}

// Init implements tea.Model interface.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForState()}
	if m.state.Ready() {
		cmds = append(cmds, m.previewTick())
	} else {
		cmds = append(cmds, deviceTick(), spinnerTick())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model interface.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		cols, rows := previewSize(msg.Width, msg.Height)
		m.renderer.Resize(cols, rows)
		m.logger.Debug("Preview resized", zap.Int("cols", cols), zap.Int("rows", rows))
		return m, nil

	case stateMsg:
		wasReady := m.state.Ready()
		m.state = screen.State(msg)
		cmds := []tea.Cmd{m.waitForState()}
		if !wasReady && m.state.Ready() {
			// The device chain stops on its own; start grabbing frames
			cmds = append(cmds, m.grabFrame(), m.previewTick())
		}
		return m, tea.Batch(cmds...)

	case deviceTickMsg:
		if m.state.Ready() {
			return m, nil
		}
		return m, tea.Batch(m.refreshDevices(), deviceTick())

	case spinnerTickMsg:
		if m.state.Ready() {
			return m, nil
		}
		m.spin = (m.spin + 1) % len(spinnerFrames)
		return m, spinnerTick()

	case previewTickMsg:
		if m.state.Recording == domain.RecordingIdle {
			return m, tea.Batch(m.grabFrame(), m.previewTick())
		}
		return m, m.previewTick()

	case frameMsg:
		m.preview = string(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.ctrl.Unmount()
		return m, tea.Quit
	}

	if !m.state.Ready() {
		return m, nil
	}

	switch msg.String() {
	case "tab", "right", "down":
		m.focus = (m.focus + 1) % controlCount
	case "shift+tab", "left", "up":
		m.focus = (m.focus + controlCount - 1) % controlCount
	case "enter", " ", "space":
		return m, m.press(m.focus)
	case "r":
		m.focus = controlStart
		return m, m.press(controlStart)
	case "s":
		m.focus = controlStop
		return m, m.press(controlStop)
	}
	return m, nil
}

// press returns the command behind a control, nil when it is disabled
func (m Model) press(c control) tea.Cmd {
	ctrl := m.ctrl
	switch c {
	case controlStart:
		if !m.state.CanStart() {
			return nil
		}
		return func() tea.Msg {
			ctrl.StartRecording(context.Background())
			return nil
		}
	case controlStop:
		if !m.state.CanStop() {
			return nil
		}
		return func() tea.Msg {
			ctrl.StopRecording(context.Background())
			return nil
		}
	}
	return nil
}

// waitForState blocks until the controller publishes a new state
func (m Model) waitForState() tea.Cmd {
	updates := m.ctrl.Updates()
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

func (m Model) refreshDevices() tea.Cmd {
	ctrl, logger := m.ctrl, m.logger
	return func() tea.Msg {
		if err := ctrl.RefreshDevices(context.Background()); err != nil {
			logger.Debug("Device refresh failed", zap.Error(err))
		}
		return nil
	}
}

func (m Model) grabFrame() tea.Cmd {
	ctrl, renderer, logger := m.ctrl, m.renderer, m.logger
	return func() tea.Msg {
		img, err := ctrl.Preview(context.Background())
		if err != nil {
			logger.Debug("Preview grab failed", zap.Error(err))
			return nil
		}
		if img == nil {
			return nil
		}
		art, err := renderer.Render(img)
		if err != nil {
			logger.Debug("Preview render failed", zap.Error(err))
			return nil
		}
		return frameMsg(art)
	}
}

// previewSize fits a 4:3 preview into what the rest of the screen leaves.
// A cell holds two pixels stacked vertically.
func previewSize(width, height int) (cols, rows int) {
	rows = max(height-chromeRows, minPreviewRows)
	cols = rows * 8 / 3
	if avail := width - marginCols; cols > avail {
		cols = max(avail, minPreviewCols)
		rows = max(cols*3/8, minPreviewRows)
	}
	return cols, rows
}

func (m Model) previewTick() tea.Cmd {
	return tea.Tick(m.previewInterval, func(time.Time) tea.Msg {
		return previewTickMsg{}
	})
}

func deviceTick() tea.Cmd {
	return tea.Tick(DeviceRefreshInterval, func(time.Time) tea.Msg {
		return deviceTickMsg{}
	})
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// View implements tea.Model interface.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	if !m.state.Ready() {
		content = spinnerFrames[m.spin] + " Waiting for camera"
	} else {
		content = m.readyView()
	}

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func (m Model) readyView() string {
	var b strings.Builder

	name := m.state.Device.Name
	if name == "" {
		name = m.state.Device.Path
	}
	b.WriteString(titleStyle.Render(name))
	b.WriteString("  ")
	b.WriteString(statusLine(m.state.Recording))
	b.WriteString("\n\n")

	if m.preview != "" {
		b.WriteString(m.preview)
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.button("Start Recording", controlStart, m.state.CanStart()),
		" ",
		m.button("Stop Recording", controlStop, m.state.CanStop()),
	))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, readouts(m.state.Reading)...))
	b.WriteString("\n")

	if notice := permissionNotice(m.state); notice != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(notice))
	}
	if m.state.LastError != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Recording failed: " + m.state.LastError))
	}
	if s := m.state.LastSave; s != nil {
		b.WriteString("\n")
		if s.OK() {
			b.WriteString(okStyle.Render(fmt.Sprintf("Saved %s (%d bytes)", s.Path, s.Bytes)))
		} else {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Could not save %s: %v", s.Path, s.Err)))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("Saves to " + m.ctrl.TargetPath()))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("r start • s stop • tab focus • q quit"))
	return b.String()
}

func (m Model) button(label string, c control, enabled bool) string {
	switch {
	case !enabled:
		return disabledButtonStyle.Render(label)
	case m.focus == c:
		return focusedButtonStyle.Render(label)
	default:
		return buttonStyle.Render(label)
	}
}

func statusLine(r domain.RecordingState) string {
	if r == domain.RecordingActive {
		return recStyle.Render("● REC")
	}
	return idleStyle.Render("IDLE")
}

// readouts formats the orientation values with two decimals
func readouts(r domain.OrientationReading) []string {
	return []string{
		readoutStyle.Render(fmt.Sprintf("Pitch: %.2f°", r.Pitch)),
		readoutStyle.Render(fmt.Sprintf("Roll: %.2f°", r.Roll)),
		readoutStyle.Render(fmt.Sprintf("Yaw: %.2f°", r.Yaw)),
	}
}

func permissionNotice(s screen.State) string {
	switch {
	case s.Camera == domain.PermissionDenied:
		return "Camera permission denied"
	case s.Camera == domain.PermissionUnknown:
		return "Camera permission unknown"
	case s.Microphone == domain.PermissionDenied:
		return "Microphone permission denied"
	}
	return ""
}
