package visual

import "context"

// ControlCommandType represents types of control instructions from UI.
type ControlCommandType string

const (
	CommandNone   ControlCommandType = "none"
	CommandPause  ControlCommandType = "pause"
	CommandResume ControlCommandType = "resume"
	CommandReset  ControlCommandType = "reset"
	CommandStep   ControlCommandType = "step"
	CommandSpeed  ControlCommandType = "speed"
	CommandLegend ControlCommandType = "legend"
)

// ParseCommandType maps a wire name to a known command type.
func ParseCommandType(name string) (ControlCommandType, bool) {
	switch t := ControlCommandType(name); t {
	case CommandPause, CommandResume, CommandReset, CommandStep, CommandSpeed, CommandLegend:
		return t, true
	default:
		return CommandNone, false
	}
}

// ControlCommand captures a control instruction for the playback loop.
type ControlCommand struct {
	Type ControlCommandType `json:"type"`
	// MsPerTick is used by CommandSpeed.
	MsPerTick int `json:"ms_per_tick,omitempty"`
	// ShowLegend is used by CommandLegend.
	ShowLegend bool `json:"show_legend,omitempty"`
}

// Visualizer defines methods for visualization implementations. Viewers pull
// frames on demand; the engine only tells them when the displayed tick changed.
type Visualizer interface {
	SetHeadless(headless bool)
	IsHeadless() bool
	RequestRepaint(tick int64)
	NextCommand() (ControlCommand, bool)
	WaitCommand(ctx context.Context) (ControlCommand, bool)
}

// NullVisualizer is a no-op implementation used for headless mode.
type NullVisualizer struct {
	headless bool
}

// NewNullVisualizer creates a new NullVisualizer.
func NewNullVisualizer() *NullVisualizer {
	return &NullVisualizer{headless: true}
}

func (n *NullVisualizer) SetHeadless(headless bool) {
	n.headless = headless
}

func (n *NullVisualizer) IsHeadless() bool {
	return n.headless
}

func (n *NullVisualizer) RequestRepaint(tick int64) {}

func (n *NullVisualizer) NextCommand() (ControlCommand, bool) {
	return ControlCommand{Type: CommandNone}, false
}

func (n *NullVisualizer) WaitCommand(ctx context.Context) (ControlCommand, bool) {
	<-ctx.Done()
	return ControlCommand{Type: CommandNone}, false
}
