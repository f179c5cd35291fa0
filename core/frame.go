package core

// Frame is the set of events displayed for one tick. A Frame handed out by the
// playback engine is never modified afterwards; callers must not modify Events.
type Frame struct {
	Tick   int64   `json:"tick"`
	Events []Event `json:"events"`
}

// Len returns the number of events in the frame.
func (f Frame) Len() int {
	return len(f.Events)
}

// Empty reports whether the frame has no events.
func (f Frame) Empty() bool {
	return len(f.Events) == 0
}
