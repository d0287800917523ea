package domain

// TriggerKind is the editor event that asked for a file to be (re)analyzed.
type TriggerKind uint8

const (
	// TriggerOpen fires when a file is opened.
	TriggerOpen TriggerKind = iota
	// TriggerChange fires on content changes, typically keystroke driven.
	TriggerChange
	// TriggerSave fires when a file is written to disk.
	TriggerSave
)

// String returns the lowercase trigger name.
func (k TriggerKind) String() string {
	switch k {
	case TriggerOpen:
		return "open"
	case TriggerChange:
		return "change"
	case TriggerSave:
		return "save"
	default:
		return "unknown"
	}
}
