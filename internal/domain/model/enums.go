package model

// TriggerMode selects what starts the release workflow.
type TriggerMode string

const (
	TriggerTagPush        TriggerMode = "tag_push"        // Push of a tag matching v*.
	TriggerManualDispatch TriggerMode = "manual_dispatch" // workflow_dispatch from the Actions UI.
)

// DefaultTriggerMode is offered as the default answer when asking the operator.
const DefaultTriggerMode = TriggerManualDispatch

// Description returns the wording shown when the operator picks a trigger.
func (m TriggerMode) Description() string {
	switch m {
	case TriggerTagPush:
		return "Automatically when a new tag matching v* is pushed"
	case TriggerManualDispatch:
		return "Manually by running a GitHub Action"
	default:
		return string(m)
	}
}

// TriggerModes lists the selectable trigger modes in presentation order.
func TriggerModes() []TriggerMode {
	return []TriggerMode{TriggerTagPush, TriggerManualDispatch}
}
