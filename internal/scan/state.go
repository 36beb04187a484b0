package scan

// State is the lifecycle state of a scan.
type State string

const (
	StateIdle      State = "idle"
	StateListing   State = "listing"
	StateEnriching State = "enriching"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

// String returns the string representation of State.
func (s State) String() string {
	return string(s)
}
