package roadmap

// NodeStatus is a roadmap node's position in the progression state machine.
//
//	LOCKED -> AVAILABLE -> IN_PROGRESS -> COMPLETED
//
// LOCKED -> AVAILABLE happens only when the predecessor completes.
type NodeStatus string

const (
	StatusLocked     NodeStatus = "LOCKED"
	StatusAvailable  NodeStatus = "AVAILABLE"
	StatusInProgress NodeStatus = "IN_PROGRESS"
	StatusCompleted  NodeStatus = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s NodeStatus) Valid() bool {
	switch s {
	case StatusLocked, StatusAvailable, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s NodeStatus) Terminal() bool {
	return s == StatusCompleted
}

// InitialNodeStatus returns the status a freshly generated node starts in.
// Only the first step is workable.
func InitialNodeStatus(order int) NodeStatus {
	if order == 1 {
		return StatusAvailable
	}
	return StatusLocked
}
