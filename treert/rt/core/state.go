package core

// SpatialState is the externally owned layout flag read every frame.
type SpatialState int

const (
	StateChaos SpatialState = iota
	StateFormed
)

func (s SpatialState) Formed() bool { return s == StateFormed }

func (s SpatialState) Toggle() SpatialState {
	if s == StateFormed {
		return StateChaos
	}
	return StateFormed
}

func (s SpatialState) String() string {
	switch s {
	case StateChaos:
		return "CHAOS"
	case StateFormed:
		return "FORMED"
	}
	return "UNKNOWN"
}

// StateFromFormed maps the host's boolean signal onto a SpatialState.
func StateFromFormed(formed bool) SpatialState {
	if formed {
		return StateFormed
	}
	return StateChaos
}
