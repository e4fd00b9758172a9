package engine

import "fmt"

type State uint8

const (
	Constructing State = iota
	Live
	Destroyed
)

func (s State) String() string {
	switch s {
	case Constructing:
		return "constructing"
	case Live:
		return "live"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}
