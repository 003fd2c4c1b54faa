// ABOUTME: Controller states, the request status union and controller errors
// ABOUTME: Status is a closed set of types for exhaustive type switches

package game

import (
	"errors"
	"fmt"
)

// State is the controller's position in the game lifecycle
type State int

const (
	StateLobby State = iota
	StateWaiting
	StateActive
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateLobby:
		return "lobby"
	case StateWaiting:
		return "waiting"
	case StateActive:
		return "active"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Action names the operation a status refers to
type Action string

const (
	ActionCreate Action = "create"
	ActionJoin   Action = "join"
	ActionResume Action = "resume"
	ActionMove   Action = "move"
	ActionExit   Action = "exit"
	ActionPoll   Action = "poll"
)

// Status is one of Idle, Pending, Succeeded or Failed
type Status interface {
	isStatus()
}

// Idle means no request has been made since the last reset
type Idle struct{}

// Pending means a request for Action is in flight
type Pending struct {
	Action Action
}

// Succeeded means the last request for Action completed
type Succeeded struct {
	Action Action
}

// Failed means the last request for Action failed with Err
type Failed struct {
	Action Action
	Err    error
}

func (Idle) isStatus()      {}
func (Pending) isStatus()   {}
func (Succeeded) isStatus() {}
func (Failed) isStatus()    {}

// Errors produced by the controller itself, without a network call
var (
	ErrGameNotActive = errors.New("game is not in progress")
	ErrNotYourTurn   = errors.New("it is not your turn")
	ErrInvalidMove   = errors.New("move is outside the board")
	ErrMoveInFlight  = errors.New("a move is already being submitted")
	ErrBusy          = errors.New("already in a game")
	ErrGameExpired   = errors.New("game is no longer available")
)
