// ABOUTME: Game session controller driving one game through its lifecycle
// ABOUTME: All state changes happen in Update; network calls run as tea.Cmds

package game

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/tictactoe-client/internal/board"
	"github.com/markalston/tictactoe-client/internal/client"
	"github.com/markalston/tictactoe-client/internal/lobby"
)

// DefaultInterval is the delay between polls of the current game
const DefaultInterval = 1750 * time.Millisecond

// Lobby opens games; lobby.Directory satisfies it
type Lobby interface {
	CreateGame(ctx context.Context) (*client.GameSnapshot, error)
	JoinGame(ctx context.Context, id client.GameID) (*client.GameSnapshot, error)
	FetchGame(ctx context.Context, id client.GameID) (*client.GameSnapshot, error)
}

// API submits moves and reads game state; client.Client satisfies it
type API interface {
	GetGame(ctx context.Context, id client.GameID) (*client.GameSnapshot, error)
	SubmitMove(ctx context.Context, id client.GameID, move client.Move) (*client.GameSnapshot, error)
}

// Session identifies the user and reacts to rejected tokens. Observe is
// given the token that was current when the failed request was issued.
type Session interface {
	Username() string
	Token() string
	Observe(token string, err error) bool
}

// TickFunc schedules a message after d; tea.Tick by default
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// Deps wires a Controller
type Deps struct {
	Lobby    Lobby
	API      API
	Session  Session
	Interval time.Duration
	Tick     TickFunc
	Logger   *slog.Logger
}

// LobbyRefreshMsg asks the lobby view to reload its listing
type LobbyRefreshMsg struct{}

// ChangedMsg is emitted after an applied update so views can react
type ChangedMsg struct {
	State State
}

type openedMsg struct {
	epoch  uint64
	seq    uint64
	token  string
	action Action
	snap   *client.GameSnapshot
	err    error
}

type tickMsg struct {
	gen uint64
}

type polledMsg struct {
	epoch uint64
	gen   uint64
	seq   uint64
	token string
	snap  *client.GameSnapshot
	err   error
}

type movedMsg struct {
	epoch uint64
	seq   uint64
	token string
	snap  *client.GameSnapshot
	err   error
}

// Controller is not safe for concurrent use. Call its methods from a
// single goroutine, normally a bubbletea Update.
type Controller struct {
	lobby    Lobby
	api      API
	session  Session
	interval time.Duration
	tick     TickFunc
	logger   *slog.Logger

	state  State
	status Status
	snap   *client.GameSnapshot

	// epoch changes whenever the current game is replaced or left;
	// replies from another epoch are dropped.
	epoch  uint64
	ctx    context.Context
	cancel context.CancelFunc

	// seq numbers every request; applied is the seq of the last reply
	// whose snapshot was accepted.
	seq     uint64
	applied uint64

	// gen tags poll ticks; a tick from an older gen is dropped.
	gen     uint64
	polling bool
	moving  bool
	opening bool
}

// New creates a controller in the Lobby state
func New(d Deps) *Controller {
	c := &Controller{
		lobby:    d.Lobby,
		api:      d.API,
		session:  d.Session,
		interval: d.Interval,
		tick:     d.Tick,
		logger:   d.Logger,
		state:    StateLobby,
		status:   Idle{},
		ctx:      context.Background(),
		cancel:   func() {},
	}
	if c.interval <= 0 {
		c.interval = DefaultInterval
	}
	if c.tick == nil {
		c.tick = tea.Tick
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// State returns the lifecycle state
func (c *Controller) State() State { return c.state }

// Status returns the status of the last request
func (c *Controller) Status() Status { return c.status }

// Snapshot returns the last accepted snapshot, or nil in the lobby
func (c *Controller) Snapshot() *client.GameSnapshot { return c.snap }

// Polling reports whether the poll task is running
func (c *Controller) Polling() bool { return c.polling }

// Interval returns the poll interval
func (c *Controller) Interval() time.Duration { return c.interval }

// Projection derives the board display state for the current user
func (c *Controller) Projection() board.Projection {
	return board.Project(c.snap, c.session.Username())
}

// Create starts a new game
func (c *Controller) Create() tea.Cmd {
	return c.open(ActionCreate, "", func(ctx context.Context, _ client.GameID) (*client.GameSnapshot, error) {
		return c.lobby.CreateGame(ctx)
	})
}

// Join joins a waiting game
func (c *Controller) Join(id client.GameID) tea.Cmd {
	return c.open(ActionJoin, id, c.lobby.JoinGame)
}

// Resume re-enters a game the user already plays in
func (c *Controller) Resume(id client.GameID) tea.Cmd {
	return c.open(ActionResume, id, c.lobby.FetchGame)
}

type openFunc func(ctx context.Context, id client.GameID) (*client.GameSnapshot, error)

func (c *Controller) open(action Action, id client.GameID, call openFunc) tea.Cmd {
	if c.state != StateLobby || c.opening {
		c.status = Failed{Action: action, Err: ErrBusy}
		return nil
	}

	c.reset()
	c.opening = true
	c.status = Pending{Action: action}
	c.seq++
	epoch, seq, ctx, token := c.epoch, c.seq, c.ctx, c.session.Token()
	c.logger.Debug("Opening game", "action", action, "game_id", id)

	return func() tea.Msg {
		snap, err := call(ctx, id)
		return openedMsg{epoch: epoch, seq: seq, token: token, action: action, snap: snap, err: err}
	}
}

// Validate reports why move cannot be submitted now, or nil
func (c *Controller) Validate(move client.Move) error {
	switch {
	case c.state != StateActive || c.snap == nil || c.snap.Status != client.StatusInProgress:
		return ErrGameNotActive
	case c.snap.NextPlayer != c.session.Username():
		return ErrNotYourTurn
	case !move.Valid():
		return ErrInvalidMove
	case c.moving:
		return ErrMoveInFlight
	}
	return nil
}

// Submit sends a move. A move that cannot be legal right now is rejected
// without a network call and reported through Status. Occupied cells are
// left for the authority to reject.
func (c *Controller) Submit(move client.Move) tea.Cmd {
	if err := c.Validate(move); err != nil {
		c.status = Failed{Action: ActionMove, Err: err}
		return nil
	}

	c.moving = true
	c.status = Pending{Action: ActionMove}
	c.seq++
	epoch, seq, ctx, id, token := c.epoch, c.seq, c.ctx, c.snap.ID, c.session.Token()
	c.logger.Debug("Submitting move", "game_id", id, "move", move.String(), "seq", seq)

	return func() tea.Msg {
		snap, err := c.api.SubmitMove(ctx, id, move)
		return movedMsg{epoch: epoch, seq: seq, token: token, snap: snap, err: err}
	}
}

// Exit leaves the current game from any state. Polling stops, in-flight
// requests are cancelled and their replies ignored.
func (c *Controller) Exit() tea.Cmd {
	c.reset()
	c.status = Idle{}
	c.logger.Debug("Left game")
	return func() tea.Msg { return LobbyRefreshMsg{} }
}

// reset cancels everything tied to the current game and returns to Lobby
func (c *Controller) reset() {
	c.Stop()
	c.cancel()
	c.epoch++
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.snap = nil
	c.state = StateLobby
	c.moving = false
	c.opening = false
}

// Start begins polling the current game. It is a no-op unless the game
// is waiting or active.
func (c *Controller) Start() tea.Cmd {
	if c.state != StateWaiting && c.state != StateActive {
		return nil
	}
	c.gen++
	c.polling = true
	return c.scheduleTick(c.gen)
}

// Stop halts polling. Ticks already scheduled are dropped when they fire.
// Safe to call repeatedly.
func (c *Controller) Stop() {
	if c.polling {
		c.gen++
	}
	c.polling = false
}

func (c *Controller) scheduleTick(gen uint64) tea.Cmd {
	return c.tick(c.interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// Update applies a message produced by one of the controller's commands.
// Messages it does not own are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case openedMsg:
		return c.handleOpened(msg)
	case tickMsg:
		return c.handleTick(msg)
	case polledMsg:
		return c.handlePolled(msg)
	case movedMsg:
		return c.handleMoved(msg)
	}
	return nil
}

func (c *Controller) handleOpened(msg openedMsg) tea.Cmd {
	if msg.epoch != c.epoch {
		return nil
	}
	c.opening = false

	if msg.err != nil {
		c.logger.Info("Failed to open game", "action", msg.action, "error", msg.err)
		c.session.Observe(msg.token, msg.err)
		c.status = Failed{Action: msg.action, Err: msg.err}
		return nil
	}

	c.snap = msg.snap
	c.applied = msg.seq
	c.status = Succeeded{Action: msg.action}
	c.deriveState()
	c.logger.Info("Opened game", "action", msg.action, "game_id", c.snap.ID, "state", c.state)

	return tea.Batch(c.Start(), c.changed())
}

func (c *Controller) handleTick(msg tickMsg) tea.Cmd {
	if msg.gen != c.gen || !c.polling {
		return nil
	}
	if c.moving {
		return c.scheduleTick(msg.gen)
	}

	c.seq++
	epoch, seq, ctx, id, token := c.epoch, c.seq, c.ctx, c.snap.ID, c.session.Token()
	return func() tea.Msg {
		snap, err := c.api.GetGame(ctx, id)
		return polledMsg{epoch: epoch, gen: msg.gen, seq: seq, token: token, snap: snap, err: err}
	}
}

func (c *Controller) handlePolled(msg polledMsg) tea.Cmd {
	if msg.epoch != c.epoch {
		return nil
	}

	if msg.err != nil {
		if left := c.leaveOnError(ActionPoll, msg.token, msg.err); left != nil {
			return left
		}
		c.logger.Debug("Poll failed, retrying", "error", msg.err)
		return c.next(msg.gen)
	}

	applied := c.apply(msg.seq, msg.snap)
	next := c.next(msg.gen)
	if !applied {
		return next
	}
	return tea.Batch(next, c.changed())
}

// next schedules the following tick if the poll task is still current
func (c *Controller) next(gen uint64) tea.Cmd {
	if gen != c.gen || !c.polling {
		return nil
	}
	return c.scheduleTick(gen)
}

func (c *Controller) handleMoved(msg movedMsg) tea.Cmd {
	if msg.epoch != c.epoch {
		return nil
	}
	c.moving = false

	if msg.err != nil {
		c.logger.Info("Move rejected", "error", msg.err)
		if left := c.leaveOnError(ActionMove, msg.token, msg.err); left != nil {
			return left
		}
		c.status = Failed{Action: ActionMove, Err: msg.err}
		return nil
	}

	c.status = Succeeded{Action: ActionMove}
	if !c.apply(msg.seq, msg.snap) {
		return nil
	}
	return c.changed()
}

// leaveOnError returns to the lobby when err means the game or session
// is gone. It returns nil if err is transient.
func (c *Controller) leaveOnError(action Action, token string, err error) tea.Cmd {
	var cause error
	switch {
	case client.IsUnauthenticated(err):
		if !c.session.Observe(token, err) {
			// the request carried a token that has since been replaced
			return nil
		}
		cause = err
	case errors.Is(err, client.ErrNotFound), errors.Is(err, client.ErrConflict) && action == ActionPoll:
		cause = ErrGameExpired
	default:
		return nil
	}

	c.logger.Info("Leaving game", "action", action, "error", err)
	cmd := c.Exit()
	c.status = Failed{Action: action, Err: cause}
	return tea.Batch(cmd, c.changed())
}

// apply accepts snap if it is newer than anything applied and does not
// erase a mark already seen
func (c *Controller) apply(seq uint64, snap *client.GameSnapshot) bool {
	switch {
	case snap == nil || c.snap == nil:
		return false
	case seq <= c.applied:
		c.logger.Debug("Discarding stale snapshot", "seq", seq, "applied", c.applied)
		return false
	case snap.ID != c.snap.ID:
		c.logger.Warn("Discarding snapshot for another game", "got", snap.ID, "want", c.snap.ID)
		return false
	case snap.Regresses(c.snap):
		c.logger.Warn("Discarding snapshot that clears occupied cells", "game_id", snap.ID, "seq", seq)
		return false
	}

	c.snap = snap
	c.applied = seq
	c.deriveState()
	return true
}

func (c *Controller) deriveState() {
	switch {
	case c.snap.Status == client.StatusComplete:
		c.state = StateComplete
		c.Stop()
	case c.snap.Status == client.StatusWaiting || len(c.snap.Players) < 2:
		c.state = StateWaiting
	default:
		c.state = StateActive
	}
}

func (c *Controller) changed() tea.Cmd {
	state := c.state
	return func() tea.Msg { return ChangedMsg{State: state} }
}

// StatusText is the one-line status shown under the board
func (c *Controller) StatusText() string {
	if c.state == StateComplete {
		switch board.Label(c.snap, c.session.Username()) {
		case board.LabelWin:
			return "You win!"
		case board.LabelLose:
			return "You lose."
		default:
			return "Draw!"
		}
	}

	switch s := c.status.(type) {
	case Pending:
		switch s.Action {
		case ActionCreate:
			return "Creating game..."
		case ActionJoin:
			return "Joining game..."
		case ActionResume:
			return "Loading game..."
		case ActionMove:
			return "Submitting move..."
		}
	case Succeeded:
		switch s.Action {
		case ActionCreate:
			if c.state == StateWaiting {
				return "Game created. Waiting for Player 2..."
			}
			return "Game created."
		case ActionJoin:
			return "Joined game!"
		case ActionResume:
			return "Game loaded."
		case ActionMove:
			return "Move submitted."
		}
	case Failed:
		return Message(s.Err)
	}
	return ""
}

// Message turns a controller or request error into text for the user
func Message(err error) string {
	var apiErr *client.Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotYourTurn):
		return "It's not your turn."
	case errors.Is(err, ErrGameNotActive):
		return "The game is not in progress."
	case errors.Is(err, ErrInvalidMove):
		return "That cell is not on the board."
	case errors.Is(err, ErrMoveInFlight):
		return "Still submitting your last move."
	case errors.Is(err, ErrGameExpired):
		return "The game is no longer available."
	case errors.Is(err, ErrBusy):
		return "Leave the current game first."
	case errors.Is(err, lobby.ErrUnauthenticated), client.IsUnauthenticated(err):
		return "Your session has expired. Please log in again."
	case errors.Is(err, lobby.ErrGameFull), errors.Is(err, lobby.ErrGameNotFound):
		return lobby.Message(err)
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}
