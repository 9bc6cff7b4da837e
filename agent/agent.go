package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/genniabot/gbot-core/ipc"
	"github.com/genniabot/gbot-core/model"
	"github.com/genniabot/gbot-core/record"
	"github.com/genniabot/gbot-core/rules"
)

const indexTimeout = 5 * time.Second

// Outbox is what the agent sends back to the game server.
type Outbox interface {
	rules.Emitter
	ForceStart() error
	TransferHost(playerID string) error
	SetSpectating(on bool) error
}

// Agent owns the decision-making for a single bot session. Its handlers run
// on the connection's read loop, so one update is fully processed before
// the next one is read.
type Agent struct {
	Out    Outbox
	Engine *rules.Engine
	State  *model.GameState
	Room   string

	// Optional game records.
	Turns *record.TurnLog
	Index *record.Index

	schemas *validator
	prev    *stateSnapshot
	matchID int64
}

func New(out Outbox, engine *rules.Engine, room string) (*Agent, error) {
	schemas, err := newValidator()
	if err != nil {
		return nil, err
	}
	return &Agent{
		Out:     out,
		Engine:  engine,
		State:   model.NewGameState(),
		Room:    room,
		schemas: schemas,
	}, nil
}

// Handlers maps every inbound event to its handler.
func (a *Agent) Handlers() map[string]ipc.Handler {
	return map[string]ipc.Handler{
		ipc.EventSetPlayerID: a.HandleSetPlayerID,
		ipc.EventUpdateRoom:  a.HandleUpdateRoom,
		ipc.EventGameStarted: a.HandleGameStarted,
		ipc.EventGameUpdate:  a.HandleGameUpdate,
		ipc.EventGameOver:    a.HandleGameOver,
		ipc.EventGameEnded:   a.HandleGameEnded,
		ipc.EventError:       a.HandleError,
	}
}

func (a *Agent) HandleSetPlayerID(env ipc.Envelope) error {
	var id string
	if err := env.Arg(0, &id); err != nil {
		return err
	}
	a.State.PlayerID = id
	slog.Info("player identified", "player", id)
	return nil
}

// HandleUpdateRoom picks up our color and keeps the lobby moving: we are
// always ready, never spectating, and hand the host role to a human.
func (a *Agent) HandleUpdateRoom(env ipc.Envelope) error {
	var room ipc.Room
	if err := env.Arg(0, &room); err != nil {
		return err
	}
	if a.State.PlayerID == "" {
		slog.Debug("room update before player id, ignored")
		return nil
	}
	me, ok := room.Find(a.State.PlayerID)
	if !ok {
		slog.Warn("room update without us", "player", a.State.PlayerID, "players", len(room.Players))
		return nil
	}
	if me.Color != a.State.Color {
		slog.Info("color assigned", "color", me.Color)
	}
	a.State.Color = me.Color

	if !me.ForceStart {
		if err := a.Out.ForceStart(); err != nil {
			return err
		}
	}
	if me.IsRoomHost && !room.GameStarted {
		human := ""
		for _, p := range room.Players {
			if p.ID != me.ID {
				human = p.ID
				break
			}
		}
		slog.Info("giving up host", "to", human)
		if err := a.Out.TransferHost(human); err != nil {
			return err
		}
	}
	if me.Spectating {
		if err := a.Out.SetSpectating(false); err != nil {
			return err
		}
	}
	return nil
}

func (a *Agent) HandleGameStarted(env ipc.Envelope) error {
	if len(env.Args) == 0 {
		return fmt.Errorf("game_started without payload")
	}
	if err := validateDoc(a.schemas.started, env.Args[0]); err != nil {
		return fmt.Errorf("invalid game_started: %w", err)
	}
	var info ipc.InitGameInfo
	if err := env.Arg(0, &info); err != nil {
		return err
	}

	a.State.Start(info.MapWidth, info.MapHeight)
	a.prev = nil
	slog.Info("game started", "width", info.MapWidth, "height", info.MapHeight, "color", a.State.Color)

	a.matchID = 0
	if a.Index != nil {
		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		defer cancel()
		id, err := a.Index.StartMatch(ctx, a.Room, a.State.Color, info.MapWidth, info.MapHeight)
		if err != nil {
			slog.Warn("match index unavailable", "error", err)
		}
		a.matchID = id
	}
	return nil
}

// HandleGameUpdate runs one decision cycle: patch the map, decide, emit.
func (a *Agent) HandleGameUpdate(env ipc.Envelope) error {
	gs := a.State
	if gs.Grid == nil || gs.Over {
		slog.Debug("update outside a running game, ignored")
		return nil
	}
	if err := validateArgs(a.schemas.update, env.Args); err != nil {
		return fmt.Errorf("invalid game_update: %w", err)
	}

	var (
		patch model.Patch
		turn  int
		board model.Leaderboard
	)
	if err := env.Arg(0, &patch); err != nil {
		return err
	}
	if err := env.Arg(1, &turn); err != nil {
		return err
	}
	if err := env.Arg(2, &board); err != nil {
		return err
	}

	gs.Leaderboard = board
	gs.Turn = turn
	if err := gs.Observe(patch); err != nil {
		return fmt.Errorf("turn %d: %w", turn, err)
	}

	dec, err := a.Engine.Evaluate(gs, a.Out)
	if err != nil {
		return fmt.Errorf("turn %d: %w", turn, err)
	}
	slog.Debug("game_update", "turn", turn, "fired", dec.Fired, "queued", gs.Queue.Len())

	for _, e := range detectEvents(gs, a.prev) {
		slog.Info("game event", "kind", e.Kind, "turn", e.Turn, "detail", e.Detail)
	}
	snap := takeSnapshot(gs)
	a.prev = &snap

	a.recordTurn(dec)
	return nil
}

func (a *Agent) recordTurn(dec rules.Decision) {
	if a.Turns == nil {
		return
	}
	row, _ := a.State.Leaderboard.Row(a.State.Color)
	err := a.Turns.Write(record.TurnEntry{
		Time:     time.Now().UTC(),
		Room:     a.Room,
		Turn:     dec.Turn,
		Fired:    dec.Fired,
		Move:     dec.Move,
		Half:     dec.Half,
		QueueLen: a.State.Queue.Len(),
		Army:     row.Army,
		Land:     row.Land,
	})
	if err != nil {
		slog.Warn("turn log write failed", "turn", dec.Turn, "error", err)
	}
}

// HandleGameOver fires when our home is captured. The game keeps going for
// the others, so later updates are ignored.
func (a *Agent) HandleGameOver(env ipc.Envelope) error {
	var by ipc.UserData
	if err := env.Arg(0, &by); err != nil {
		return err
	}
	slog.Info("game over", "capturedBy", by.Username, "turn", a.State.Turn)
	a.finish(record.OutcomeCaptured, by.Username)
	return nil
}

func (a *Agent) HandleGameEnded(env ipc.Envelope) error {
	var winner ipc.UserData
	if err := env.Arg(0, &winner); err != nil {
		return err
	}
	var replay string
	if len(env.Args) > 1 {
		_ = env.Arg(1, &replay)
	}
	outcome := record.OutcomeLost
	if winner.Color == a.State.Color {
		outcome = record.OutcomeWon
	}
	slog.Info("game ended", "winner", winner.Username, "outcome", outcome, "replay", replay)
	a.finish(outcome, winner.Username)
	return nil
}

func (a *Agent) finish(outcome, winner string) {
	a.State.Over = true
	a.prev = nil
	if a.Index == nil || a.matchID == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()
	if err := a.Index.FinishMatch(ctx, a.matchID, a.State.Turn, outcome, winner); err != nil {
		slog.Warn("match index unavailable", "error", err)
	}
}

// ReportHistory logs the last n recorded matches and returns how many of
// them we won.
func (a *Agent) ReportHistory(ctx context.Context, n int) (int, error) {
	if a.Index == nil {
		return 0, nil
	}
	ms, err := a.Index.Matches(ctx, n)
	if err != nil {
		return 0, fmt.Errorf("list matches: %w", err)
	}
	won := 0
	for _, m := range ms {
		if m.Outcome == record.OutcomeWon {
			won++
		}
		slog.Info("previous match", "room", m.Room, "turns", m.Turns, "outcome", m.Outcome, "winner", m.Winner)
	}
	slog.Info("match history", "matches", len(ms), "won", won)
	return won, nil
}

// HandleError logs server-side errors; they never stop the bot.
func (a *Agent) HandleError(env ipc.Envelope) error {
	var title, message string
	if len(env.Args) > 0 {
		_ = env.Arg(0, &title)
	}
	if len(env.Args) > 1 {
		_ = env.Arg(1, &message)
	}
	slog.Warn("server error", "title", title, "message", message)
	return nil
}
