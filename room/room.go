package room

import (
	"sync"
	"time"

	"github.com/lukeharwood11/coup-o-clock/config"
	"github.com/lukeharwood11/coup-o-clock/game"
	"github.com/lukeharwood11/coup-o-clock/logger"
	"github.com/lukeharwood11/coup-o-clock/network"
	"github.com/lukeharwood11/coup-o-clock/timer"
)

type slot struct {
	id    string
	name  string
	ready bool
}

// Room owns one authoritative game instance. A single goroutine consumes the
// inbox and performs every state transition, so the game needs no locking
// and clients never observe a half-applied transition. Window deadlines are
// scheduled on the shared timer manager and re-enter through the inbox
// carrying a phase token; a stale token is a no-op.
type Room struct {
	Code string

	cfg         config.GameConfig
	game        *game.Game
	slots       map[string]*slot
	inbox       chan Msg
	broadcaster Broadcaster
	timers      *timer.Manager

	windowTimerID int64
	startedAt     time.Time

	onEmpty    func(code string)
	onGameOver func(summary GameSummary)

	closed    chan struct{}
	closeOnce sync.Once
}

func NewRoom(code string, cfg config.GameConfig, b Broadcaster, timers *timer.Manager,
	onEmpty func(code string), onGameOver func(summary GameSummary)) *Room {

	r := &Room{
		Code:        code,
		cfg:         cfg,
		game:        game.New(code, time.Now().UnixNano()),
		slots:       make(map[string]*slot),
		inbox:       make(chan Msg, 64),
		broadcaster: b,
		timers:      timers,
		onEmpty:     onEmpty,
		onGameOver:  onGameOver,
		closed:      make(chan struct{}),
	}
	go r.loop()
	return r
}

// Post submits a message to the room's single-writer loop. Returns
// ErrRoomClosed once the room has been torn down.
func (r *Room) Post(m Msg) error {
	select {
	case r.inbox <- m:
		return nil
	case <-r.closed:
		return ErrRoomClosed
	}
}

// Join seats a player synchronously and returns the current player list.
func (r *Room) Join(playerID, playerName string) ([]string, error) {
	reply := make(chan JoinReply, 1)
	if err := r.Post(Join{PlayerID: playerID, PlayerName: playerName, Reply: reply}); err != nil {
		return nil, err
	}
	res := <-reply
	return res.Players, res.Err
}

// Info returns a point-in-time summary, or a zero Info if the room closed.
func (r *Room) Info() Info {
	reply := make(chan Info, 1)
	if err := r.Post(GetInfo{Reply: reply}); err != nil {
		return Info{Code: r.Code}
	}
	return <-reply
}

func (r *Room) stop() {
	r.closeOnce.Do(func() { close(r.closed) })
}

func (r *Room) loop() {
	for {
		select {
		case <-r.closed:
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				msg.Reply <- r.handleJoin(msg)
			case Leave:
				r.handleLeave(msg.PlayerID)
			case Chat:
				r.handleChat(msg)
			case Ready:
				r.handleReady(msg)
			case GameCommand:
				r.handleGameCommand(msg)
			case windowTimeout:
				r.handleWindowTimeout(msg.version)
			case emptyCheck:
				if len(r.slots) == 0 {
					r.teardown()
					return
				}
			case GetInfo:
				msg.Reply <- r.info()
			case GetView:
				msg.Reply <- r.game.ViewFor(msg.PlayerID)
			case Shutdown:
				r.teardown()
				return
			}
		}
	}
}

func (r *Room) teardown() {
	r.stop()
	if r.windowTimerID != 0 {
		r.timers.RemoveTimer(r.windowTimerID)
	}
	if r.onEmpty != nil {
		r.onEmpty(r.Code)
	}
}

func (r *Room) info() Info {
	return Info{
		Code:        r.Code,
		Status:      r.game.Status,
		PlayerCount: len(r.slots),
		Players:     r.playerNames(),
	}
}

func (r *Room) playerNames() []string {
	names := make([]string, 0, len(r.game.Players))
	for _, p := range r.game.Players {
		names = append(names, p.Name)
	}
	return names
}

func (r *Room) sessionIDs() []string {
	ids := make([]string, 0, len(r.slots))
	for id := range r.slots {
		ids = append(ids, id)
	}
	return ids
}

func (r *Room) handleJoin(msg Join) JoinReply {
	if r.game.Status != game.StatusWaiting {
		return JoinReply{Err: ErrGameInProgress}
	}
	if len(r.slots) >= r.cfg.MaxPlayers {
		return JoinReply{Err: ErrRoomFull}
	}
	for _, s := range r.slots {
		if s.name == msg.PlayerName {
			return JoinReply{Err: ErrDuplicateName}
		}
	}

	r.slots[msg.PlayerID] = &slot{id: msg.PlayerID, name: msg.PlayerName}
	if err := r.game.AddPlayer(msg.PlayerID, msg.PlayerName); err != nil {
		delete(r.slots, msg.PlayerID)
		return JoinReply{Err: err}
	}

	players := r.playerNames()
	r.broadcaster.BroadcastToSessions(r.sessionIDs(), network.MsgTypePlayerJoined,
		network.PlayerJoinedPayload{PlayerName: msg.PlayerName, Players: players})
	return JoinReply{Players: players}
}

func (r *Room) handleLeave(playerID string) {
	s, exists := r.slots[playerID]
	if !exists {
		return
	}
	delete(r.slots, playerID)
	r.game.RemovePlayer(playerID)

	r.broadcaster.BroadcastToSessions(r.sessionIDs(), network.MsgTypePlayerLeft,
		network.PlayerLeftPayload{PlayerName: s.name, Players: r.playerNames()})

	if r.game.Status == game.StatusPlaying {
		// Disconnecting mid-game forfeits the hand and counts as a decline
		// in any open window.
		if res, changed := r.game.Forfeit(playerID); changed {
			r.finishTransition("forfeit", s.name, res)
		}
	}

	if len(r.slots) == 0 {
		grace := r.cfg.EmptyRoomGrace
		r.timers.AddTimer(grace, 0, func() {
			_ = r.Post(emptyCheck{})
		})
	}
}

func (r *Room) handleChat(msg Chat) {
	s, exists := r.slots[msg.PlayerID]
	if !exists {
		return
	}
	r.broadcaster.BroadcastToSessions(r.sessionIDs(), network.MsgTypeChat,
		network.ChatPayload{MessageID: msg.MessageID, Player: s.name, Message: msg.Text})
}

func (r *Room) handleReady(msg Ready) {
	s, exists := r.slots[msg.PlayerID]
	if !exists || r.game.Status != game.StatusWaiting {
		return
	}
	s.ready = msg.Ready

	r.broadcaster.BroadcastToSessions(r.sessionIDs(), network.MsgTypePlayerReady,
		network.PlayerReadyPayload{Player: s.name, IsReady: msg.Ready})

	if len(r.slots) < r.cfg.MinPlayers {
		return
	}
	for _, s := range r.slots {
		if !s.ready {
			return
		}
	}
	r.startGame()
}

func (r *Room) startGame() {
	if err := r.game.Start(); err != nil {
		logger.Log.Errorf("Room %s failed to start game: %v", r.Code, err)
		return
	}
	r.startedAt = time.Now()
	logger.Log.Infof("Game started in room %s with players: %v", r.Code, r.playerNames())

	r.broadcaster.BroadcastToSessions(r.sessionIDs(), network.MsgTypeGameStart,
		network.GameStartPayload{Players: r.playerNames()})
	r.broadcastState()
}

func (r *Room) handleGameCommand(msg GameCommand) {
	s, exists := r.slots[msg.PlayerID]
	if !exists {
		return
	}

	var res *game.Result
	var err error

	switch msg.Request.Type {
	case network.GameActionPerform:
		if msg.Request.GameAction == nil {
			err = &game.Rejection{Code: game.RejectUnknownActionType, Reason: "no game action specified"}
		} else {
			res, err = r.game.SubmitAction(msg.PlayerID, *msg.Request.GameAction)
		}
	case network.GameActionChallenge:
		res, err = r.game.SubmitChallenge(msg.PlayerID)
	case network.GameActionPassChallenge:
		res, err = r.game.PassChallenge(msg.PlayerID)
	case network.GameActionCounter:
		if msg.Request.CounterAction == nil {
			err = &game.Rejection{Code: game.RejectInvalidCounter, Reason: "no counter action specified"}
		} else {
			res, err = r.game.SubmitCounter(msg.PlayerID, *msg.Request.CounterAction)
		}
	case network.GameActionPassCounter:
		res, err = r.game.PassCounter(msg.PlayerID)
	case network.GameActionCompleteExchange:
		res, err = r.game.CompleteExchange(msg.PlayerID, msg.Request.KeptIndices)
	default:
		err = &game.Rejection{Code: game.RejectUnknownActionType,
			Reason: "unknown action type: " + msg.Request.Type}
	}

	if err != nil {
		// Rule violations go back to the offending client only; shared
		// state is untouched.
		r.sendRejection(msg.PlayerID, err)
		return
	}
	r.finishTransition(msg.Request.Type, s.name, res)
}

func (r *Room) sendRejection(playerID string, err error) {
	payload := network.ErrorPayload{Code: string(game.RejectUnknownActionType), Message: err.Error()}
	if rej, ok := err.(*game.Rejection); ok {
		payload = network.ErrorPayload{Code: string(rej.Code), Message: rej.Reason}
	}
	if sendErr := r.broadcaster.SendToSession(playerID, network.MsgTypeError, payload); sendErr != nil {
		logger.Log.Warnf("Room %s could not deliver rejection to %s: %v", r.Code, playerID, sendErr)
	}
}

// finishTransition is the common tail of every successful mutation:
// broadcast the result, reschedule the window deadline, push fresh
// personalized snapshots, and settle the game if it just ended.
func (r *Room) finishTransition(actionType, playerName string, res *game.Result) {
	if res == nil {
		return
	}

	r.broadcaster.BroadcastToSessions(r.sessionIDs(), network.MsgTypeGameActionResult,
		network.GameActionResultPayload{ActionType: actionType, Player: playerName, Message: res.Message})

	if r.windowTimerID != 0 {
		r.timers.RemoveTimer(r.windowTimerID)
		r.windowTimerID = 0
	}
	if res.Window != "" {
		duration := r.cfg.ChallengeWindow
		if res.Window == game.PhaseCounteractionWindow {
			duration = r.cfg.CounteractionWindow
		}
		version := res.PhaseVersion
		r.windowTimerID = r.timers.AddTimer(duration, 0, func() {
			_ = r.Post(windowTimeout{version: version})
		})
	}

	r.broadcastState()

	if res.GameOver {
		r.broadcaster.BroadcastToSessions(r.sessionIDs(), network.MsgTypeGameOver,
			network.GameOverPayload{Winner: res.Winner})
		r.settle(res.Winner)
	}
}

func (r *Room) handleWindowTimeout(version uint64) {
	res, fired := r.game.WindowTimeout(version)
	if !fired {
		return
	}
	logger.Log.Infof("Room %s response window timed out", r.Code)
	r.finishTransition("timeout", "", res)
}

func (r *Room) broadcastState() {
	for id := range r.slots {
		payload := network.GameStatePayload{State: r.game.ViewFor(id)}
		if err := r.broadcaster.SendToSession(id, network.MsgTypeGameState, payload); err != nil {
			logger.Log.Warnf("Room %s could not send state to %s: %v", r.Code, id, err)
		}
	}
}

func (r *Room) settle(winner string) {
	if r.onGameOver == nil {
		return
	}
	summary := GameSummary{
		RoomCode: r.Code,
		Winner:   winner,
		Duration: time.Since(r.startedAt),
	}
	for _, p := range r.game.Players {
		outcome := "lose"
		if p.Name == winner {
			outcome = "win"
		}
		summary.Players = append(summary.Players, PlayerOutcome{
			PlayerID: p.ID, Name: p.Name, Outcome: outcome,
		})
	}
	// Persistence runs off the room loop so a slow database never stalls
	// the game.
	go r.onGameOver(summary)
}
