package game

import (
	"math/rand"
)

// Status is the coarse lifecycle of a game.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusPlaying  Status = "PLAYING"
	StatusFinished Status = "FINISHED"
)

// Phase is the sub-phase of the current turn while the game is in progress.
type Phase string

const (
	PhaseAwaitingAction      Phase = "awaiting_action"
	PhaseChallengeWindow     Phase = "challenge_window"
	PhaseCounteractionWindow Phase = "counteraction_window"
	PhaseCounterChallenge    Phase = "counter_challenge_window"
	PhaseExchangeSelection   Phase = "exchange_selection"
)

// Player is the server-side view of a seat. Cards is owned exclusively by
// the server; it is never serialized to a non-owning client.
type Player struct {
	ID       string
	Name     string
	Coins    int
	Cards    []CardType
	Revealed []CardType
	Alive    bool
}

// PendingAction is a declared action waiting on its response windows.
type PendingAction struct {
	PlayerID string `json:"player_id"`
	Action   Action `json:"action"`
}

// PendingCounter is a declared block waiting on its challenge window.
type PendingCounter struct {
	PlayerID         string        `json:"player_id"`
	Counter          CounterAction `json:"counter_action"`
	ClaimedCharacter CardType      `json:"claimed_character"`
}

// LastAction summarizes the most recently resolved action for display.
type LastAction struct {
	Type   ActionType `json:"type"`
	Player string     `json:"player"`
	Target string     `json:"target,omitempty"`
	Amount int        `json:"amount,omitempty"`
}

type exchangeState struct {
	playerID string
	pool     []CardType
	keep     int
}

// Result reports a successful state transition back to the room so it can
// broadcast and, when a response window opened, schedule its deadline.
type Result struct {
	Message  string
	GameOver bool
	Winner   string

	// Window is non-empty when this transition opened a response window.
	// PhaseVersion is the token a deadline timer must present; a timer
	// firing with a stale token is a no-op.
	Window       Phase
	PhaseVersion uint64
}

// Game is the authoritative per-room state machine. It performs no I/O and
// holds no locks: the owning room serializes every call through its
// single-writer loop, which is the concurrency boundary.
type Game struct {
	RoomCode     string
	Status       Status
	Players      []*Player
	Deck         []CardType
	CurrentIndex int
	TurnNumber   int
	Phase        Phase
	PhaseVersion uint64
	Pending      *PendingAction
	Counter      *PendingCounter
	Last         *LastAction

	passed   map[string]bool
	exchange *exchangeState
	rng      *rand.Rand
}

func New(roomCode string, seed int64) *Game {
	return &Game{
		RoomCode: roomCode,
		Status:   StatusWaiting,
		passed:   make(map[string]bool),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// AddPlayer seats a player. Only legal before the game starts.
func (g *Game) AddPlayer(id, name string) error {
	if g.Status != StatusWaiting {
		return reject(RejectNotInProgress, "game already started")
	}
	g.Players = append(g.Players, &Player{ID: id, Name: name, Alive: true})
	return nil
}

// RemovePlayer unseats a player before the game starts. Mid-game departures
// go through Forfeit instead.
func (g *Game) RemovePlayer(id string) {
	if g.Status != StatusWaiting {
		return
	}
	for i, p := range g.Players {
		if p.ID == id {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			return
		}
	}
}

// Start deals hands and opens the first turn.
func (g *Game) Start() error {
	if g.Status != StatusWaiting {
		return reject(RejectNotInProgress, "game already started")
	}
	if len(g.Players) < 2 {
		return reject(RejectNotInProgress, "not enough players")
	}

	g.Deck = newDeck(g.rng)
	for _, p := range g.Players {
		p.Cards = []CardType{g.draw(), g.draw()}
		p.Coins = StartingCoins
		p.Alive = true
	}
	g.Status = StatusPlaying
	g.CurrentIndex = 0
	g.TurnNumber = 1
	g.setPhase(PhaseAwaitingAction)
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil before start.
func (g *Game) CurrentPlayer() *Player {
	if len(g.Players) == 0 || g.CurrentIndex >= len(g.Players) {
		return nil
	}
	return g.Players[g.CurrentIndex]
}

func (g *Game) playerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// SubmitAction declares the current player's action for this turn.
func (g *Game) SubmitAction(playerID string, a Action) (*Result, error) {
	if g.Status != StatusPlaying {
		return nil, reject(RejectNotInProgress, "game is not in progress")
	}
	player := g.playerByID(playerID)
	if player == nil || !player.Alive {
		return nil, reject(RejectNotYourTurn, "player is not in the game")
	}
	if current := g.CurrentPlayer(); current == nil || current.ID != playerID {
		return nil, reject(RejectNotYourTurn, "not your turn")
	}
	if g.Phase != PhaseAwaitingAction {
		return nil, reject(RejectWindowClosed, "a response window is open")
	}
	if !knownAction(a.Type) {
		return nil, reject(RejectUnknownActionType, "unknown action type %q", a.Type)
	}
	if player.Coins >= MustCoupAt && a.Type != ActionCoup {
		return nil, reject(RejectMustCoup, "you must coup with %d or more coins", MustCoupAt)
	}

	switch a.Type {
	case ActionCoup:
		if player.Coins < CoupCost {
			return nil, reject(RejectInsufficientCoins, "coup costs %d coins", CoupCost)
		}
	case ActionAssassinate:
		if player.Coins < AssassinateCost {
			return nil, reject(RejectInsufficientCoins, "assassination costs %d coins", AssassinateCost)
		}
	}

	var target *Player
	if requiresTarget(a.Type) {
		if a.TargetID == "" {
			return nil, reject(RejectInvalidTarget, "%s requires a target", a.Type)
		}
		if a.TargetID == playerID {
			return nil, reject(RejectInvalidTarget, "cannot target yourself")
		}
		target = g.playerByID(a.TargetID)
		if target == nil || !target.Alive || len(target.Cards) == 0 {
			return nil, reject(RejectInvalidTarget, "target has no concealed cards")
		}
		if a.Type == ActionSteal && target.Coins == 0 {
			return nil, reject(RejectInvalidTarget, "target has no coins to steal")
		}
	}

	// Income and coup have no response windows: they resolve immediately.
	switch a.Type {
	case ActionIncome:
		player.Coins++
		g.Last = &LastAction{Type: ActionIncome, Player: player.Name}
		g.nextTurn()
		return &Result{Message: player.Name + " took income"}, nil

	case ActionCoup:
		player.Coins -= CoupCost
		g.loseCard(target, a.CardIndex)
		g.Last = &LastAction{Type: ActionCoup, Player: player.Name, Target: target.Name}
		if over := g.checkGameOver(); over != nil {
			return over, nil
		}
		g.nextTurn()
		return &Result{Message: player.Name + " launched a coup against " + target.Name}, nil
	}

	g.Pending = &PendingAction{PlayerID: playerID, Action: a}

	if _, claims := claimedCharacter[a.Type]; claims {
		g.setPhase(PhaseChallengeWindow)
		return &Result{
			Message:      player.Name + " is attempting " + string(a.Type),
			Window:       PhaseChallengeWindow,
			PhaseVersion: g.PhaseVersion,
		}, nil
	}

	// Foreign aid claims nothing but is blockable by duke.
	g.setPhase(PhaseCounteractionWindow)
	return &Result{
		Message:      player.Name + " is attempting to take foreign aid",
		Window:       PhaseCounteractionWindow,
		PhaseVersion: g.PhaseVersion,
	}, nil
}

// SubmitChallenge disputes the claimed character behind the pending action,
// or behind the pending counteraction when one is on the table.
func (g *Game) SubmitChallenge(challengerID string) (*Result, error) {
	if g.Status != StatusPlaying {
		return nil, reject(RejectNotInProgress, "game is not in progress")
	}
	if g.Phase != PhaseChallengeWindow && g.Phase != PhaseCounterChallenge {
		return nil, reject(RejectWindowClosed, "no claim to challenge")
	}
	if !g.isEligibleResponder(challengerID) {
		return nil, reject(RejectWindowClosed, "you cannot challenge this claim")
	}
	challenger := g.playerByID(challengerID)

	if g.Phase == PhaseCounterChallenge {
		return g.resolveCounterChallenge(challenger)
	}

	defender := g.playerByID(g.Pending.PlayerID)
	claimed := claimedCharacter[g.Pending.Action.Type]

	if defender.holds(claimed) {
		// Challenge fails: challenger reveals a card, defender's claimed
		// card is shuffled back and replaced, and the action proceeds.
		g.loseCard(challenger, 0)
		g.replaceCard(defender, claimed)
		if over := g.checkGameOver(); over != nil {
			return over, nil
		}
		msg := "Challenge failed! " + defender.Name + " had the " + string(claimed) +
			". " + challenger.Name + " loses a card."
		res := g.proceedAfterChallenge()
		res.Message = msg + " " + res.Message
		return res, nil
	}

	// Challenge succeeds: action cancelled, defender reveals a card, turn
	// is forfeit.
	g.loseCard(defender, 0)
	g.Pending = nil
	if over := g.checkGameOver(); over != nil {
		return over, nil
	}
	g.nextTurn()
	return &Result{
		Message: "Challenge successful! " + defender.Name + " did not have the " +
			string(claimed) + " and loses a card.",
	}, nil
}

func (g *Game) resolveCounterChallenge(challenger *Player) (*Result, error) {
	defender := g.playerByID(g.Counter.PlayerID)
	claimed := g.Counter.ClaimedCharacter

	if defender.holds(claimed) {
		g.loseCard(challenger, 0)
		g.replaceCard(defender, claimed)
		if over := g.checkGameOver(); over != nil {
			return over, nil
		}
		// Block stands: the original action is cancelled.
		g.Pending = nil
		g.Counter = nil
		g.nextTurn()
		return &Result{
			Message: "Challenge failed! " + defender.Name + " had the " + string(claimed) +
				". " + challenger.Name + " loses a card. Action blocked.",
		}, nil
	}

	// Block was a bluff: blocker reveals a card and the action proceeds.
	g.loseCard(defender, 0)
	g.Counter = nil
	if over := g.checkGameOver(); over != nil {
		return over, nil
	}
	msg := "Challenge successful! " + defender.Name + " did not have the " +
		string(claimed) + " and loses a card."
	res := g.resolveAction()
	res.Message = msg + " " + res.Message
	return res, nil
}

// PassChallenge records an explicit decline in the open challenge window.
// The window closes once every eligible opponent has declined.
func (g *Game) PassChallenge(playerID string) (*Result, error) {
	if g.Status != StatusPlaying {
		return nil, reject(RejectNotInProgress, "game is not in progress")
	}
	if g.Phase != PhaseChallengeWindow && g.Phase != PhaseCounterChallenge {
		return nil, reject(RejectWindowClosed, "no challenge window is open")
	}
	if !g.isEligibleResponder(playerID) {
		return nil, reject(RejectWindowClosed, "you are not part of this window")
	}
	g.passed[playerID] = true
	if !g.allEligiblePassed() {
		return &Result{Message: g.playerByID(playerID).Name + " passed"}, nil
	}
	return g.windowAllPassed(), nil
}

// SubmitCounter declares a block against the pending action.
func (g *Game) SubmitCounter(playerID string, c CounterAction) (*Result, error) {
	if g.Status != StatusPlaying {
		return nil, reject(RejectNotInProgress, "game is not in progress")
	}
	if g.Phase != PhaseCounteractionWindow {
		return nil, reject(RejectWindowClosed, "no action to counter")
	}
	if !g.isEligibleResponder(playerID) {
		return nil, reject(RejectInvalidCounter, "you cannot block this action")
	}
	blocker := g.playerByID(playerID)
	action := g.Pending.Action.Type

	want, blockable := counterFor[action]
	if !blockable || c.Type != want {
		return nil, reject(RejectInvalidCounter, "%s cannot block %s", c.Type, action)
	}

	var claimed CardType
	switch c.Type {
	case CounterBlockForeignAid:
		claimed = Duke
	case CounterBlockAssassination:
		claimed = Contessa
	case CounterBlockStealing:
		claimed = c.Character
		if claimed == "" {
			claimed = Captain
		}
		if claimed != Captain && claimed != Ambassador {
			return nil, reject(RejectInvalidCounter, "stealing can only be blocked with captain or ambassador")
		}
	}

	g.Counter = &PendingCounter{PlayerID: playerID, Counter: c, ClaimedCharacter: claimed}
	g.setPhase(PhaseCounterChallenge)
	return &Result{
		Message:      blocker.Name + " is blocking " + string(action) + " with " + string(claimed),
		Window:       PhaseCounterChallenge,
		PhaseVersion: g.PhaseVersion,
	}, nil
}

// PassCounter records an explicit decline in the open counteraction window.
func (g *Game) PassCounter(playerID string) (*Result, error) {
	if g.Status != StatusPlaying {
		return nil, reject(RejectNotInProgress, "game is not in progress")
	}
	if g.Phase != PhaseCounteractionWindow {
		return nil, reject(RejectWindowClosed, "no counteraction window is open")
	}
	if !g.isEligibleResponder(playerID) {
		return nil, reject(RejectWindowClosed, "you are not part of this window")
	}
	g.passed[playerID] = true
	if !g.allEligiblePassed() {
		return &Result{Message: g.playerByID(playerID).Name + " passed"}, nil
	}
	return g.windowAllPassed(), nil
}

// CompleteExchange finishes an ambassador exchange by choosing which cards
// to keep from the hand plus the two drawn cards.
func (g *Game) CompleteExchange(playerID string, kept []int) (*Result, error) {
	if g.Status != StatusPlaying {
		return nil, reject(RejectNotInProgress, "game is not in progress")
	}
	if g.Phase != PhaseExchangeSelection || g.exchange == nil {
		return nil, reject(RejectWindowClosed, "no exchange in progress")
	}
	if g.exchange.playerID != playerID {
		return nil, reject(RejectNotYourTurn, "not your exchange")
	}

	ex := g.exchange
	if len(kept) != ex.keep {
		return nil, reject(RejectInvalidExchange, "you must keep exactly %d cards", ex.keep)
	}
	seen := make(map[int]bool, len(kept))
	for _, i := range kept {
		if i < 0 || i >= len(ex.pool) || seen[i] {
			return nil, reject(RejectInvalidExchange, "invalid card indices")
		}
		seen[i] = true
	}

	player := g.playerByID(playerID)
	hand := make([]CardType, 0, ex.keep)
	for _, i := range kept {
		hand = append(hand, ex.pool[i])
	}
	for i, card := range ex.pool {
		if !seen[i] {
			g.Deck = append(g.Deck, card)
		}
	}
	g.shuffleDeck()
	player.Cards = hand
	g.exchange = nil

	g.Last = &LastAction{Type: ActionExchange, Player: player.Name}
	g.nextTurn()
	return &Result{Message: player.Name + " completed the exchange"}, nil
}

// WindowTimeout closes the current response window as if every remaining
// opponent had passed. version is the phase token captured when the timer
// was scheduled; a stale token means the window already closed and the
// timeout is a no-op.
func (g *Game) WindowTimeout(version uint64) (*Result, bool) {
	if g.Status != StatusPlaying || version != g.PhaseVersion {
		return nil, false
	}
	switch g.Phase {
	case PhaseChallengeWindow, PhaseCounterChallenge, PhaseCounteractionWindow:
		return g.windowAllPassed(), true
	}
	return nil, false
}

// Forfeit handles a mid-game departure: the player's hand is revealed and
// they are eliminated immediately (no reconnection grace). If they were
// party to the pending exchange or a response window, the game moves on as
// if they had declined.
func (g *Game) Forfeit(playerID string) (*Result, bool) {
	if g.Status != StatusPlaying {
		g.RemovePlayer(playerID)
		return nil, false
	}
	player := g.playerByID(playerID)
	if player == nil || !player.Alive {
		return nil, false
	}

	for len(player.Cards) > 0 {
		g.loseCard(player, 0)
	}
	delete(g.passed, playerID)

	if over := g.checkGameOver(); over != nil {
		over.Message = player.Name + " left the game. " + over.Message
		return over, true
	}

	switch {
	case g.Pending != nil && g.Pending.PlayerID == playerID:
		// The acting player is gone: the action dies with them.
		g.Pending = nil
		g.Counter = nil
		g.nextTurn()
		return &Result{Message: player.Name + " left the game; action cancelled"}, true

	case g.Counter != nil && g.Counter.PlayerID == playerID:
		// The blocker is gone: the original action proceeds.
		g.Counter = nil
		res := g.resolveAction()
		res.Message = player.Name + " left the game. " + res.Message
		return res, true

	case g.Phase == PhaseAwaitingAction && g.CurrentPlayer() != nil && g.CurrentPlayer().ID == playerID:
		g.nextTurn()
		return &Result{Message: player.Name + " left the game"}, true

	case g.Phase == PhaseExchangeSelection && g.exchange != nil && g.exchange.playerID == playerID:
		g.exchange = nil
		g.nextTurn()
		return &Result{Message: player.Name + " left the game"}, true
	}

	// In a response window their elimination may complete unanimity.
	if g.inWindow() && g.allEligiblePassed() {
		res := g.windowAllPassed()
		res.Message = player.Name + " left the game. " + res.Message
		return res, true
	}
	return &Result{Message: player.Name + " left the game"}, true
}

// --- internals ---

func (p *Player) holds(c CardType) bool {
	for _, card := range p.Cards {
		if card == c {
			return true
		}
	}
	return false
}

func (g *Game) draw() CardType {
	card := g.Deck[len(g.Deck)-1]
	g.Deck = g.Deck[:len(g.Deck)-1]
	return card
}

func (g *Game) shuffleDeck() {
	g.rng.Shuffle(len(g.Deck), func(i, j int) {
		g.Deck[i], g.Deck[j] = g.Deck[j], g.Deck[i]
	})
}

// loseCard moves one concealed card to the player's revealed pile. The
// second reveal eliminates the player on the spot.
func (g *Game) loseCard(p *Player, index int) {
	if p == nil || len(p.Cards) == 0 {
		return
	}
	if index < 0 || index >= len(p.Cards) {
		index = 0
	}
	card := p.Cards[index]
	p.Cards = append(p.Cards[:index], p.Cards[index+1:]...)
	p.Revealed = append(p.Revealed, card)
	if len(p.Cards) == 0 {
		p.Alive = false
	}
}

// replaceCard returns the revealed claimed card to the deck and deals a
// replacement, leaving the defender's card count unchanged.
func (g *Game) replaceCard(p *Player, claimed CardType) {
	for i, card := range p.Cards {
		if card == claimed {
			p.Cards = append(p.Cards[:i], p.Cards[i+1:]...)
			break
		}
	}
	g.Deck = append(g.Deck, claimed)
	g.shuffleDeck()
	p.Cards = append(p.Cards, g.draw())
}

func (g *Game) setPhase(p Phase) {
	g.Phase = p
	g.PhaseVersion++
	clear(g.passed)
}

func (g *Game) inWindow() bool {
	switch g.Phase {
	case PhaseChallengeWindow, PhaseCounterChallenge, PhaseCounteractionWindow:
		return true
	}
	return false
}

// eligibleResponders lists the living players allowed to act in the open
// window. Challenges are open to everyone but the claimant; blocks against
// assassinate/steal belong to the target alone.
func (g *Game) eligibleResponders() []string {
	var exclude string
	var only string

	switch g.Phase {
	case PhaseChallengeWindow:
		exclude = g.Pending.PlayerID
	case PhaseCounterChallenge:
		exclude = g.Counter.PlayerID
	case PhaseCounteractionWindow:
		exclude = g.Pending.PlayerID
		if g.Pending.Action.Type != ActionForeignAid {
			only = g.Pending.Action.TargetID
		}
	default:
		return nil
	}

	var ids []string
	for _, p := range g.Players {
		if !p.Alive || p.ID == exclude {
			continue
		}
		if only != "" && p.ID != only {
			continue
		}
		ids = append(ids, p.ID)
	}
	return ids
}

func (g *Game) isEligibleResponder(id string) bool {
	for _, eligible := range g.eligibleResponders() {
		if eligible == id {
			return !g.passed[id]
		}
	}
	return false
}

func (g *Game) allEligiblePassed() bool {
	for _, id := range g.eligibleResponders() {
		if !g.passed[id] {
			return false
		}
	}
	return true
}

// windowAllPassed advances past a window that closed without a response.
func (g *Game) windowAllPassed() *Result {
	switch g.Phase {
	case PhaseChallengeWindow:
		res := g.proceedAfterChallenge()
		res.Message = "No one challenged. " + res.Message
		return res

	case PhaseCounterChallenge:
		// The block stands unchallenged: the original action is cancelled.
		blocker := g.playerByID(g.Counter.PlayerID)
		g.Pending = nil
		g.Counter = nil
		g.nextTurn()
		return &Result{Message: "No one challenged. " + blocker.Name + "'s block succeeds."}

	case PhaseCounteractionWindow:
		res := g.resolveAction()
		res.Message = "No one blocked. " + res.Message
		return res
	}
	return &Result{}
}

// proceedAfterChallenge moves a surviving claimed action onward: blockable
// actions get their counteraction window (if the blocker is still able),
// everything else resolves.
func (g *Game) proceedAfterChallenge() *Result {
	action := g.Pending.Action
	if _, blockable := counterFor[action.Type]; blockable {
		if action.Type == ActionForeignAid || g.targetCanBlock(action) {
			g.setPhase(PhaseCounteractionWindow)
			return &Result{
				Message:      "The action can still be blocked.",
				Window:       PhaseCounteractionWindow,
				PhaseVersion: g.PhaseVersion,
			}
		}
	}
	return g.resolveAction()
}

func (g *Game) targetCanBlock(a Action) bool {
	target := g.playerByID(a.TargetID)
	return target != nil && target.Alive
}

// resolveAction applies the pending action's effect. Coin costs and gains
// land here and nowhere else.
func (g *Game) resolveAction() *Result {
	pending := g.Pending
	g.Pending = nil
	g.Counter = nil
	if pending == nil {
		return &Result{}
	}

	player := g.playerByID(pending.PlayerID)
	action := pending.Action

	switch action.Type {
	case ActionTax:
		player.Coins += TaxGain
		g.Last = &LastAction{Type: ActionTax, Player: player.Name, Amount: TaxGain}
		g.nextTurn()
		return &Result{Message: player.Name + " took tax (3 coins)"}

	case ActionForeignAid:
		player.Coins += ForeignAidGain
		g.Last = &LastAction{Type: ActionForeignAid, Player: player.Name, Amount: ForeignAidGain}
		g.nextTurn()
		return &Result{Message: player.Name + " took foreign aid (2 coins)"}

	case ActionAssassinate:
		target := g.playerByID(action.TargetID)
		if target == nil || !target.Alive {
			// Target already fell during the windows; the contract fizzles
			// and no coins change hands.
			g.nextTurn()
			return &Result{Message: player.Name + "'s assassination target is already out"}
		}
		player.Coins -= AssassinateCost
		g.loseCard(target, action.CardIndex)
		g.Last = &LastAction{Type: ActionAssassinate, Player: player.Name, Target: target.Name}
		if over := g.checkGameOver(); over != nil {
			return over
		}
		g.nextTurn()
		return &Result{Message: player.Name + " assassinated " + target.Name}

	case ActionSteal:
		target := g.playerByID(action.TargetID)
		if target == nil || !target.Alive {
			g.nextTurn()
			return &Result{Message: player.Name + "'s steal target is already out"}
		}
		amount := StealMax
		if target.Coins < amount {
			amount = target.Coins
		}
		target.Coins -= amount
		player.Coins += amount
		g.Last = &LastAction{Type: ActionSteal, Player: player.Name, Target: target.Name, Amount: amount}
		g.nextTurn()
		return &Result{Message: player.Name + " stole coins from " + target.Name}

	case ActionExchange:
		if len(g.Deck) < 2 {
			g.nextTurn()
			return &Result{Message: "not enough cards left to exchange"}
		}
		pool := append([]CardType{}, player.Cards...)
		pool = append(pool, g.draw(), g.draw())
		g.exchange = &exchangeState{playerID: player.ID, pool: pool, keep: len(player.Cards)}
		g.setPhase(PhaseExchangeSelection)
		return &Result{Message: player.Name + " is exchanging cards"}
	}
	return &Result{}
}

// nextTurn closes out the current turn: pending state is cleared, the turn
// counter advances exactly once, and play moves to the next living player.
func (g *Game) nextTurn() {
	g.Pending = nil
	g.Counter = nil
	g.exchange = nil

	if len(g.Players) == 0 {
		return
	}
	start := g.CurrentIndex
	for {
		g.CurrentIndex = (g.CurrentIndex + 1) % len(g.Players)
		if g.Players[g.CurrentIndex].Alive {
			break
		}
		if g.CurrentIndex == start {
			break
		}
	}
	g.TurnNumber++
	g.setPhase(PhaseAwaitingAction)
}

// checkGameOver transitions to FINISHED when at most one player remains,
// regardless of phase. Returns a terminal Result, or nil.
func (g *Game) checkGameOver() *Result {
	var winner *Player
	alive := 0
	for _, p := range g.Players {
		if p.Alive {
			alive++
			winner = p
		}
	}
	if alive > 1 {
		return nil
	}

	g.Status = StatusFinished
	g.Pending = nil
	g.Counter = nil
	g.exchange = nil
	g.PhaseVersion++

	name := ""
	if winner != nil {
		name = winner.Name
	}
	return &Result{Message: name + " wins!", GameOver: true, Winner: name}
}
