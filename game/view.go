package game

// PlayerView is the public projection of a seat. Concealed cards are only
// populated with real values for the owning recipient; everyone else sees
// hidden placeholders of the right count.
type PlayerView struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Coins         int        `json:"coins"`
	Cards         []CardType `json:"cards"`
	RevealedCards []CardType `json:"revealed_cards"`
	IsAlive       bool       `json:"is_alive"`
}

// View is the personalized per-recipient snapshot broadcast after every
// state transition. At most one of PendingAction/PendingCounteraction is
// set, and the two window flags are never both true.
type View struct {
	RoomCode                string          `json:"room_code"`
	Status                  Status          `json:"status"`
	Players                 []PlayerView    `json:"players"`
	CurrentPlayer           string          `json:"current_player"`
	TurnNumber              int             `json:"turn_number"`
	IsYourTurn              bool            `json:"is_your_turn"`
	ChallengeWindowOpen     bool            `json:"challenge_window_open"`
	CounteractionWindowOpen bool            `json:"counteraction_window_open"`
	PendingAction           *PendingAction  `json:"pending_action,omitempty"`
	PendingCounteraction    *PendingCounter `json:"pending_counteraction,omitempty"`
	CardsLeft               int             `json:"cards_left"`
	LastAction              *LastAction     `json:"last_action,omitempty"`
	ExchangeCards           []CardType      `json:"exchange_cards,omitempty"`
}

// ViewFor builds the snapshot personalized for recipientID.
func (g *Game) ViewFor(recipientID string) *View {
	v := &View{
		RoomCode:   g.RoomCode,
		Status:     g.Status,
		TurnNumber: g.TurnNumber,
		CardsLeft:  len(g.Deck),
		LastAction: g.Last,
	}

	for _, p := range g.Players {
		pv := PlayerView{
			ID:            p.ID,
			Name:          p.Name,
			Coins:         p.Coins,
			RevealedCards: append([]CardType{}, p.Revealed...),
			IsAlive:       p.Alive,
		}
		if p.ID == recipientID {
			pv.Cards = append([]CardType{}, p.Cards...)
		} else {
			pv.Cards = make([]CardType, len(p.Cards))
			for i := range pv.Cards {
				pv.Cards[i] = CardHidden
			}
		}
		v.Players = append(v.Players, pv)
	}

	if current := g.CurrentPlayer(); current != nil && g.Status == StatusPlaying {
		v.CurrentPlayer = current.ID
		v.IsYourTurn = current.ID == recipientID && g.Phase == PhaseAwaitingAction
	}

	v.ChallengeWindowOpen = g.Phase == PhaseChallengeWindow || g.Phase == PhaseCounterChallenge
	v.CounteractionWindowOpen = g.Phase == PhaseCounteractionWindow

	// The two pendings represent mutually exclusive phases on the wire.
	if g.Counter != nil {
		v.PendingCounteraction = g.Counter
	} else if g.Pending != nil {
		v.PendingAction = g.Pending
	}

	if g.exchange != nil && g.exchange.playerID == recipientID {
		v.ExchangeCards = append([]CardType{}, g.exchange.pool...)
	}

	return v
}
