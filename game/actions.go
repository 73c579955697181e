package game

// ActionType is a turn-consuming move declared by the current player.
type ActionType string

const (
	ActionIncome      ActionType = "income"
	ActionForeignAid  ActionType = "foreign_aid"
	ActionCoup        ActionType = "coup"
	ActionTax         ActionType = "tax"
	ActionAssassinate ActionType = "assassinate"
	ActionSteal       ActionType = "steal"
	ActionExchange    ActionType = "exchange"
)

// CounterType is a claimed-character block response to a pending action.
type CounterType string

const (
	CounterBlockForeignAid    CounterType = "block_foreign_aid"
	CounterBlockAssassination CounterType = "block_assassination"
	CounterBlockStealing      CounterType = "block_stealing"
)

const (
	CoupCost        = 7
	AssassinateCost = 3
	MustCoupAt      = 10
	TaxGain         = 3
	ForeignAidGain  = 2
	StealMax        = 2
)

// Action is the open-ended tagged record submitted over the wire.
type Action struct {
	Type      ActionType `json:"action_type"`
	TargetID  string     `json:"target_id,omitempty"`
	CardIndex int        `json:"card_index,omitempty"`
}

// CounterAction blocks a pending action. Character is only meaningful for
// block_stealing, where either captain or ambassador can be claimed.
type CounterAction struct {
	Type      CounterType `json:"counter_type"`
	Character CardType    `json:"character,omitempty"`
}

// claimedCharacter maps an action to the character it asserts. Actions absent
// from the map are unchallengeable.
var claimedCharacter = map[ActionType]CardType{
	ActionTax:         Duke,
	ActionAssassinate: Assassin,
	ActionSteal:       Captain,
	ActionExchange:    Ambassador,
}

// counterFor maps an action to its legal counter type. Actions absent from
// the map cannot be blocked.
var counterFor = map[ActionType]CounterType{
	ActionForeignAid:  CounterBlockForeignAid,
	ActionAssassinate: CounterBlockAssassination,
	ActionSteal:       CounterBlockStealing,
}

// requiresTarget reports whether the action needs a target player id.
func requiresTarget(t ActionType) bool {
	switch t {
	case ActionCoup, ActionAssassinate, ActionSteal:
		return true
	}
	return false
}

func knownAction(t ActionType) bool {
	switch t {
	case ActionIncome, ActionForeignAid, ActionCoup, ActionTax,
		ActionAssassinate, ActionSteal, ActionExchange:
		return true
	}
	return false
}
