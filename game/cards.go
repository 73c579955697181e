package game

import (
	"math/rand"
)

// CardType identifies a character card. CardHidden is a client-facing
// placeholder only; it never appears in server-held hands or in the deck.
type CardType string

const (
	Duke       CardType = "duke"
	Assassin   CardType = "assassin"
	Captain    CardType = "captain"
	Ambassador CardType = "ambassador"
	Contessa   CardType = "contessa"
	CardHidden CardType = "hidden"
)

var Characters = []CardType{Duke, Assassin, Captain, Ambassador, Contessa}

const (
	CopiesPerCharacter = 3
	CardsPerPlayer     = 2
	StartingCoins      = 2
)

func newDeck(rng *rand.Rand) []CardType {
	deck := make([]CardType, 0, len(Characters)*CopiesPerCharacter)
	for _, c := range Characters {
		for i := 0; i < CopiesPerCharacter; i++ {
			deck = append(deck, c)
		}
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}
