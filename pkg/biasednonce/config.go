package biasednonce

import "math/big"

// AttackConfig tunes the lattice solver used by Attack.
type AttackConfig struct {
	Delta          *big.Rat // Lovász constant (default: 99/100)
	EqualityWeight *big.Int // Weight of the modular equation column (default: columns × max |entry|)
	DigitMax       int64    // Upper bound of every nonce byte (default: 255)
}

// DefaultAttackConfig returns the configuration used by NewAttack.
func DefaultAttackConfig() AttackConfig {
	return AttackConfig{
		Delta:    big.NewRat(99, 100),
		DigitMax: 255,
	}
}

// Scenario holds the three messages signed in a transcript.
type Scenario struct {
	PeerMessage   []byte // Signed by the peer, recovers Qa
	FirstMessage  []byte // First signature by the target key
	SecondMessage []byte // Second signature by the target key
}

// DefaultScenario returns the messages of the recorded conversation.
func DefaultScenario() Scenario {
	return Scenario{
		PeerMessage:   []byte("Hello Bob."),
		FirstMessage:  []byte("Hello Alice."),
		SecondMessage: []byte("Dinner sounds good. Thanks for the flag."),
	}
}

// Layout says which transcript record carries what. Indices are zero based
// and refer to record order in the file.
type Layout struct {
	Peer       int // Peer signature on Scenario.PeerMessage
	First      int // Signature on Scenario.FirstMessage
	Ciphertext int // Record whose third element is the encrypted flag
	Second     int // Signature on Scenario.SecondMessage
}

// DefaultLayout returns the record order of the recorded conversation.
func DefaultLayout() Layout {
	return Layout{Peer: 0, First: 1, Ciphertext: 2, Second: 3}
}

func (l Layout) records() int {
	m := l.Peer
	for _, i := range []int{l.First, l.Ciphertext, l.Second} {
		if i > m {
			m = i
		}
	}
	return m + 1
}
