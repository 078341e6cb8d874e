package entity

import (
	"errors"
	"fmt"
)

const (
	EasyDifficulty   Difficulty = "easy"
	NormalDifficulty Difficulty = "normal"
)

const (
	StatusWon   = "won"
	StatusDrawn = "drawn"
)

// Starter policies decide once per match who opens every round.
const (
	StarterFirst  = "first"
	StarterSecond = "second"
	StarterRandom = "random"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Difficulty selects how the computer picks its moves.
type Difficulty string

func ParseDifficulty(value string) (Difficulty, error) {
	switch mode := Difficulty(value); mode {
	case EasyDifficulty, NormalDifficulty:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, value)
	}
}

// RoundOutcome is the result of a finished round. Marker is set only when Status is StatusWon.
type RoundOutcome struct {
	Status string `json:"status"`
	Marker Marker `json:"marker,omitempty"`
}

func Won(marker Marker) RoundOutcome {
	return RoundOutcome{Status: StatusWon, Marker: marker}
}

func Drawn() RoundOutcome {
	return RoundOutcome{Status: StatusDrawn}
}

func (that RoundOutcome) IsWon() bool {
	return that.Status == StatusWon
}

func (that RoundOutcome) IsDrawn() bool {
	return that.Status == StatusDrawn
}

func (that RoundOutcome) String() string {
	if that.IsWon() {
		return fmt.Sprintf("won by %s", that.Marker)
	}

	return that.Status
}
