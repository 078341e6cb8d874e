package service

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-console/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// Random picks an integer in [0, n). *rand.Rand satisfies it.
type Random interface {
	Intn(n int) int
}

// Tier returns the cells a heuristic considers, or nothing when it does not apply.
// Tiers only read the board.
type Tier func(board *entity.Board, own, opponent entity.Marker) []int

// Bot picks moves for computer players.
type Bot struct {
	rnd   Random
	tiers map[entity.Difficulty][]Tier
}

// NewBot returns a selector with the easy (random) and normal (offense, defense,
// center, random) tier lists registered.
func NewBot(rnd Random) *Bot {
	return &Bot{
		rnd: rnd,
		tiers: map[entity.Difficulty][]Tier{
			entity.EasyDifficulty:   {AnyTier},
			entity.NormalDifficulty: {OffensiveTier, DefensiveTier, CenterTier, AnyTier},
		},
	}
}

// WithTiers replaces the tier list used for the given mode.
func (that *Bot) WithTiers(mode entity.Difficulty, tiers ...Tier) *Bot {
	that.tiers[mode] = tiers

	return that
}

// SelectMove walks the tiers of the mode in order and samples uniformly from the first
// non-empty candidate set.
func (that *Bot) SelectMove(board *entity.Board, own, opponent entity.Marker, mode entity.Difficulty) (int, error) {
	if board.IsFull() {
		return 0, ErrNoAvailableMoves
	}

	tiers, ok := that.tiers[mode]
	if !ok {
		return 0, fmt.Errorf("%w: %q", entity.ErrUnknownDifficulty, mode)
	}

	for _, tier := range tiers {
		if candidates := tier(board, own, opponent); len(candidates) > 0 {
			return candidates[that.rnd.Intn(len(candidates))], nil
		}
	}

	return 0, ErrNoAvailableMoves
}

// OffensiveTier returns cells that complete a line already holding two own markers.
func OffensiveTier(board *entity.Board, own, _ entity.Marker) []int {
	return cellsOnLines(board, func(line [3]int) bool {
		return board.Count(line, own) == 2
	})
}

// DefensiveTier returns cells that block a line already holding two opponent markers.
func DefensiveTier(board *entity.Board, _, opponent entity.Marker) []int {
	return cellsOnLines(board, func(line [3]int) bool {
		return board.Count(line, opponent) == 2
	})
}

func CenterTier(board *entity.Board, _, _ entity.Marker) []int {
	if board.IsLegal(entity.CenterCell) {
		return []int{entity.CenterCell}
	}

	return nil
}

func AnyTier(board *entity.Board, _, _ entity.Marker) []int {
	return board.LegalMoves()
}

// cellsOnLines returns each legal cell lying on at least one line accepted by match.
func cellsOnLines(board *entity.Board, match func(line [3]int) bool) []int {
	var cells []int
	for _, cell := range board.LegalMoves() {
		for _, line := range entity.WinningLines {
			if containsCell(line, cell) && match(line) {
				cells = append(cells, cell)
				break
			}
		}
	}

	return cells
}

func containsCell(line [3]int, cell int) bool {
	return line[0] == cell || line[1] == cell || line[2] == cell
}
