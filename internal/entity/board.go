package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-console/internal/apperror"
)

const (
	EmptyCell Marker = ""

	BoardSize  = 9
	CenterCell = 5
)

// WinningLines lists every row, then every column, then both diagonals.
// Cells are numbered 1..9 row-major, starting at the top left corner.
var WinningLines = [8][3]int{
	{1, 2, 3},
	{4, 5, 6},
	{7, 8, 9},
	{1, 4, 7},
	{2, 5, 8},
	{3, 6, 9},
	{1, 5, 9},
	{3, 5, 7},
}

// Marker identifies which player occupies a cell.
type Marker string

func (that Marker) String() string {
	return string(that)
}

// Board is the 3x3 grid of a single round. The zero value is an empty board.
type Board struct {
	cells [BoardSize]Marker
}

func NewBoard() *Board {
	return &Board{}
}

// Cell returns the marker at the given cell, or EmptyCell when the index is out of range.
func (that *Board) Cell(cell int) Marker {
	if !inRange(cell) {
		return EmptyCell
	}

	return that.cells[cell-1]
}

// Cells returns a copy of the grid; index 0 holds cell 1.
func (that *Board) Cells() [BoardSize]Marker {
	return that.cells
}

func (that *Board) LegalMoves() []int {
	moves := make([]int, 0, BoardSize)
	for i, marker := range that.cells {
		if marker == EmptyCell {
			moves = append(moves, i+1)
		}
	}

	return moves
}

func (that *Board) IsLegal(cell int) bool {
	return inRange(cell) && that.cells[cell-1] == EmptyCell
}

// Place marks the cell. It is the only way a cell changes apart from Reset.
func (that *Board) Place(cell int, marker Marker) error {
	if marker == EmptyCell {
		return fmt.Errorf("%w: empty marker for cell %d", apperror.ErrIllegalMove, cell)
	}

	if !inRange(cell) {
		return fmt.Errorf("%w: cell %d is out of range", apperror.ErrIllegalMove, cell)
	}

	if that.cells[cell-1] != EmptyCell {
		return fmt.Errorf("%w: cell %d is already occupied", apperror.ErrIllegalMove, cell)
	}

	that.cells[cell-1] = marker

	return nil
}

// WinningMarker returns the marker of the first completed line, or EmptyCell.
func (that *Board) WinningMarker() Marker {
	for _, line := range WinningLines {
		if marker := that.lineOwner(line); marker != EmptyCell {
			return marker
		}
	}

	return EmptyCell
}

// Outcome reports whether the round is over and how it ended.
func (that *Board) Outcome() (RoundOutcome, bool, error) {
	winner := EmptyCell
	for _, line := range WinningLines {
		marker := that.lineOwner(line)
		if marker == EmptyCell {
			continue
		}

		if winner != EmptyCell && winner != marker {
			return RoundOutcome{}, false, fmt.Errorf("%w: both %q and %q complete a line",
				apperror.ErrInvariantViolation, winner, marker)
		}
		winner = marker
	}

	switch {
	case winner != EmptyCell:
		return Won(winner), true, nil
	case that.IsFull():
		return Drawn(), true, nil
	default:
		return RoundOutcome{}, false, nil
	}
}

func (that *Board) IsFull() bool {
	return len(that.LegalMoves()) == 0
}

func (that *Board) IsTerminal() bool {
	return that.WinningMarker() != EmptyCell || that.IsFull()
}

// Count returns how many cells of the line hold the marker.
func (that *Board) Count(line [3]int, marker Marker) int {
	total := 0
	for _, cell := range line {
		if that.cells[cell-1] == marker {
			total++
		}
	}

	return total
}

func (that *Board) Reset() {
	that.cells = [BoardSize]Marker{}
}

func (that *Board) lineOwner(line [3]int) Marker {
	a, b, c := that.cells[line[0]-1], that.cells[line[1]-1], that.cells[line[2]-1]
	if a != EmptyCell && a == b && b == c {
		return a
	}

	return EmptyCell
}

func inRange(cell int) bool {
	return cell >= 1 && cell <= BoardSize
}
