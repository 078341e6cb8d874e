package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/rocketscienceinc/tictactoe-console/internal/entity"
)

const rowSeparator = "---+---+---"

// Renderer prints the game as plain text.
type Renderer struct {
	out io.Writer
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

func (that *Renderer) MovePlaced(board entity.Board, player *entity.Player, cell int) {
	fmt.Fprintf(that.out, "%s %s takes square %d\n", player.Avatar, player.Name, cell)
	fmt.Fprint(that.out, FormatBoard(board))
}

func (that *Renderer) MoveRejected(_ *entity.Player, cell int, _ error) {
	fmt.Fprintf(that.out, "Square %d is not available, try again.\n", cell)
}

func (that *Renderer) RoundComplete(_ entity.Board, outcome entity.RoundOutcome, players [2]*entity.Player) {
	if outcome.IsWon() {
		for _, player := range players {
			if player.Marker == outcome.Marker {
				fmt.Fprintf(that.out, "%s won the round!\n", player.Name)
			}
		}
	} else {
		fmt.Fprintln(that.out, "It's a tie.")
	}

	fmt.Fprintln(that.out, FormatScore(players))
}

func (that *Renderer) MatchComplete(winner *entity.Player, _ [2]*entity.Player) {
	fmt.Fprintf(that.out, "%s %s wins the match!\n", winner.Avatar, winner.Name)
}

// Welcome introduces both players of a match.
func (that *Renderer) Welcome(players [2]*entity.Player, mode entity.Difficulty, goal int) {
	fmt.Fprintln(that.out, "Welcome to Tic Tac Toe!")
	for _, player := range players {
		fmt.Fprintf(that.out, "  %s %s plays %s\n", player.Avatar, player.Name, player.Marker)
	}
	fmt.Fprintf(that.out, "Mode: %s, first to %d wins.\n", mode, goal)
}

func (that *Renderer) Goodbye() {
	fmt.Fprintln(that.out, "Thanks for playing Tic Tac Toe. Goodbye!")
}

// FormatBoard draws the grid, one text row per board row.
func FormatBoard(board entity.Board) string {
	cells := board.Cells()

	var sb strings.Builder
	for row := range 3 {
		if row > 0 {
			sb.WriteString(rowSeparator + "\n")
		}

		marks := make([]string, 3)
		for col := range 3 {
			marker := cells[row*3+col]
			if marker == entity.EmptyCell {
				marker = " "
			}
			marks[col] = " " + marker.String() + " "
		}
		sb.WriteString(strings.Join(marks, "|") + "\n")
	}

	return sb.String()
}

func FormatScore(players [2]*entity.Player) string {
	return fmt.Sprintf("%s: %d  %s: %d", players[0].Name, players[0].Wins, players[1].Name, players[1].Wins)
}
