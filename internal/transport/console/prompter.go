package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-console/internal/entity"
)

var ErrInputClosed = errors.New("input closed")

// Prompter reads human answers line by line.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// RequestMove asks for a cell number until the answer is a number. Whether the cell is
// free is decided by the board, not here.
func (that *Prompter) RequestMove(ctx context.Context, board entity.Board, player *entity.Player) (int, error) {
	question := fmt.Sprintf("%s, choose a square (%s):", player.Name, joinOr(board.LegalMoves()))

	for {
		answer, err := that.ask(ctx, question)
		if err != nil {
			return 0, err
		}

		cell, err := strconv.Atoi(answer)
		if err == nil {
			return cell, nil
		}

		fmt.Fprintln(that.out, "Sorry, that's not a valid choice.")
	}
}

// AskPlayAgain asks a yes/no question until it gets y or n.
func (that *Prompter) AskPlayAgain(ctx context.Context) (bool, error) {
	for {
		answer, err := that.ask(ctx, "Play again? (y/n)")
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}

		fmt.Fprintln(that.out, "Sorry, please answer y or n.")
	}
}

// ChooseMode asks for the difficulty of the next match. An empty answer keeps current.
func (that *Prompter) ChooseMode(ctx context.Context, current entity.Difficulty) (entity.Difficulty, error) {
	question := fmt.Sprintf("Mode (%s or %s) [%s]:", entity.EasyDifficulty, entity.NormalDifficulty, current)

	for {
		answer, err := that.ask(ctx, question)
		if err != nil {
			return "", err
		}

		if answer == "" {
			return current, nil
		}

		mode, err := entity.ParseDifficulty(strings.ToLower(answer))
		if err == nil {
			return mode, nil
		}

		fmt.Fprintln(that.out, "Sorry, that's not a valid choice.")
	}
}

// ChooseStarter asks who opens the rounds of the next match. An empty answer keeps current.
func (that *Prompter) ChooseStarter(ctx context.Context, current string) (string, error) {
	question := fmt.Sprintf("Who starts (%s, %s or %s) [%s]:",
		entity.StarterFirst, entity.StarterSecond, entity.StarterRandom, current)

	for {
		answer, err := that.ask(ctx, question)
		if err != nil {
			return "", err
		}

		switch starter := strings.ToLower(answer); starter {
		case "":
			return current, nil
		case entity.StarterFirst, entity.StarterSecond, entity.StarterRandom:
			return starter, nil
		}

		fmt.Fprintln(that.out, "Sorry, that's not a valid choice.")
	}
}

func (that *Prompter) ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprintln(that.out, question)

	if !that.scanner.Scan() {
		if err := that.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read answer: %w", err)
		}

		return "", ErrInputClosed
	}

	return strings.TrimSpace(that.scanner.Text()), nil
}

// joinOr formats cells as "1, 2 or 3".
func joinOr(cells []int) string {
	words := make([]string, len(cells))
	for i, cell := range cells {
		words[i] = strconv.Itoa(cell)
	}

	if len(words) < 2 {
		return strings.Join(words, "")
	}

	return strings.Join(words[:len(words)-1], ", ") + " or " + words[len(words)-1]
}
