package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-console/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-console/internal/entity"
)

// Settings are fixed for the lifetime of a match.
type Settings struct {
	Mode    entity.Difficulty
	WinGoal int
	Starter string
}

// MoveSource asks a human for a cell. It is called again on the same turn after an illegal move.
type MoveSource interface {
	RequestMove(ctx context.Context, board entity.Board, player *entity.Player) (int, error)
}

// Renderer is told about progress for display only.
type Renderer interface {
	MovePlaced(board entity.Board, player *entity.Player, cell int)
	MoveRejected(player *entity.Player, cell int, err error)
	RoundComplete(board entity.Board, outcome entity.RoundOutcome, players [2]*entity.Player)
	MatchComplete(winner *entity.Player, players [2]*entity.Player)
}

type moveSelector interface {
	SelectMove(board *entity.Board, own, opponent entity.Marker, mode entity.Difficulty) (int, error)
}

type random interface {
	Intn(n int) int
}

// Match plays rounds between two players until one of them reaches the win goal.
type Match struct {
	logger   *slog.Logger
	settings Settings

	players [2]*entity.Player
	board   *entity.Board
	starter int
	active  int
	rounds  int
	winner  *entity.Player

	selector moveSelector
	input    MoveSource
	renderer Renderer
}

// NewMatch validates the setup, resets both win counters and resolves the starter once
// for every round of the match. input may be nil when no player is human, renderer may be nil.
func NewMatch(
	logger *slog.Logger,
	settings Settings,
	players []*entity.Player,
	selector moveSelector,
	input MoveSource,
	renderer Renderer,
	rnd random,
) (*Match, error) {
	if err := validate(settings, players, selector, input); err != nil {
		return nil, err
	}

	if settings.Starter == entity.StarterRandom && rnd == nil {
		return nil, fmt.Errorf("%w: random starter without a random source", apperror.ErrConfiguration)
	}

	if renderer == nil {
		renderer = noopRenderer{}
	}

	match := &Match{
		logger:   logger.With("component", "match"),
		settings: settings,
		players:  [2]*entity.Player{players[0], players[1]},
		board:    entity.NewBoard(),
		selector: selector,
		input:    input,
		renderer: renderer,
	}

	switch settings.Starter {
	case entity.StarterFirst:
		match.starter = 0
	case entity.StarterSecond:
		match.starter = 1
	case entity.StarterRandom:
		match.starter = rnd.Intn(len(match.players))
	}

	for _, player := range match.players {
		player.ResetWins()
	}

	match.logger.Debug("match created",
		"mode", settings.Mode, "goal", settings.WinGoal, "starter", match.players[match.starter].Name)

	return match, nil
}

func validate(settings Settings, players []*entity.Player, selector moveSelector, input MoveSource) error {
	if settings.WinGoal <= 0 {
		return fmt.Errorf("%w: win goal must be positive, got %d", apperror.ErrConfiguration, settings.WinGoal)
	}

	if _, err := entity.ParseDifficulty(string(settings.Mode)); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrConfiguration, err)
	}

	switch settings.Starter {
	case entity.StarterFirst, entity.StarterSecond, entity.StarterRandom:
	default:
		return fmt.Errorf("%w: unknown starter policy %q", apperror.ErrConfiguration, settings.Starter)
	}

	if len(players) != 2 {
		return fmt.Errorf("%w: a match needs exactly two players, got %d", apperror.ErrConfiguration, len(players))
	}

	for _, player := range players {
		switch {
		case player == nil:
			return fmt.Errorf("%w: nil player", apperror.ErrConfiguration)
		case player.Marker == entity.EmptyCell:
			return fmt.Errorf("%w: player %q has no marker", apperror.ErrInvariantViolation, player.Name)
		case !player.IsHuman() && !player.IsComputer():
			return fmt.Errorf("%w: player %q has unknown role %q", apperror.ErrConfiguration, player.Name, player.Role)
		case player.IsHuman() && input == nil:
			return fmt.Errorf("%w: human player %q without a move source", apperror.ErrConfiguration, player.Name)
		case player.IsComputer() && selector == nil:
			return fmt.Errorf("%w: computer player %q without a move selector", apperror.ErrConfiguration, player.Name)
		}
	}

	if players[0].Marker == players[1].Marker {
		return fmt.Errorf("%w: both players use marker %q", apperror.ErrInvariantViolation, players[0].Marker)
	}

	return nil
}

// Play runs rounds until the match has a winner.
func (that *Match) Play(ctx context.Context) (*entity.Player, error) {
	for !that.IsFinished() {
		if _, err := that.PlayRound(ctx); err != nil {
			return nil, err
		}
	}

	return that.winner, nil
}

// PlayRound plays one round from an empty board to a win or a draw and records its outcome.
func (that *Match) PlayRound(ctx context.Context) (entity.RoundOutcome, error) {
	if that.IsFinished() {
		return entity.RoundOutcome{}, apperror.ErrMatchFinished
	}

	log := that.logger.With("method", "PlayRound", "round", that.rounds+1)

	that.board.Reset()
	that.active = that.starter

	for {
		if err := ctx.Err(); err != nil {
			return entity.RoundOutcome{}, fmt.Errorf("round interrupted: %w", err)
		}

		player := that.players[that.active]

		placed, err := that.takeTurn(ctx, player)
		if err != nil {
			return entity.RoundOutcome{}, err
		}

		if !placed {
			continue
		}

		outcome, done, err := that.board.Outcome()
		if err != nil {
			return entity.RoundOutcome{}, fmt.Errorf("failed to evaluate board: %w", err)
		}

		if !done {
			that.active = 1 - that.active
			continue
		}

		winner, err := that.Record(outcome)
		if err != nil {
			return entity.RoundOutcome{}, err
		}

		log.Info("round complete", "outcome", outcome.String(),
			"score", fmt.Sprintf("%d-%d", that.players[0].Wins, that.players[1].Wins))

		that.renderer.RoundComplete(*that.board, outcome, that.players)
		if winner != nil {
			log.Info("match complete", "winner", winner.Name, "rounds", that.rounds)
			that.renderer.MatchComplete(winner, that.players)
		}

		return outcome, nil
	}
}

// takeTurn asks the player for a move and applies it. It reports false when a human
// move was rejected and the same player has to move again.
func (that *Match) takeTurn(ctx context.Context, player *entity.Player) (bool, error) {
	if player.IsHuman() {
		cell, err := that.input.RequestMove(ctx, *that.board, player)
		if err != nil {
			return false, fmt.Errorf("failed to get move from %s: %w", player.Name, err)
		}

		if err = that.board.Place(cell, player.Marker); err != nil {
			if !errors.Is(err, apperror.ErrIllegalMove) {
				return false, fmt.Errorf("failed to place move: %w", err)
			}

			that.logger.Debug("move rejected", "player", player.Name, "cell", cell, "error", err)
			that.renderer.MoveRejected(player, cell, err)

			return false, nil
		}

		that.renderer.MovePlaced(*that.board, player, cell)

		return true, nil
	}

	opponent := that.players[1-that.active]

	cell, err := that.selector.SelectMove(that.board, player.Marker, opponent.Marker, that.settings.Mode)
	if err != nil {
		return false, fmt.Errorf("failed to select move for %s: %w", player.Name, err)
	}

	if err = that.board.Place(cell, player.Marker); err != nil {
		return false, fmt.Errorf("%w: selected move rejected: %w", apperror.ErrInvariantViolation, err)
	}

	that.renderer.MovePlaced(*that.board, player, cell)

	return true, nil
}

// Record applies a finished round to the tally and returns the match winner once the goal is reached.
func (that *Match) Record(outcome entity.RoundOutcome) (*entity.Player, error) {
	if that.IsFinished() {
		return nil, apperror.ErrMatchFinished
	}

	switch {
	case outcome.IsWon():
		player := that.playerByMarker(outcome.Marker)
		if player == nil {
			return nil, fmt.Errorf("%w: no player holds marker %q", apperror.ErrInvariantViolation, outcome.Marker)
		}

		player.Wins++
		if player.Wins >= that.settings.WinGoal {
			that.winner = player
		}
	case outcome.IsDrawn():
	default:
		return nil, fmt.Errorf("%w: unknown round status %q", apperror.ErrInvariantViolation, outcome.Status)
	}

	that.rounds++

	return that.winner, nil
}

func (that *Match) playerByMarker(marker entity.Marker) *entity.Player {
	for _, player := range that.players {
		if player.Marker == marker {
			return player
		}
	}

	return nil
}

// Board returns a copy of the current board.
func (that *Match) Board() entity.Board {
	return *that.board
}

func (that *Match) Players() [2]*entity.Player {
	return that.players
}

func (that *Match) Score(marker entity.Marker) int {
	if player := that.playerByMarker(marker); player != nil {
		return player.Wins
	}

	return 0
}

func (that *Match) Settings() Settings {
	return that.settings
}

func (that *Match) Starter() *entity.Player {
	return that.players[that.starter]
}

// Rounds returns the number of completed rounds.
func (that *Match) Rounds() int {
	return that.rounds
}

// Winner returns nil while no player has reached the goal.
func (that *Match) Winner() *entity.Player {
	return that.winner
}

func (that *Match) IsFinished() bool {
	return that.winner != nil
}

type noopRenderer struct{}

func (noopRenderer) MovePlaced(entity.Board, *entity.Player, int) {}

func (noopRenderer) MoveRejected(*entity.Player, int, error) {}

func (noopRenderer) RoundComplete(entity.Board, entity.RoundOutcome, [2]*entity.Player) {}

func (noopRenderer) MatchComplete(*entity.Player, [2]*entity.Player) {}
