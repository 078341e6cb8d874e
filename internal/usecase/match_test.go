package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/tictactoe-console/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-console/internal/entity"
	"github.com/rocketscienceinc/tictactoe-console/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errInputClosed = errors.New("input closed")

type mockMoveSource struct {
	mock.Mock
}

func (that *mockMoveSource) RequestMove(ctx context.Context, board entity.Board, player *entity.Player) (int, error) {
	args := that.Called(ctx, board, player)
	return args.Int(0), args.Error(1)
}

type mockRenderer struct {
	mock.Mock
}

func (that *mockRenderer) MovePlaced(board entity.Board, player *entity.Player, cell int) {
	that.Called(board, player, cell)
}

func (that *mockRenderer) MoveRejected(player *entity.Player, cell int, err error) {
	that.Called(player, cell, err)
}

func (that *mockRenderer) RoundComplete(board entity.Board, outcome entity.RoundOutcome, players [2]*entity.Player) {
	that.Called(board, outcome, players)
}

func (that *mockRenderer) MatchComplete(winner *entity.Player, players [2]*entity.Player) {
	that.Called(winner, players)
}

// scriptedSelector hands out moves in order, whoever asks.
type scriptedSelector struct {
	moves []int
}

func (that *scriptedSelector) SelectMove(_ *entity.Board, _, _ entity.Marker, _ entity.Difficulty) (int, error) {
	if len(that.moves) == 0 {
		return 0, service.ErrNoAvailableMoves
	}

	move := that.moves[0]
	that.moves = that.moves[1:]

	return move, nil
}

type fixedRandom int

func (that fixedRandom) Intn(int) int {
	return int(that)
}

// firstMoves remembers who opened each round.
type firstMoves struct {
	noopRenderer
	placed  int
	openers []*entity.Player
}

func (that *firstMoves) MovePlaced(_ entity.Board, player *entity.Player, _ int) {
	if that.placed == 0 {
		that.openers = append(that.openers, player)
	}
	that.placed++
}

func (that *firstMoves) RoundComplete(entity.Board, entity.RoundOutcome, [2]*entity.Player) {
	that.placed = 0
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func human(name string, marker entity.Marker) *entity.Player {
	return entity.NewPlayer(name, marker, "(o_o)", entity.HumanRole)
}

func computer(name string, marker entity.Marker) *entity.Player {
	return entity.NewPlayer(name, marker, "(x_x)", entity.ComputerRole)
}

func settings(goal int, starter string) Settings {
	return Settings{Mode: entity.NormalDifficulty, WinGoal: goal, Starter: starter}
}

func TestNewMatch(t *testing.T) {
	selector := &scriptedSelector{}
	input := &mockMoveSource{}

	tests := []struct {
		name     string
		settings Settings
		players  []*entity.Player
		wantErr  error
	}{
		{"zero win goal", settings(0, entity.StarterFirst), []*entity.Player{human("Ann", "X"), computer("Hal", "O")}, apperror.ErrConfiguration},
		{"negative win goal", settings(-2, entity.StarterFirst), []*entity.Player{human("Ann", "X"), computer("Hal", "O")}, apperror.ErrConfiguration},
		{"one player", settings(2, entity.StarterFirst), []*entity.Player{human("Ann", "X")}, apperror.ErrConfiguration},
		{"three players", settings(2, entity.StarterFirst), []*entity.Player{human("Ann", "X"), computer("Hal", "O"), computer("R2D2", "#")}, apperror.ErrConfiguration},
		{"unknown starter", settings(2, "loser"), []*entity.Player{human("Ann", "X"), computer("Hal", "O")}, apperror.ErrConfiguration},
		{"unknown mode", Settings{Mode: "hard", WinGoal: 2, Starter: entity.StarterFirst}, []*entity.Player{human("Ann", "X"), computer("Hal", "O")}, apperror.ErrConfiguration},
		{"unknown role", settings(2, entity.StarterFirst), []*entity.Player{entity.NewPlayer("Ann", "X", "", "ghost"), computer("Hal", "O")}, apperror.ErrConfiguration},
		{"shared marker", settings(2, entity.StarterFirst), []*entity.Player{human("Ann", "X"), computer("Hal", "X")}, apperror.ErrInvariantViolation},
		{"missing marker", settings(2, entity.StarterFirst), []*entity.Player{human("Ann", ""), computer("Hal", "O")}, apperror.ErrInvariantViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// When: building a match from a broken setup
			match, err := NewMatch(testLogger(), tt.settings, tt.players, selector, input, nil, fixedRandom(0))

			// Then: it refuses to start
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, match)
		})
	}

	t.Run("Human without move source", func(t *testing.T) {
		_, err := NewMatch(testLogger(), settings(2, entity.StarterFirst),
			[]*entity.Player{human("Ann", "X"), computer("Hal", "O")}, selector, nil, nil, nil)

		require.ErrorIs(t, err, apperror.ErrConfiguration)
	})

	t.Run("Random starter without random source", func(t *testing.T) {
		_, err := NewMatch(testLogger(), settings(2, entity.StarterRandom),
			[]*entity.Player{computer("R2D2", "X"), computer("Hal", "O")}, selector, nil, nil, nil)

		require.ErrorIs(t, err, apperror.ErrConfiguration)
	})

	t.Run("Wins are reset for a new match", func(t *testing.T) {
		// Given: players coming from a previous match
		ann, hal := human("Ann", "X"), computer("Hal", "O")
		ann.Wins, hal.Wins = 3, 1

		// When: a new match starts with them
		match, err := NewMatch(testLogger(), settings(3, entity.StarterFirst), []*entity.Player{ann, hal}, selector, input, nil, nil)

		// Then: both counters start from zero
		require.NoError(t, err)
		assert.Zero(t, match.Score("X"))
		assert.Zero(t, match.Score("O"))
		assert.Nil(t, match.Winner())
	})
}

func TestMatch_Starter(t *testing.T) {
	players := func() []*entity.Player {
		return []*entity.Player{computer("R2D2", "X"), computer("Hal", "O")}
	}

	tests := []struct {
		name    string
		starter string
		rnd     fixedRandom
		want    int
	}{
		{"first", entity.StarterFirst, 1, 0},
		{"second", entity.StarterSecond, 0, 1},
		{"random picks first", entity.StarterRandom, 0, 0},
		{"random picks second", entity.StarterRandom, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := players()

			match, err := NewMatch(testLogger(), settings(2, tt.starter), list, &scriptedSelector{}, nil, nil, tt.rnd)

			require.NoError(t, err)
			assert.Same(t, list[tt.want], match.Starter())
		})
	}
}

func TestMatch_Record(t *testing.T) {
	t.Run("Stops at the win goal", func(t *testing.T) {
		// Given: a match to two wins
		a, b := computer("A", "X"), computer("B", "O")
		match, err := NewMatch(testLogger(), settings(2, entity.StarterFirst), []*entity.Player{a, b}, &scriptedSelector{}, nil, nil, nil)
		require.NoError(t, err)

		// When: A wins the first round
		winner, err := match.Record(entity.Won("X"))

		// Then: there is no winner yet
		require.NoError(t, err)
		assert.Nil(t, winner)
		assert.False(t, match.IsFinished())

		// When: A wins the second round
		winner, err = match.Record(entity.Won("X"))

		// Then: A has won the match
		require.NoError(t, err)
		assert.Same(t, a, winner)
		assert.Same(t, a, match.Winner())

		// When: the remaining outcomes arrive
		_, drawErr := match.Record(entity.Drawn())
		_, wonErr := match.Record(entity.Won("O"))

		// Then: they are refused and the tally is frozen
		require.ErrorIs(t, drawErr, apperror.ErrMatchFinished)
		require.ErrorIs(t, wonErr, apperror.ErrMatchFinished)
		assert.Equal(t, 2, match.Score("X"))
		assert.Equal(t, 0, match.Score("O"))
		assert.Equal(t, 2, match.Rounds())
	})

	t.Run("Draws change nothing", func(t *testing.T) {
		match, err := NewMatch(testLogger(), settings(1, entity.StarterFirst),
			[]*entity.Player{computer("A", "X"), computer("B", "O")}, &scriptedSelector{}, nil, nil, nil)
		require.NoError(t, err)

		winner, err := match.Record(entity.Drawn())

		require.NoError(t, err)
		assert.Nil(t, winner)
		assert.Zero(t, match.Score("X"))
		assert.Zero(t, match.Score("O"))
		assert.Equal(t, 1, match.Rounds())
	})

	t.Run("Unknown marker is an invariant violation", func(t *testing.T) {
		match, err := NewMatch(testLogger(), settings(2, entity.StarterFirst),
			[]*entity.Player{computer("A", "X"), computer("B", "O")}, &scriptedSelector{}, nil, nil, nil)
		require.NoError(t, err)

		_, err = match.Record(entity.Won("#"))

		require.ErrorIs(t, err, apperror.ErrInvariantViolation)
		assert.Zero(t, match.Rounds())
	})
}

func TestMatch_PlayRound(t *testing.T) {
	ctx := context.Background()

	t.Run("Human retries after an illegal move and wins", func(t *testing.T) {
		// Given: Ann (X) against Hal (O), Ann starts
		ann, hal := human("Ann", "X"), computer("Hal", "O")
		input := &mockMoveSource{}
		renderer := &mockRenderer{}
		selector := &scriptedSelector{moves: []int{5, 9}}

		input.On("RequestMove", ctx, mock.Anything, ann).Return(1, nil).Once()
		input.On("RequestMove", ctx, mock.Anything, ann).Return(5, nil).Once()
		input.On("RequestMove", ctx, mock.Anything, ann).Return(2, nil).Once()
		input.On("RequestMove", ctx, mock.Anything, ann).Return(3, nil).Once()

		renderer.On("MovePlaced", mock.Anything, mock.Anything, mock.Anything).Times(5)
		renderer.On("MoveRejected", ann, 5, mock.MatchedBy(func(err error) bool {
			return errors.Is(err, apperror.ErrIllegalMove)
		})).Once()
		renderer.On("RoundComplete", mock.Anything, entity.Won("X"), mock.Anything).Once()

		match, err := NewMatch(testLogger(), settings(2, entity.StarterFirst), []*entity.Player{ann, hal}, selector, input, renderer, nil)
		require.NoError(t, err)

		// When: the round is played
		outcome, err := match.PlayRound(ctx)

		// Then: Ann wins the top row after one rejected attempt on the center
		require.NoError(t, err)
		assert.Equal(t, entity.Won("X"), outcome)
		assert.Equal(t, 1, ann.Wins)
		assert.Zero(t, hal.Wins)
		assert.Nil(t, match.Winner())

		board := match.Board()
		assert.Equal(t, [entity.BoardSize]entity.Marker{"X", "X", "X", "", "O", "", "", "", "O"}, board.Cells())

		input.AssertExpectations(t)
		renderer.AssertExpectations(t)
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		// Given: two computers following a drawing script
		a, b := computer("A", "X"), computer("B", "O")
		selector := &scriptedSelector{moves: []int{1, 2, 3, 5, 4, 6, 8, 7, 9}}
		match, err := NewMatch(testLogger(), settings(1, entity.StarterFirst), []*entity.Player{a, b}, selector, nil, nil, nil)
		require.NoError(t, err)

		// When: the round is played
		outcome, err := match.PlayRound(ctx)

		// Then: it is drawn after all nine cells are used
		require.NoError(t, err)
		assert.Equal(t, entity.Drawn(), outcome)
		board := match.Board()
		assert.True(t, board.IsFull())
		assert.Zero(t, a.Wins)
		assert.Zero(t, b.Wins)
		assert.Equal(t, 1, match.Rounds())
	})

	t.Run("Rejected computer move is an invariant violation", func(t *testing.T) {
		selector := &scriptedSelector{moves: []int{1, 1}}
		match, err := NewMatch(testLogger(), settings(1, entity.StarterFirst),
			[]*entity.Player{computer("A", "X"), computer("B", "O")}, selector, nil, nil, nil)
		require.NoError(t, err)

		_, err = match.PlayRound(ctx)

		require.ErrorIs(t, err, apperror.ErrInvariantViolation)
		require.ErrorIs(t, err, apperror.ErrIllegalMove)
	})

	t.Run("Input failure stops the round", func(t *testing.T) {
		ann := human("Ann", "X")
		input := &mockMoveSource{}
		input.On("RequestMove", ctx, mock.Anything, ann).Return(0, errInputClosed).Once()

		match, err := NewMatch(testLogger(), settings(1, entity.StarterFirst),
			[]*entity.Player{ann, computer("Hal", "O")}, &scriptedSelector{}, input, nil, nil)
		require.NoError(t, err)

		_, err = match.PlayRound(ctx)

		require.ErrorIs(t, err, errInputClosed)
		assert.Zero(t, match.Rounds())
	})

	t.Run("Canceled context stops the round", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		match, err := NewMatch(testLogger(), settings(1, entity.StarterFirst),
			[]*entity.Player{computer("A", "X"), computer("B", "O")}, &scriptedSelector{moves: []int{1}}, nil, nil, nil)
		require.NoError(t, err)

		_, err = match.PlayRound(canceled)

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestMatch_Play(t *testing.T) {
	ctx := context.Background()

	t.Run("Plays until the goal is reached", func(t *testing.T) {
		// Given: two easy computers playing to three wins
		a, b := computer("A", "X"), computer("B", "O")
		bot := service.NewBot(rand.New(rand.NewSource(11))) //nolint: gosec // deterministic test source
		renderer := &mockRenderer{}
		renderer.On("MovePlaced", mock.Anything, mock.Anything, mock.Anything)
		renderer.On("RoundComplete", mock.Anything, mock.Anything, mock.Anything)
		renderer.On("MatchComplete", mock.Anything, mock.Anything).Once()

		match, err := NewMatch(testLogger(), Settings{Mode: entity.EasyDifficulty, WinGoal: 3, Starter: entity.StarterFirst},
			[]*entity.Player{a, b}, bot, nil, renderer, nil)
		require.NoError(t, err)

		// When: the match is played
		winner, err := match.Play(ctx)

		// Then: exactly one player reached the goal
		require.NoError(t, err)
		require.NotNil(t, winner)
		assert.Equal(t, 3, winner.Wins)
		assert.Less(t, a.Wins+b.Wins, 6)
		assert.GreaterOrEqual(t, match.Rounds(), 3)
		renderer.AssertNumberOfCalls(t, "RoundComplete", match.Rounds())
		renderer.AssertExpectations(t)

		// When: another round is requested
		_, err = match.PlayRound(ctx)

		// Then: the finished match refuses it
		require.ErrorIs(t, err, apperror.ErrMatchFinished)
	})

	t.Run("Same starter every round", func(t *testing.T) {
		// Given: the second player starts every round
		a, b := computer("A", "X"), computer("B", "O")
		bot := service.NewBot(rand.New(rand.NewSource(3))) //nolint: gosec // deterministic test source
		renderer := &firstMoves{}

		match, err := NewMatch(testLogger(), Settings{Mode: entity.EasyDifficulty, WinGoal: 2, Starter: entity.StarterSecond},
			[]*entity.Player{a, b}, bot, nil, renderer, nil)
		require.NoError(t, err)

		// When: the match is played
		_, err = match.Play(ctx)

		// Then: B opened every round
		require.NoError(t, err)
		require.Len(t, renderer.openers, match.Rounds())
		for _, opener := range renderer.openers {
			assert.Same(t, b, opener)
		}
	})
}
