package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-console/internal/config"
	"github.com/rocketscienceinc/tictactoe-console/internal/entity"
	"github.com/rocketscienceinc/tictactoe-console/internal/repository"
	"github.com/rocketscienceinc/tictactoe-console/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-console/internal/service"
	"github.com/rocketscienceinc/tictactoe-console/internal/transport/console"
	"github.com/rocketscienceinc/tictactoe-console/internal/usecase"
)

const cleanupTimeout = 5 * time.Second

// RunApp - runs a console game session on stdin and stdout.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	return Run(ctx, logger, conf, os.Stdin, os.Stdout)
}

// Run plays matches between the configured human and a computer until the human stops
// or ctx is canceled. Claimed identities are released on every way out.
func Run(ctx context.Context, logger *slog.Logger, conf *config.Config, in io.Reader, out io.Writer) error {
	log := logger.With("component", "session")

	seed := conf.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed)) //nolint: gosec // game randomness

	registry, closeRegistry, err := newIdentityRegistry(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()

		if err := registry.ReleaseAll(cleanupCtx); err != nil {
			log.Error("could not release identities", "error", err)
		}
		closeRegistry()
	}()

	players := service.NewPlayerService(registry, service.Identities{
		ComputerNames: conf.Players.ComputerNames,
		Markers:       conf.Players.Markers,
		Avatars:       conf.Players.Avatars,
	}, rnd)

	human, err := players.NewHuman(ctx, conf.Players.Human.Name, conf.Players.Human.Marker, conf.Players.Human.Avatar)
	if err != nil {
		return fmt.Errorf("could not create human player: %w", err)
	}

	computer, err := players.NewComputer(ctx)
	if err != nil {
		return fmt.Errorf("could not create computer player: %w", err)
	}

	mode, err := entity.ParseDifficulty(conf.Match.Mode)
	if err != nil {
		return fmt.Errorf("invalid match mode: %w", err)
	}

	settings := usecase.Settings{
		Mode:    mode,
		WinGoal: conf.Match.WinGoalFor(mode),
		Starter: conf.Match.Starter,
	}

	bot := service.NewBot(rnd)
	prompter := console.NewPrompter(in, out)
	renderer := console.NewRenderer(out)

	log.Info("session started", "human", human.Name, "computer", computer.Name, "mode", mode, "seed", seed)

	// reading input cannot be interrupted, so matches run on their own goroutine
	sessionErrCh := make(chan error, 1)
	go func() {
		sessionErrCh <- playSession(ctx, logger, settings, promptSettings(conf, prompter),
			[]*entity.Player{human, computer}, bot, prompter, renderer, rnd)
	}()

	select {
	case err = <-sessionErrCh:
	case <-ctx.Done():
		log.Info("session canceled, shutting down")
		return nil
	}

	if errors.Is(err, console.ErrInputClosed) {
		log.Info("input closed, ending session")
		err = nil
	}

	if err != nil {
		return err
	}

	renderer.Goodbye()

	return nil
}

// settingsHook returns the settings of the next match of a session.
type settingsHook func(ctx context.Context, current usecase.Settings) (usecase.Settings, error)

// promptSettings lets the human change mode and starter between matches.
func promptSettings(conf *config.Config, prompter *console.Prompter) settingsHook {
	return func(ctx context.Context, current usecase.Settings) (usecase.Settings, error) {
		mode, err := prompter.ChooseMode(ctx, current.Mode)
		if err != nil {
			return usecase.Settings{}, err
		}

		starter, err := prompter.ChooseStarter(ctx, current.Starter)
		if err != nil {
			return usecase.Settings{}, err
		}

		return usecase.Settings{
			Mode:    mode,
			WinGoal: conf.Match.WinGoalFor(mode),
			Starter: starter,
		}, nil
	}
}

func playSession(
	ctx context.Context,
	logger *slog.Logger,
	settings usecase.Settings,
	next settingsHook,
	players []*entity.Player,
	bot *service.Bot,
	prompter *console.Prompter,
	renderer *console.Renderer,
	rnd *rand.Rand,
) error {
	for {
		match, err := usecase.NewMatch(logger, settings, players, bot, prompter, renderer, rnd)
		if err != nil {
			return fmt.Errorf("could not start match: %w", err)
		}

		renderer.Welcome(match.Players(), settings.Mode, settings.WinGoal)

		if _, err = match.Play(ctx); err != nil {
			return fmt.Errorf("match failed: %w", err)
		}

		again, err := prompter.AskPlayAgain(ctx)
		if err != nil {
			return err
		}

		if !again {
			return nil
		}

		if settings, err = next(ctx, settings); err != nil {
			return err
		}
	}
}

func newIdentityRegistry(ctx context.Context, conf *config.Config) (repository.IdentityRegistry, func(), error) {
	if conf.Registry.Backend != config.RegistryRedis {
		return repository.NewMemoryIdentityRegistry(), func() {}, nil
	}

	client, err := storage.NewRedis(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeClient := func() {
		_ = client.Close()
	}

	return repository.NewRedisIdentityRegistry(client, uuid.NewString(), conf.Registry.SessionTTL), closeClient, nil
}
