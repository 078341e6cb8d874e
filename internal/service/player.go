package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-console/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-console/internal/entity"
	"github.com/rocketscienceinc/tictactoe-console/internal/repository"
)

var ErrNoNames = errors.New("no computer names configured")

type identityRegistry interface {
	Claim(ctx context.Context, kind repository.Kind, value string) (bool, error)
	Release(ctx context.Context, kind repository.Kind, value string) error
}

// Identities lists the cosmetic choices available to players of a session.
type Identities struct {
	ComputerNames []string
	Markers       []string
	Avatars       []string
}

// PlayerService builds players whose marker and avatar are unique within the session.
type PlayerService struct {
	registry   identityRegistry
	identities Identities
	rnd        Random
}

func NewPlayerService(registry identityRegistry, identities Identities, rnd Random) *PlayerService {
	return &PlayerService{
		registry:   registry,
		identities: identities,
		rnd:        rnd,
	}
}

// NewHuman claims the requested marker and avatar. When one of them is taken the caller
// should ask again with another value; nothing stays claimed in that case.
func (that *PlayerService) NewHuman(ctx context.Context, name, marker, avatar string) (*entity.Player, error) {
	ok, err := that.registry.Claim(ctx, repository.MarkerKind, marker)
	if err != nil {
		return nil, fmt.Errorf("failed to claim marker: %w", err)
	}

	if !ok {
		return nil, fmt.Errorf("%w: %q", apperror.ErrMarkerTaken, marker)
	}

	ok, err = that.registry.Claim(ctx, repository.AvatarKind, avatar)
	if err == nil && !ok {
		err = fmt.Errorf("%w: %q", apperror.ErrAvatarTaken, avatar)
	}

	if err != nil {
		if releaseErr := that.registry.Release(ctx, repository.MarkerKind, marker); releaseErr != nil {
			return nil, errors.Join(err, releaseErr)
		}

		return nil, err
	}

	return entity.NewPlayer(name, entity.Marker(marker), avatar, entity.HumanRole), nil
}

// NewComputer picks a random name and the first free marker and avatar in random order.
func (that *PlayerService) NewComputer(ctx context.Context) (*entity.Player, error) {
	if len(that.identities.ComputerNames) == 0 {
		return nil, ErrNoNames
	}

	name := that.identities.ComputerNames[that.rnd.Intn(len(that.identities.ComputerNames))]

	marker, err := that.claimAny(ctx, repository.MarkerKind, that.identities.Markers)
	if err != nil {
		return nil, err
	}

	avatar, err := that.claimAny(ctx, repository.AvatarKind, that.identities.Avatars)
	if err != nil {
		if releaseErr := that.registry.Release(ctx, repository.MarkerKind, marker); releaseErr != nil {
			return nil, errors.Join(err, releaseErr)
		}

		return nil, err
	}

	return entity.NewPlayer(name, entity.Marker(marker), avatar, entity.ComputerRole), nil
}

func (that *PlayerService) claimAny(ctx context.Context, kind repository.Kind, candidates []string) (string, error) {
	for _, i := range that.permutation(len(candidates)) {
		ok, err := that.registry.Claim(ctx, kind, candidates[i])
		if err != nil {
			return "", fmt.Errorf("failed to claim %s: %w", kind, err)
		}

		if ok {
			return candidates[i], nil
		}
	}

	return "", fmt.Errorf("%w: every %s is taken", apperror.ErrNoIdentityAvailable, kind)
}

// permutation is a Fisher-Yates shuffle of 0..n-1 driven by the injected source.
func (that *PlayerService) permutation(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	for i := n - 1; i > 0; i-- {
		j := that.rnd.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	return order
}
