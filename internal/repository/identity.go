package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	MarkerKind Kind = "markers"
	AvatarKind Kind = "avatars"
)

var ErrUnknownKind = errors.New("unknown identity kind")

// Kind names one of the claimed sets kept by a registry.
type Kind string

// IdentityRegistry tracks markers and avatars held by the players of one game session.
type IdentityRegistry interface {
	// Claim records value and reports true, or reports false when it is already claimed.
	Claim(ctx context.Context, kind Kind, value string) (bool, error)
	Release(ctx context.Context, kind Kind, value string) error
	ReleaseAll(ctx context.Context) error
	Claimed(ctx context.Context, kind Kind) ([]string, error)
}

type memoryRegistry struct {
	mu      sync.Mutex
	claimed map[Kind]map[string]struct{}
}

func NewMemoryIdentityRegistry() IdentityRegistry {
	return &memoryRegistry{
		claimed: newClaimSets(),
	}
}

func (that *memoryRegistry) Claim(_ context.Context, kind Kind, value string) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	set, ok := that.claimed[kind]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	if _, taken := set[value]; taken {
		return false, nil
	}

	set[value] = struct{}{}

	return true, nil
}

func (that *memoryRegistry) Release(_ context.Context, kind Kind, value string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	set, ok := that.claimed[kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	delete(set, value)

	return nil
}

func (that *memoryRegistry) ReleaseAll(_ context.Context) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.claimed = newClaimSets()

	return nil
}

func (that *memoryRegistry) Claimed(_ context.Context, kind Kind) ([]string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	set, ok := that.claimed[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	values := make([]string, 0, len(set))
	for value := range set {
		values = append(values, value)
	}
	sort.Strings(values)

	return values, nil
}

func newClaimSets() map[Kind]map[string]struct{} {
	return map[Kind]map[string]struct{}{
		MarkerKind: {},
		AvatarKind: {},
	}
}

// redisRegistry keeps claims in one Redis set per kind under session:<id>:<kind>.
// SADD is atomic, so concurrent claims of the same value never both succeed.
// Every claim renews the key TTL, so a session that dies without ReleaseAll still expires.
type redisRegistry struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

// NewRedisIdentityRegistry - ttl <= 0 keeps the keys until ReleaseAll.
func NewRedisIdentityRegistry(client *redis.Client, sessionID string, ttl time.Duration) IdentityRegistry {
	return &redisRegistry{
		client:    client,
		sessionID: sessionID,
		ttl:       ttl,
	}
}

func (that *redisRegistry) Claim(ctx context.Context, kind Kind, value string) (bool, error) {
	key, err := that.key(kind)
	if err != nil {
		return false, err
	}

	var added *redis.IntCmd
	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		added = pipe.SAdd(ctx, key, value)
		if that.ttl > 0 {
			pipe.Expire(ctx, key, that.ttl)
		}

		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to claim %s %q: %w", kind, value, err)
	}

	return added.Val() == 1, nil
}

func (that *redisRegistry) Release(ctx context.Context, kind Kind, value string) error {
	key, err := that.key(kind)
	if err != nil {
		return err
	}

	if err = that.client.SRem(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("failed to release %s %q: %w", kind, value, err)
	}

	return nil
}

func (that *redisRegistry) ReleaseAll(ctx context.Context) error {
	keys := []string{that.keyFor(MarkerKind), that.keyFor(AvatarKind)}
	if err := that.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to release session %s: %w", that.sessionID, err)
	}

	return nil
}

func (that *redisRegistry) Claimed(ctx context.Context, kind Kind) ([]string, error) {
	key, err := that.key(kind)
	if err != nil {
		return nil, err
	}

	values, err := that.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	sort.Strings(values)

	return values, nil
}

func (that *redisRegistry) key(kind Kind) (string, error) {
	if kind != MarkerKind && kind != AvatarKind {
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	return that.keyFor(kind), nil
}

func (that *redisRegistry) keyFor(kind Kind) string {
	return "session:" + that.sessionID + ":" + string(kind)
}
