// Package cache puts a Redis read-through cache in front of a user.Repository.
//
// The cache never decides an outcome. A Redis fault is logged and the call
// goes to the wrapped repository as if the cache were absent.
//
// Every invalidation bumps a per-user generation, and a read stores what it
// fetched only if the generation it saw before the fetch is still current.
// A read racing a delete therefore cannot bring the deleted user back.
// Ids whose invalidation failed are remembered in process and bypass the
// cache until a retry succeeds or any entry that may be stale has expired.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/model/user"
	"github.com/talx-hub/gopher-users/internal/utils/password"
)

const (
	keyPrefix        = "user:"
	genPrefix        = "user-gen:"
	minGenerationTTL = time.Minute
)

// storeIfCurrent sets KEYS[1] to ARGV[2] for ARGV[3] milliseconds while the
// generation at KEYS[2] still equals ARGV[1]. A missing generation is "0".
var storeIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// entry is the stored form of a user. The credential is kept exactly as the
// repository stores it.
type entry struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Hash  string `json:"encrypted_password"`
	Salt  string `json:"salt"`
}

func toEntry(u *user.User) entry {
	return entry{
		ID:    u.ID,
		Email: u.Email,
		Hash:  u.Credential.Hash(),
		Salt:  u.Credential.Salt(),
	}
}

func (e entry) toUser() *user.User {
	return &user.User{
		ID:         e.ID,
		Email:      e.Email,
		Credential: password.Restore(e.Hash, e.Salt),
	}
}

func makeKey(id string) string {
	return keyPrefix + id
}

func makeGenKey(id string) string {
	return genPrefix + id
}

type CachedRepository struct {
	next   user.Repository
	client redis.Cmdable
	log    *slog.Logger
	ttl    time.Duration

	mu sync.Mutex
	// stale maps ids whose invalidation failed to the time of the failure.
	stale map[string]time.Time
}

func NewCachedRepository(next user.Repository, client redis.Cmdable,
	ttl time.Duration, log *slog.Logger,
) *CachedRepository {
	return &CachedRepository{
		next:   next,
		client: client,
		log:    log,
		ttl:    ttl,
		stale:  make(map[string]time.Time),
	}
}

// NewClient connects to addr and checks the server answers.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func (r *CachedRepository) GetUsers(ctx context.Context) ([]user.User, error) {
	return r.next.GetUsers(ctx) //nolint: wrapcheck // already a RepositoryError
}

func (r *CachedRepository) GetUserByID(ctx context.Context, id string,
) (*user.User, error) {
	if u, ok := r.load(ctx, id); ok {
		return u, nil
	}

	gen, genOK := r.generation(ctx, id)
	u, err := r.next.GetUserByID(ctx, id)
	if err != nil || u == nil {
		return u, err //nolint: wrapcheck // already a RepositoryError
	}
	if genOK {
		r.store(ctx, u, gen)
	}
	return u, nil
}

func (r *CachedRepository) InsertUser(ctx context.Context, u *user.User) error {
	if err := r.next.InsertUser(ctx, u); err != nil {
		return err //nolint: wrapcheck // already a RepositoryError
	}
	r.invalidate(ctx, u.ID)
	return nil
}

// DeleteUser drops the cached entry whatever the outcome, so a stale entry
// cannot outlive a failed or partial delete.
func (r *CachedRepository) DeleteUser(ctx context.Context, id string) error {
	err := r.next.DeleteUser(ctx, id)
	r.invalidate(ctx, id)
	return err //nolint: wrapcheck // already a RepositoryError
}

func (r *CachedRepository) load(ctx context.Context, id string) (*user.User, bool) {
	if r.isStale(id) {
		r.invalidate(ctx, id)
		if r.isStale(id) {
			return nil, false
		}
	}

	data, err := r.client.Get(ctx, makeKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		r.warn(ctx, "cache read failed", id, err)
		return nil, false
	}

	var e entry
	if err = json.Unmarshal(data, &e); err != nil {
		r.warn(ctx, "cache entry is corrupted", id, err)
		return nil, false
	}
	return e.toUser(), true
}

// generation returns the current generation of id. It reports false when
// Redis cannot tell, and then nothing must be stored.
func (r *CachedRepository) generation(ctx context.Context, id string) (string, bool) {
	gen, err := r.client.Get(ctx, makeGenKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", true
	}
	if err != nil {
		r.warn(ctx, "cache generation read failed", id, err)
		return "", false
	}
	return gen, true
}

func (r *CachedRepository) store(ctx context.Context, u *user.User, gen string) {
	if r.isStale(u.ID) {
		return
	}
	data, err := json.Marshal(toEntry(u))
	if err != nil {
		r.warn(ctx, "failed to encode cache entry", u.ID, err)
		return
	}
	err = storeIfCurrent.Run(ctx, r.client,
		[]string{makeKey(u.ID), makeGenKey(u.ID)},
		gen, data, r.ttl.Milliseconds(),
	).Err()
	if err != nil {
		r.warn(ctx, "cache write failed", u.ID, err)
	}
}

func (r *CachedRepository) invalidate(ctx context.Context, id string) {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, makeGenKey(id))
		pipe.PExpire(ctx, makeGenKey(id), max(r.ttl, minGenerationTTL))
		pipe.Del(ctx, makeKey(id))
		return nil
	})
	if err != nil {
		r.markStale(id)
		r.warn(ctx, "cache invalidation failed", id, err)
		return
	}
	r.clearStale(id)
}

func (r *CachedRepository) markStale(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stale[id] = time.Now()
}

func (r *CachedRepository) clearStale(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stale, id)
}

// isStale reports whether id may still have an entry that outlived its
// invalidation. An entry written before the failure expires within ttl of
// it; the doubled window also covers a write that was already in flight.
func (r *CachedRepository) isStale(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	since, ok := r.stale[id]
	if !ok {
		return false
	}
	if time.Since(since) > 2*r.ttl {
		delete(r.stale, id)
		return false
	}
	return true
}

func (r *CachedRepository) warn(ctx context.Context, msg, id string, err error) {
	r.log.LogAttrs(ctx,
		slog.LevelWarn,
		msg,
		slog.String(model.KeyUserID, id),
		slog.Any(model.KeyLoggerError, err),
	)
}
