package leveling

import (
	"context"
	"math/rand"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/varmanaa/seed/cache"
)

// Storage is the durable-storage collaborator. Every write is safe to
// retry: XP writes are additive and the rest are idempotent upserts.
type Storage interface {
	// UpdateMemberXP adds delta to the member's stored XP. A non-nil
	// messageTime also advances the stored last-message timestamp.
	UpdateMemberXP(ctx context.Context, guildID, userID snowflake.ID, delta int64, messageTime *time.Time) error
	// RemoveRole strips the role from every member holding it and returns
	// each affected user with their remaining roles.
	RemoveRole(ctx context.Context, guildID, roleID snowflake.ID) (map[snowflake.ID][]snowflake.ID, error)
}

// RolePatcher applies a member's full desired role set, never a diff.
type RolePatcher interface {
	ReplaceMemberRoles(ctx context.Context, guildID, userID snowflake.ID, roleIDs []snowflake.ID) error
}

// Board mirrors per-guild XP standings, best effort. A nil Board disables
// mirroring.
type Board interface {
	AddXP(ctx context.Context, guildID, userID snowflake.ID, delta int64) error
}

// Engine turns gateway events into XP awards and cache mutations. Events
// are handled one goroutine each with no per-member serialization; a race
// between two events on the same member loses one cache update, which the
// additive storage writes absorb.
type Engine struct {
	cache *cache.Cache
	store Storage
	roles RolePatcher
	board Board

	now  func() time.Time
	intn func(n int) int
}

func New(c *cache.Cache, store Storage, roles RolePatcher, board Board) *Engine {
	return &Engine{
		cache: c,
		store: store,
		roles: roles,
		board: board,
		now:   time.Now,
		intn:  rand.Intn,
	}
}

func (e *Engine) mirrorXP(ctx context.Context, guildID, userID snowflake.ID, delta int64) {
	if e.board == nil {
		return
	}
	// Standings can be rebuilt from the durable store at any time.
	_ = e.board.AddXP(ctx, guildID, userID, delta)
}
