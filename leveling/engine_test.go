package leveling

import (
	"context"
	"errors"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/varmanaa/seed/cache"
)

type xpWrite struct {
	GuildID     snowflake.ID
	UserID      snowflake.ID
	Delta       int64
	MessageTime *time.Time
}

// fakeStorage records additive XP writes the way the database would apply
// them.
type fakeStorage struct {
	writes  []xpWrite
	xp      map[snowflake.ID]int64
	removed map[snowflake.ID][]snowflake.ID
	err     error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{xp: make(map[snowflake.ID]int64)}
}

func (s *fakeStorage) UpdateMemberXP(_ context.Context, guildID, userID snowflake.ID, delta int64, messageTime *time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, xpWrite{GuildID: guildID, UserID: userID, Delta: delta, MessageTime: messageTime})
	s.xp[userID] += delta
	return nil
}

func (s *fakeStorage) RemoveRole(_ context.Context, _, _ snowflake.ID) (map[snowflake.ID][]snowflake.ID, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.removed, nil
}

type rolePatch struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	RoleIDs []snowflake.ID
}

type fakeRolePatcher struct {
	patches []rolePatch
	err     error
}

func (p *fakeRolePatcher) ReplaceMemberRoles(_ context.Context, guildID, userID snowflake.ID, roleIDs []snowflake.ID) error {
	if p.err != nil {
		return p.err
	}
	p.patches = append(p.patches, rolePatch{GuildID: guildID, UserID: userID, RoleIDs: roleIDs})
	return nil
}

var errCollaborator = errors.New("collaborator unavailable")

const (
	engGuildID   = snowflake.ID(847908927554322432)
	engChannelID = snowflake.ID(847908927554322436)
	engUserID    = snowflake.ID(105141071924143696)
	engOtherID   = snowflake.ID(80351110224678912)
)

type engineHarness struct {
	engine  *Engine
	cache   *cache.Cache
	storage *fakeStorage
	patcher *fakeRolePatcher
}

func newEngineHarness(multiplier float64, levels []cache.LevelRoles) *engineHarness {
	c := cache.New()
	c.InsertGuild(
		&cache.Guild{ID: engGuildID, Name: "seedbed", XPMultiplier: multiplier, Levels: levels},
		[]*cache.Channel{{ID: engChannelID, GuildID: engGuildID, UserIDs: cache.NewSet[snowflake.ID]()}},
		nil,
	)

	storage := newFakeStorage()
	patcher := &fakeRolePatcher{}
	engine := New(c, storage, patcher, nil)
	engine.intn = func(int) int { return 0 }
	return &engineHarness{engine: engine, cache: c, storage: storage, patcher: patcher}
}

func (h *engineHarness) addMember(userID snowflake.ID, xp int64, roleIDs ...snowflake.ID) {
	h.cache.InsertMember(&cache.Member{
		GuildID: engGuildID,
		UserID:  userID,
		XP:      xp,
		RoleIDs: cache.NewSet(roleIDs...),
	})
}

// messageIDAt builds a snowflake whose embedded creation time is t.
func messageIDAt(t time.Time) snowflake.ID {
	return snowflake.ID(uint64(t.UnixMilli()-discordEpoch) << 22)
}
