package leveling

import (
	"context"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varmanaa/seed/cache"
)

func TestHandleRoleDelete(t *testing.T) {
	deleted, kept := snowflake.ID(2), snowflake.ID(1)
	h := newEngineHarness(1.0, []cache.LevelRoles{
		{Level: 1, RoleIDs: cache.NewSet(kept)},
		{Level: 3, RoleIDs: cache.NewSet(deleted)},
		{Level: 5, RoleIDs: cache.NewSet(kept, deleted)},
	})
	h.addMember(engUserID, 0, kept, deleted)
	h.addMember(engOtherID, 0, deleted)
	h.storage.removed = map[snowflake.ID][]snowflake.ID{
		engUserID:  {kept},
		engOtherID: {},
	}

	require.NoError(t, h.engine.HandleRoleDelete(context.Background(), engGuildID, deleted))

	member, _ := h.cache.GetMember(engGuildID, engUserID)
	assert.True(t, member.RoleIDs.Contains(kept))
	assert.False(t, member.RoleIDs.Contains(deleted))
	other, _ := h.cache.GetMember(engGuildID, engOtherID)
	assert.Empty(t, other.RoleIDs)

	guild, _ := h.cache.GetGuild(engGuildID)
	require.Len(t, guild.Levels, 2, "a level whose role set empties is deleted, not stored empty")
	assert.Equal(t, 1, guild.Levels[0].Level)
	assert.Equal(t, 5, guild.Levels[1].Level)
	assert.True(t, guild.Levels[1].RoleIDs.Contains(kept))
	assert.False(t, guild.Levels[1].RoleIDs.Contains(deleted))
}

func TestHandleRoleDeleteStorageFailure(t *testing.T) {
	h := newEngineHarness(1.0, []cache.LevelRoles{
		{Level: 1, RoleIDs: cache.NewSet(snowflake.ID(2))},
	})
	h.storage.err = errCollaborator

	err := h.engine.HandleRoleDelete(context.Background(), engGuildID, snowflake.ID(2))
	require.ErrorIs(t, err, errCollaborator)

	guild, _ := h.cache.GetGuild(engGuildID)
	assert.Len(t, guild.Levels, 1, "the level table is only pruned after the store succeeds")
}
