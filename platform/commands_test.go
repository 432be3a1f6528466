package platform

import (
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varmanaa/seed/cache"
)

const (
	roleOne   = snowflake.ID(1)
	roleTwo   = snowflake.ID(2)
	roleThree = snowflake.ID(3)
)

func TestUpsertLevelRoleKeepsOrder(t *testing.T) {
	levels := []cache.LevelRoles{
		{Level: 1, RoleIDs: cache.NewSet(roleOne)},
		{Level: 5, RoleIDs: cache.NewSet(roleTwo)},
	}

	levels = upsertLevelRole(levels, 3, roleThree)

	require.Len(t, levels, 3)
	assert.Equal(t, 1, levels[0].Level)
	assert.Equal(t, 3, levels[1].Level)
	assert.Equal(t, 5, levels[2].Level)
	assert.True(t, levels[1].RoleIDs.Contains(roleThree))
}

func TestUpsertLevelRoleMergesExistingLevel(t *testing.T) {
	levels := []cache.LevelRoles{
		{Level: 3, RoleIDs: cache.NewSet(roleOne)},
	}

	next := upsertLevelRole(levels, 3, roleTwo)

	require.Len(t, next, 1)
	assert.True(t, next[0].RoleIDs.Contains(roleOne))
	assert.True(t, next[0].RoleIDs.Contains(roleTwo))
	assert.False(t, levels[0].RoleIDs.Contains(roleTwo), "input slice must stay untouched")
}

func TestUpsertLevelRoleAppendsHighestLevel(t *testing.T) {
	levels := upsertLevelRole(nil, 10, roleOne)

	require.Len(t, levels, 1)
	assert.Equal(t, 10, levels[0].Level)
}

func TestPruneLevelRoleDropsEmptiedLevel(t *testing.T) {
	levels := []cache.LevelRoles{
		{Level: 3, RoleIDs: cache.NewSet(roleOne)},
		{Level: 5, RoleIDs: cache.NewSet(roleTwo)},
	}

	next, changed := pruneLevelRole(levels, 3, roleOne)

	assert.True(t, changed)
	require.Len(t, next, 1)
	assert.Equal(t, 5, next[0].Level)
}

func TestPruneLevelRoleKeepsRemainingRoles(t *testing.T) {
	levels := []cache.LevelRoles{
		{Level: 3, RoleIDs: cache.NewSet(roleOne, roleTwo)},
	}

	next, changed := pruneLevelRole(levels, 3, roleOne)

	assert.True(t, changed)
	require.Len(t, next, 1)
	assert.False(t, next[0].RoleIDs.Contains(roleOne))
	assert.True(t, next[0].RoleIDs.Contains(roleTwo))
}

func TestPruneLevelRoleUnknownRole(t *testing.T) {
	levels := []cache.LevelRoles{
		{Level: 3, RoleIDs: cache.NewSet(roleOne)},
	}

	next, changed := pruneLevelRole(levels, 3, roleThree)

	assert.False(t, changed)
	assert.Equal(t, levels, next)
}

func TestLevelRoleIDs(t *testing.T) {
	levels := []cache.LevelRoles{
		{Level: 3, RoleIDs: cache.NewSet(roleTwo, roleOne)},
	}

	assert.Equal(t, []snowflake.ID{roleOne, roleTwo}, levelRoleIDs(levels, 3))
	assert.Nil(t, levelRoleIDs(levels, 4))
}
