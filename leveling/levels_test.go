package leveling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForMonotonic(t *testing.T) {
	previous := 0
	for xp := int64(0); xp < 2_000_000; xp += 997 {
		level := LevelFor(xp)
		assert.GreaterOrEqual(t, level, previous, "xp %d", xp)
		previous = level
	}
}

func TestLevelForBoundaries(t *testing.T) {
	for _, tier := range Tiers()[1:] {
		assert.Less(t, LevelFor(tier.TotalXP-1), LevelFor(tier.TotalXP),
			"level must increase at the floor of level %d", tier.Level)
		assert.Equal(t, tier.Level, LevelFor(tier.TotalXP))
	}
}

func TestLevelForStartsAtZero(t *testing.T) {
	assert.Equal(t, 0, LevelFor(0))
	assert.Equal(t, 0, LevelFor(99))
	assert.Equal(t, 1, LevelFor(100))
}

func TestLevelForTerminal(t *testing.T) {
	assert.Equal(t, MaxLevel, LevelFor(1<<62))

	terminal := TierFor(1 << 62)
	assert.Equal(t, int64(0), terminal.XPToNext)
	assert.Equal(t, MaxLevel, LevelFor(terminal.TotalXP))
}
