// Package leveling implements the XP engine: message and voice XP accrual,
// level lookup and the role synchronization that follows a level change. It
// reads and mutates the cache and talks to two injected collaborators, the
// durable XP store and the role patcher.
package leveling

// MaxLevel is the terminal level. XP past its floor never leaves it.
const MaxLevel = 100

// Tier is one row of the level table: the cumulative XP floor of a level
// and the XP needed to advance past it.
type Tier struct {
	Level    int
	TotalXP  int64
	XPToNext int64
}

var tiers [MaxLevel + 1]Tier

func init() {
	var total int64
	for level := 0; level <= MaxLevel; level++ {
		toNext := int64(5*level*level + 50*level + 100)
		if level == MaxLevel {
			toNext = 0
		}
		tiers[level] = Tier{Level: level, TotalXP: total, XPToNext: toNext}
		total += toNext
	}
}

// TierFor maps accumulated XP to its tier: the last table entry whose floor
// does not exceed xp, or the terminal tier once xp clears every floor.
func TierFor(xp int64) Tier {
	for i, tier := range tiers {
		if xp < tier.TotalXP {
			return tiers[max(i-1, 0)]
		}
	}
	return tiers[MaxLevel]
}

func LevelFor(xp int64) int {
	return TierFor(xp).Level
}

// Tiers returns the full level table in ascending level order.
func Tiers() []Tier {
	return tiers[:]
}
