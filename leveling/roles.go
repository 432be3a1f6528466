package leveling

import (
	"context"
	"fmt"

	"github.com/disgoorg/snowflake/v2"

	"github.com/varmanaa/seed/cache"
)

// applyLevelChange checks whether newXP crosses a level boundary and, if so,
// pushes the member's full target role set to the role patcher. The target
// is the member's current roles unioned with every configured role at or
// below the new level.
func (e *Engine) applyLevelChange(ctx context.Context, guild *cache.Guild, member *cache.Member, newXP int64) error {
	currentLevel := LevelFor(member.XP)
	newLevel := LevelFor(newXP)
	if newLevel == currentLevel {
		return nil
	}

	target := member.RoleIDs.Clone()
	for _, levelRoles := range guild.Levels {
		if levelRoles.Level > newLevel {
			continue
		}
		for roleID := range levelRoles.RoleIDs {
			target.Add(roleID)
		}
	}

	if err := e.roles.ReplaceMemberRoles(ctx, guild.ID, member.UserID, target.Values()); err != nil {
		return fmt.Errorf("replace roles for %d/%d: %w", guild.ID, member.UserID, err)
	}
	return nil
}

// HandleRoleDelete reacts to a guild-wide role deletion. The durable store
// determines which members held the role and hands back their remaining
// roles; the cache is updated per member and the guild's level table loses
// any level whose role set the deletion emptied.
func (e *Engine) HandleRoleDelete(ctx context.Context, guildID, roleID snowflake.ID) error {
	updated, err := e.store.RemoveRole(ctx, guildID, roleID)
	if err != nil {
		return fmt.Errorf("remove role %d from guild %d: %w", roleID, guildID, err)
	}

	for userID, remaining := range updated {
		e.cache.UpdateMember(guildID, userID, cache.MemberUpdate{
			RoleIDs: cache.NewSet(remaining...),
		})
	}

	guild, ok := e.cache.GetGuild(guildID)
	if !ok {
		return nil
	}
	pruned := make([]cache.LevelRoles, 0, len(guild.Levels))
	for _, levelRoles := range guild.Levels {
		if !levelRoles.RoleIDs.Contains(roleID) {
			pruned = append(pruned, levelRoles)
			continue
		}
		remaining := levelRoles.RoleIDs.Clone()
		remaining.Remove(roleID)
		if len(remaining) == 0 {
			continue
		}
		pruned = append(pruned, cache.LevelRoles{Level: levelRoles.Level, RoleIDs: remaining})
	}
	e.cache.UpdateGuild(guildID, cache.GuildUpdate{Levels: &pruned})
	return nil
}
