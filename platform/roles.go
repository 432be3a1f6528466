package platform

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// restRolePatcher syncs a member's role list through the Discord REST
// API.
type restRolePatcher struct {
	rest rest.Rest
}

func (r *restRolePatcher) ReplaceMemberRoles(ctx context.Context, guildID, userID snowflake.ID, roleIDs []snowflake.ID) error {
	_, err := r.rest.UpdateMember(guildID, userID, discord.MemberUpdate{
		Roles: &roleIDs,
	})
	if err != nil {
		return fmt.Errorf("platform: update roles for member %d in guild %d: %w", userID, guildID, err)
	}
	return nil
}
