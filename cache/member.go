package cache

import "github.com/disgoorg/snowflake/v2"

func (c *Cache) GetMember(guildID, userID snowflake.ID) (*Member, bool) {
	return c.members.Get(MemberKey{GuildID: guildID, UserID: userID})
}

// InsertMember stores the member snapshot and registers the user id in the
// owning guild's member set.
func (c *Cache) InsertMember(member *Member) {
	if member.RoleIDs == nil {
		member.RoleIDs = NewSet[snowflake.ID]()
	}
	c.members.Insert(MemberKey{GuildID: member.GuildID, UserID: member.UserID}, member)

	guild, ok := c.guilds.Get(member.GuildID)
	if !ok {
		return
	}
	memberIDs := guild.MemberIDs.Clone()
	memberIDs.Add(member.UserID)
	c.UpdateGuild(guild.ID, GuildUpdate{MemberIDs: memberIDs})
}

func (c *Cache) RemoveMember(guildID, userID snowflake.ID) {
	if _, ok := c.members.Remove(MemberKey{GuildID: guildID, UserID: userID}); !ok {
		return
	}

	guild, ok := c.guilds.Get(guildID)
	if !ok {
		return
	}
	memberIDs := guild.MemberIDs.Clone()
	memberIDs.Remove(userID)
	c.UpdateGuild(guild.ID, GuildUpdate{MemberIDs: memberIDs})
}

// UpdateMember applies a sparse field override to the member snapshot. The
// update is silently dropped when the member is no longer cached.
func (c *Cache) UpdateMember(guildID, userID snowflake.ID, update MemberUpdate) {
	key := MemberKey{GuildID: guildID, UserID: userID}
	current, ok := c.members.Get(key)
	if !ok {
		return
	}

	next := &Member{
		GuildID:        guildID,
		UserID:         userID,
		Username:       current.Username,
		Discriminator:  current.Discriminator,
		AvatarURL:      current.AvatarURL,
		Bot:            current.Bot,
		XP:             current.XP,
		LastMessageAt:  current.LastMessageAt,
		JoinedVoiceAt:  current.JoinedVoiceAt,
		VoiceChannelID: current.VoiceChannelID,
		RoleIDs:        current.RoleIDs,
	}
	if update.Username != nil {
		next.Username = *update.Username
	}
	if update.Discriminator != nil {
		next.Discriminator = *update.Discriminator
	}
	if update.AvatarURL != nil {
		next.AvatarURL = *update.AvatarURL
	}
	if update.XP != nil {
		next.XP = *update.XP
	}
	if update.RoleIDs != nil {
		next.RoleIDs = update.RoleIDs
	}
	if update.SetLastMessageAt {
		next.LastMessageAt = update.LastMessageAt
	}
	if update.SetJoinedVoiceAt {
		next.JoinedVoiceAt = update.JoinedVoiceAt
	}
	if update.SetVoiceChannelID {
		next.VoiceChannelID = update.VoiceChannelID
	}

	c.members.Insert(key, next)
}
