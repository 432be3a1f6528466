package cache

import "github.com/disgoorg/snowflake/v2"

func (c *Cache) GetGuild(guildID snowflake.ID) (*Guild, bool) {
	return c.guilds.Get(guildID)
}

// InsertGuild materializes a guild from a full external snapshot. The
// provided channels and members are installed alongside and the guild's id
// sets are derived from them, so the stored snapshot is self-consistent.
// Inserting also clears the guild from the unavailable set.
func (c *Cache) InsertGuild(guild *Guild, channels []*Channel, members []*Member) {
	channelIDs := NewSet[snowflake.ID]()
	for _, channel := range channels {
		channelIDs.Add(channel.ID)
		c.channels.Insert(channel.ID, channel)
	}

	memberIDs := NewSet[snowflake.ID]()
	for _, member := range members {
		memberIDs.Add(member.UserID)
		c.members.Insert(MemberKey{GuildID: guild.ID, UserID: member.UserID}, member)
	}

	guild.ChannelIDs = channelIDs
	guild.MemberIDs = memberIDs
	c.guilds.Insert(guild.ID, guild)
	c.unavailable.Remove(guild.ID)
}

// RemoveGuild drops the guild and cascades over every member and channel it
// owns. With unavailable set, the guild is parked in the unavailable set so
// a later resync can tell an outage apart from a kick.
func (c *Cache) RemoveGuild(guildID snowflake.ID, unavailable bool) {
	removed, ok := c.guilds.Remove(guildID)
	if ok {
		for userID := range removed.MemberIDs {
			c.members.Remove(MemberKey{GuildID: guildID, UserID: userID})
		}
		for channelID := range removed.ChannelIDs {
			c.channels.Remove(channelID)
		}
	}

	if unavailable {
		c.unavailable.Insert(guildID, struct{}{})
	}
}

// UpdateGuild resolves every unset field of update from the current snapshot
// and installs the result. A concurrently removed guild makes this a no-op.
func (c *Cache) UpdateGuild(guildID snowflake.ID, update GuildUpdate) {
	current, ok := c.guilds.Get(guildID)
	if !ok {
		return
	}

	next := &Guild{
		ID:           guildID,
		Name:         current.Name,
		ChannelIDs:   current.ChannelIDs,
		MemberIDs:    current.MemberIDs,
		Levels:       current.Levels,
		XPMultiplier: current.XPMultiplier,
	}
	if update.Name != nil {
		next.Name = *update.Name
	}
	if update.ChannelIDs != nil {
		next.ChannelIDs = update.ChannelIDs
	}
	if update.MemberIDs != nil {
		next.MemberIDs = update.MemberIDs
	}
	if update.Levels != nil {
		next.Levels = *update.Levels
	}
	if update.XPMultiplier != nil {
		next.XPMultiplier = *update.XPMultiplier
	}

	c.guilds.Insert(guildID, next)
}
