package cache

import "github.com/disgoorg/snowflake/v2"

func (c *Cache) GetChannel(channelID snowflake.ID) (*Channel, bool) {
	return c.channels.Get(channelID)
}

// InsertChannel tracks a voice channel and registers it with its owning
// guild. Callers filter to voice-capable channel kinds; nothing else drives
// XP, so nothing else is stored.
func (c *Cache) InsertChannel(channel *Channel) {
	if channel.UserIDs == nil {
		channel.UserIDs = NewSet[snowflake.ID]()
	}
	c.channels.Insert(channel.ID, channel)

	guild, ok := c.guilds.Get(channel.GuildID)
	if !ok {
		return
	}
	channelIDs := guild.ChannelIDs.Clone()
	channelIDs.Add(channel.ID)
	c.UpdateGuild(guild.ID, GuildUpdate{ChannelIDs: channelIDs})
}

func (c *Cache) RemoveChannel(channelID snowflake.ID) {
	removed, ok := c.channels.Remove(channelID)
	if !ok {
		return
	}

	guild, ok := c.guilds.Get(removed.GuildID)
	if !ok {
		return
	}
	channelIDs := guild.ChannelIDs.Clone()
	channelIDs.Remove(channelID)
	c.UpdateGuild(guild.ID, GuildUpdate{ChannelIDs: channelIDs})
}

// UpdateChannel replaces the channel snapshot with the occupant set applied.
// Missing channels are skipped: the channel may have been deleted while the
// triggering event was in flight.
func (c *Cache) UpdateChannel(channelID snowflake.ID, update ChannelUpdate) {
	current, ok := c.channels.Get(channelID)
	if !ok {
		return
	}

	next := &Channel{
		ID:      current.ID,
		GuildID: current.GuildID,
		UserIDs: current.UserIDs,
	}
	if update.UserIDs != nil {
		next.UserIDs = update.UserIDs
	}

	c.channels.Insert(channelID, next)
}
