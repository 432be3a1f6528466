package platform

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/varmanaa/seed/cache"
	"github.com/varmanaa/seed/logger/dlog"
)

// materializeGuild builds the full in-memory picture of a guild: the
// durable rows are loaded or created, the member list is chunked in
// from the gateway, and members already sitting in voice start an
// accrual session as of now.
func (b *Bot) materializeGuild(ctx context.Context, g discord.Guild) {
	multiplier, err := b.DB.InsertGuild(ctx, g.ID)
	if err != nil {
		dlog.Error("failed to insert guild", "guildID", g.ID, "error", err)
		return
	}
	levels, err := b.DB.GetLevels(ctx, g.ID)
	if err != nil {
		dlog.Error("failed to load levels", "guildID", g.ID, "error", err)
		return
	}
	records, err := b.DB.GetMembers(ctx, g.ID)
	if err != nil {
		dlog.Error("failed to load members", "guildID", g.ID, "error", err)
		return
	}

	chunked, err := b.client.MemberChunkingManager().RequestMembersWithQuery(g.ID, "", 0)
	if err != nil {
		dlog.Error("failed to chunk members", "guildID", g.ID, "error", err)
		return
	}

	channels := b.voiceChannels(g.ID)
	occupants, sessions := b.voiceOccupancy(g.ID, channels)

	now := time.Now()
	members := make([]*cache.Member, 0, len(chunked))
	for _, m := range chunked {
		record := records[m.User.ID]
		member := memberFromDiscord(g.ID, m, record.XP, record.LastMessageAt)
		if channelID, ok := sessions[m.User.ID]; ok {
			joinedAt := now
			member.JoinedVoiceAt = &joinedAt
			id := channelID
			member.VoiceChannelID = &id
		}
		members = append(members, member)
		if _, known := records[m.User.ID]; !known {
			if _, err := b.DB.InsertMember(ctx, g.ID, m.User.ID, m.RoleIDs); err != nil {
				dlog.Error("failed to insert member", "guildID", g.ID, "userID", m.User.ID, "error", err)
			}
		}
	}

	for _, channel := range channels {
		channel.UserIDs = occupants[channel.ID]
	}

	b.Cache.InsertGuild(&cache.Guild{
		ID:           g.ID,
		Name:         g.Name,
		Levels:       levels,
		XPMultiplier: multiplier,
	}, channels, members)

	if b.Board != nil {
		scores := make(map[snowflake.ID]int64, len(records))
		for userID, record := range records {
			scores[userID] = record.XP
		}
		if err := b.Board.Populate(ctx, g.ID, scores); err != nil {
			dlog.Warn("failed to populate standings", "guildID", g.ID, "error", err)
		}
	}

	dlog.Info("materialized guild", "guildID", g.ID, "name", g.Name, "members", len(members), "channels", len(channels))
}

// voiceChannels lists the guild's voice-capable channels from the disgo
// cache.
func (b *Bot) voiceChannels(guildID snowflake.ID) []*cache.Channel {
	var channels []*cache.Channel
	b.client.Caches().ChannelsForEach(func(channel discord.GuildChannel) {
		if channel.GuildID() != guildID || !isVoiceKind(channel.Type()) {
			return
		}
		channels = append(channels, &cache.Channel{
			ID:      channel.ID(),
			GuildID: guildID,
		})
	})
	return channels
}

// voiceOccupancy maps current voice states onto tracked channels. A
// state counts only when it is parked in a channel we track.
func (b *Bot) voiceOccupancy(guildID snowflake.ID, channels []*cache.Channel) (map[snowflake.ID]cache.Set[snowflake.ID], map[snowflake.ID]snowflake.ID) {
	tracked := cache.NewSet[snowflake.ID]()
	for _, channel := range channels {
		tracked.Add(channel.ID)
	}

	occupants := make(map[snowflake.ID]cache.Set[snowflake.ID])
	sessions := make(map[snowflake.ID]snowflake.ID)
	b.client.Caches().VoiceStatesForEach(guildID, func(state discord.VoiceState) {
		if state.ChannelID == nil || !tracked.Contains(*state.ChannelID) {
			return
		}
		set, ok := occupants[*state.ChannelID]
		if !ok {
			set = cache.NewSet[snowflake.ID]()
			occupants[*state.ChannelID] = set
		}
		set.Add(state.UserID)
		sessions[state.UserID] = *state.ChannelID
	})
	return occupants, sessions
}
