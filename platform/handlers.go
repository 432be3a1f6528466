package platform

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/varmanaa/seed/cache"
	"github.com/varmanaa/seed/leveling"
	"github.com/varmanaa/seed/logger/dlog"
)

func (b *Bot) onReady(e *events.Ready) {
	user, _ := e.Client().Caches().SelfUser()
	dlog.Info("Bot is up!", "username", user.Username)

	for _, guild := range e.Guilds {
		b.Cache.InsertUnavailableGuild(guild.ID)
	}

	if err := b.registerCommands(); err != nil {
		dlog.Error("failed to register commands", "error", err)
	}
}

func (b *Bot) onGuildReady(e *events.GuildReady) {
	b.materializeGuild(context.TODO(), e.Guild)
}

func (b *Bot) onGuildJoin(e *events.GuildJoin) {
	b.materializeGuild(context.TODO(), e.Guild)
}

func (b *Bot) onGuildUpdate(e *events.GuildUpdate) {
	b.Cache.UpdateGuild(e.GuildID, cache.GuildUpdate{Name: &e.Guild.Name})
}

func (b *Bot) onGuildLeave(e *events.GuildLeave) {
	ctx := context.TODO()
	if err := b.DB.RemoveGuild(ctx, e.GuildID); err != nil {
		dlog.Error("failed to remove guild", "guildID", e.GuildID, "error", err)
	}
	if err := b.DB.RemoveGuildLevels(ctx, e.GuildID); err != nil {
		dlog.Error("failed to remove guild levels", "guildID", e.GuildID, "error", err)
	}
	if err := b.DB.RemoveGuildMembers(ctx, e.GuildID); err != nil {
		dlog.Error("failed to remove guild members", "guildID", e.GuildID, "error", err)
	}
	if b.Board != nil {
		if err := b.Board.Remove(ctx, e.GuildID); err != nil {
			dlog.Warn("failed to drop guild standings", "guildID", e.GuildID, "error", err)
		}
	}
	b.Cache.RemoveGuild(e.GuildID, false)
	dlog.Info("left guild", "guildID", e.GuildID)
}

func (b *Bot) onGuildUnavailable(e *events.GuildUnavailable) {
	b.Cache.RemoveGuild(e.GuildID, true)
}

func (b *Bot) onChannelCreate(e *events.GuildChannelCreate) {
	if !isVoiceKind(e.Channel.Type()) {
		return
	}
	b.Cache.InsertChannel(&cache.Channel{
		ID:      e.ChannelID,
		GuildID: e.GuildID,
	})
}

func (b *Bot) onChannelDelete(e *events.GuildChannelDelete) {
	if !isVoiceKind(e.Channel.Type()) {
		return
	}
	b.Cache.RemoveChannel(e.ChannelID)
}

func (b *Bot) onMemberJoin(e *events.GuildMemberJoin) {
	ctx := context.TODO()
	record, err := b.DB.InsertMember(ctx, e.GuildID, e.Member.User.ID, e.Member.RoleIDs)
	if err != nil {
		dlog.Error("failed to insert member", "guildID", e.GuildID, "userID", e.Member.User.ID, "error", err)
		return
	}
	b.Cache.InsertMember(memberFromDiscord(e.GuildID, e.Member, record.XP, record.LastMessageAt))
}

func (b *Bot) onMemberLeave(e *events.GuildMemberLeave) {
	b.Cache.RemoveMember(e.GuildID, e.User.ID)
}

func (b *Bot) onMemberUpdate(e *events.GuildMemberUpdate) {
	user := e.Member.User
	b.Cache.UpdateMember(e.GuildID, user.ID, cache.MemberUpdate{
		Username:      &user.Username,
		Discriminator: &user.Discriminator,
		AvatarURL:     avatarURL(user),
		RoleIDs:       cache.NewSet(e.Member.RoleIDs...),
	})
	if err := b.DB.UpdateMemberRoles(context.TODO(), e.GuildID, user.ID, e.Member.RoleIDs); err != nil {
		dlog.Error("failed to persist member roles", "guildID", e.GuildID, "userID", user.ID, "error", err)
	}
}

func (b *Bot) onRoleDelete(e *events.RoleDelete) {
	if err := b.Engine.HandleRoleDelete(context.TODO(), e.GuildID, e.RoleID); err != nil {
		dlog.Error("failed to handle role delete", "guildID", e.GuildID, "roleID", e.RoleID, "error", err)
	}
}

func (b *Bot) onMessageCreate(e *events.GuildMessageCreate) {
	err := b.Engine.HandleMessage(context.TODO(), leveling.Message{
		GuildID:   e.GuildID,
		MessageID: e.MessageID,
		AuthorID:  e.Message.Author.ID,
		AuthorBot: e.Message.Author.Bot,
	})
	if err != nil {
		dlog.Error("failed to handle message", "guildID", e.GuildID, "messageID", e.MessageID, "error", err)
	}
}

func (b *Bot) onVoiceStateUpdate(e *events.GuildVoiceStateUpdate) {
	state := e.VoiceState
	err := b.Engine.HandleVoiceState(context.TODO(), leveling.VoiceState{
		GuildID:   state.GuildID,
		UserID:    state.UserID,
		ChannelID: state.ChannelID,
		Deaf:      state.GuildDeaf,
		Mute:      state.GuildMute,
		SelfDeaf:  state.SelfDeaf,
		SelfMute:  state.SelfMute,
		Suppress:  state.Suppress,
	})
	if err != nil {
		dlog.Error("failed to handle voice state", "guildID", state.GuildID, "userID", state.UserID, "error", err)
	}
}

func isVoiceKind(t discord.ChannelType) bool {
	return t == discord.ChannelTypeGuildVoice || t == discord.ChannelTypeGuildStageVoice
}

func avatarURL(user discord.User) *string {
	url := user.EffectiveAvatarURL()
	return &url
}

func memberFromDiscord(guildID snowflake.ID, m discord.Member, xp int64, lastMessageAt *time.Time) *cache.Member {
	return &cache.Member{
		GuildID:       guildID,
		UserID:        m.User.ID,
		Username:      m.User.Username,
		Discriminator: m.User.Discriminator,
		AvatarURL:     m.User.EffectiveAvatarURL(),
		Bot:           m.User.Bot,
		XP:            xp,
		LastMessageAt: lastMessageAt,
		RoleIDs:       cache.NewSet(m.RoleIDs...),
	}
}
