package platform

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/varmanaa/seed/cache"
	"github.com/varmanaa/seed/leaderboard"
	"github.com/varmanaa/seed/leveling"
	"github.com/varmanaa/seed/logger/dlog"
)

const (
	embedColor      = 0x2ECC71
	leaderboardPage = 10

	minMultiplier = 1.0
	maxMultiplier = 5.0
)

var commands = []discord.ApplicationCommandCreate{
	discord.SlashCommandCreate{
		Name:        "rank",
		Description: "Show a member's level and standing",
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{
				Name:        "user",
				Description: "Member to look up, defaults to you",
			},
		},
	},
	discord.SlashCommandCreate{
		Name:        "leaderboard",
		Description: "Show the guild's XP standings",
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionInt{
				Name:        "page",
				Description: "Page of the standings to show",
			},
		},
	},
	discord.SlashCommandCreate{
		Name:        "latency",
		Description: "Show the gateway latency",
	},
	discord.SlashCommandCreate{
		Name:        "config",
		Description: "Configure leveling for this guild",
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "add-level-role",
				Description: "Grant a role on reaching a level",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "level",
						Description: "Level that grants the role",
						Required:    true,
					},
					discord.ApplicationCommandOptionRole{
						Name:        "role",
						Description: "Role to grant",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "remove-level-role",
				Description: "Stop granting a role at a level",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "level",
						Description: "Level the role is granted at",
						Required:    true,
					},
					discord.ApplicationCommandOptionRole{
						Name:        "role",
						Description: "Role to remove",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "view-level-roles",
				Description: "List the configured level roles",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "set-xp-multiplier",
				Description: "Set the guild's XP multiplier",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionFloat{
						Name:        "multiplier",
						Description: "Multiplier between 1.0 and 5.0",
						Required:    true,
					},
				},
			},
		},
	},
}

func (b *Bot) registerCommands() error {
	_, err := b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), commands)
	return err
}

func (b *Bot) onCommand(e *events.ApplicationCommandInteractionCreate) {
	if e.GuildID() == nil {
		return
	}
	data := e.SlashCommandInteractionData()

	var err error
	switch data.CommandName() {
	case "rank":
		err = b.rankCommand(e, data)
	case "leaderboard":
		err = b.leaderboardCommand(e, data)
	case "latency":
		err = b.latencyCommand(e)
	case "config":
		err = b.configCommand(e, data)
	default:
		return
	}
	if err != nil {
		dlog.Error("command failed", "command", data.CommandName(), "error", err)
	}
}

func (b *Bot) rankCommand(e *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) error {
	guildID := *e.GuildID()
	userID := e.User().ID
	if target, ok := data.OptSnowflake("user"); ok {
		userID = target
	}

	member, ok := b.Cache.GetMember(guildID, userID)
	if !ok {
		return replyText(e, "That member is not tracked here.")
	}

	tier := leveling.TierFor(member.XP)
	description := fmt.Sprintf("**Level** %d\n**XP** %d", tier.Level, member.XP)
	if tier.XPToNext > 0 {
		into := member.XP - tier.TotalXP
		description += fmt.Sprintf("\n**Progress** %d/%d to level %d", into, tier.XPToNext, tier.Level+1)
	}

	if rank, err := b.rankOf(context.TODO(), guildID, userID); err == nil {
		description += fmt.Sprintf("\n**Rank** #%d", rank)
	}

	embed := discord.NewEmbedBuilder().
		SetTitle(member.Username).
		SetDescription(description).
		SetColor(embedColor).
		Build()
	return e.CreateMessage(discord.NewMessageCreateBuilder().SetEmbeds(embed).Build())
}

func (b *Bot) rankOf(ctx context.Context, guildID, userID snowflake.ID) (int64, error) {
	if b.Board != nil {
		rank, err := b.Board.Rank(ctx, guildID, userID)
		if err == nil {
			return rank, nil
		}
		if err != leaderboard.ErrNotRanked {
			dlog.Warn("standings rank lookup failed", "guildID", guildID, "userID", userID, "error", err)
		}
	}
	ranked, err := b.DB.GetRank(ctx, guildID, userID)
	if err != nil {
		return 0, err
	}
	return ranked.Rank, nil
}

func (b *Bot) leaderboardCommand(e *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) error {
	guildID := *e.GuildID()
	page := 1
	if p, ok := data.OptInt("page"); ok && p > 0 {
		page = p
	}
	offset := (page - 1) * leaderboardPage

	entries, err := b.topOf(context.TODO(), guildID, offset, leaderboardPage)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return replyText(e, "Nobody has earned XP on this page yet.")
	}

	lines := make([]string, 0, len(entries))
	for i, entry := range entries {
		tier := leveling.TierFor(entry.XP)
		lines = append(lines, fmt.Sprintf("%d. <@%s> level %d, %d XP", offset+i+1, entry.UserID, tier.Level, entry.XP))
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Leaderboard").
		SetDescription(strings.Join(lines, "\n")).
		SetFooter(fmt.Sprintf("Page %d", page), "").
		SetColor(embedColor).
		Build()
	return e.CreateMessage(discord.NewMessageCreateBuilder().SetEmbeds(embed).Build())
}

func (b *Bot) topOf(ctx context.Context, guildID snowflake.ID, offset, limit int) ([]leaderboard.Entry, error) {
	if b.Board != nil {
		entries, err := b.Board.Top(ctx, guildID, offset, limit)
		if err == nil {
			return entries, nil
		}
		dlog.Warn("standings page lookup failed", "guildID", guildID, "error", err)
	}
	ranked, err := b.DB.TopMembers(ctx, guildID, offset, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]leaderboard.Entry, 0, len(ranked))
	for _, r := range ranked {
		entries = append(entries, leaderboard.Entry{UserID: r.UserID, XP: r.XP})
	}
	return entries, nil
}

func (b *Bot) latencyCommand(e *events.ApplicationCommandInteractionCreate) error {
	latency := e.Client().Gateway().Latency()
	return replyText(e, fmt.Sprintf("Gateway latency: %s", latency))
}

func (b *Bot) configCommand(e *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) error {
	if data.SubCommandName == nil {
		return nil
	}
	switch *data.SubCommandName {
	case "add-level-role":
		return b.addLevelRole(e, data)
	case "remove-level-role":
		return b.removeLevelRole(e, data)
	case "view-level-roles":
		return b.viewLevelRoles(e)
	case "set-xp-multiplier":
		return b.setXPMultiplier(e, data)
	}
	return nil
}

func (b *Bot) addLevelRole(e *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) error {
	guildID := *e.GuildID()
	level := data.Int("level")
	roleID := data.Snowflake("role")

	if level < 1 || level > leveling.MaxLevel {
		return replyText(e, fmt.Sprintf("Level must be between 1 and %d.", leveling.MaxLevel))
	}
	guild, ok := b.Cache.GetGuild(guildID)
	if !ok {
		return replyText(e, "This guild is not materialized yet, try again shortly.")
	}

	levels := upsertLevelRole(guild.Levels, level, roleID)
	roleIDs := levelRoleIDs(levels, level)
	if err := b.DB.InsertLevel(context.TODO(), guildID, level, roleIDs); err != nil {
		return err
	}
	b.Cache.UpdateGuild(guildID, cache.GuildUpdate{Levels: &levels})
	return replyText(e, fmt.Sprintf("Members reaching level %d now receive <@&%s>.", level, roleID))
}

func (b *Bot) removeLevelRole(e *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) error {
	guildID := *e.GuildID()
	level := data.Int("level")
	roleID := data.Snowflake("role")

	guild, ok := b.Cache.GetGuild(guildID)
	if !ok {
		return replyText(e, "This guild is not materialized yet, try again shortly.")
	}

	levels, changed := pruneLevelRole(guild.Levels, level, roleID)
	if !changed {
		return replyText(e, fmt.Sprintf("<@&%s> is not granted at level %d.", roleID, level))
	}

	ctx := context.TODO()
	roleIDs := levelRoleIDs(levels, level)
	if len(roleIDs) == 0 {
		if err := b.DB.RemoveLevel(ctx, guildID, level); err != nil {
			return err
		}
	} else {
		if err := b.DB.InsertLevel(ctx, guildID, level, roleIDs); err != nil {
			return err
		}
	}
	b.Cache.UpdateGuild(guildID, cache.GuildUpdate{Levels: &levels})
	return replyText(e, fmt.Sprintf("Level %d no longer grants <@&%s>.", level, roleID))
}

func (b *Bot) viewLevelRoles(e *events.ApplicationCommandInteractionCreate) error {
	guild, ok := b.Cache.GetGuild(*e.GuildID())
	if !ok {
		return replyText(e, "This guild is not materialized yet, try again shortly.")
	}
	if len(guild.Levels) == 0 {
		return replyText(e, "No level roles are configured.")
	}

	lines := make([]string, 0, len(guild.Levels))
	for _, row := range guild.Levels {
		mentions := make([]string, 0, len(row.RoleIDs))
		for _, roleID := range row.RoleIDs.Values() {
			mentions = append(mentions, fmt.Sprintf("<@&%s>", roleID))
		}
		lines = append(lines, fmt.Sprintf("Level %d: %s", row.Level, strings.Join(mentions, ", ")))
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Level roles").
		SetDescription(strings.Join(lines, "\n")).
		SetColor(embedColor).
		Build()
	return e.CreateMessage(discord.NewMessageCreateBuilder().SetEmbeds(embed).Build())
}

func (b *Bot) setXPMultiplier(e *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) error {
	guildID := *e.GuildID()
	multiplier := math.Trunc(data.Float("multiplier")*10) / 10
	if multiplier < minMultiplier || multiplier > maxMultiplier {
		return replyText(e, "The multiplier must be between 1.0 and 5.0.")
	}

	if err := b.DB.UpdateXPMultiplier(context.TODO(), guildID, multiplier); err != nil {
		return err
	}
	b.Cache.UpdateGuild(guildID, cache.GuildUpdate{XPMultiplier: &multiplier})
	return replyText(e, fmt.Sprintf("The XP multiplier is now %.1f.", multiplier))
}

func replyText(e *events.ApplicationCommandInteractionCreate, content string) error {
	return e.CreateMessage(discord.NewMessageCreateBuilder().SetContent(content).Build())
}

func upsertLevelRole(levels []cache.LevelRoles, level int, roleID snowflake.ID) []cache.LevelRoles {
	next := make([]cache.LevelRoles, 0, len(levels)+1)
	inserted := false
	for _, row := range levels {
		if row.Level == level {
			roleIDs := row.RoleIDs.Clone()
			roleIDs.Add(roleID)
			next = append(next, cache.LevelRoles{Level: level, RoleIDs: roleIDs})
			inserted = true
			continue
		}
		if !inserted && row.Level > level {
			next = append(next, cache.LevelRoles{Level: level, RoleIDs: cache.NewSet(roleID)})
			inserted = true
		}
		next = append(next, row)
	}
	if !inserted {
		next = append(next, cache.LevelRoles{Level: level, RoleIDs: cache.NewSet(roleID)})
	}
	return next
}

func pruneLevelRole(levels []cache.LevelRoles, level int, roleID snowflake.ID) ([]cache.LevelRoles, bool) {
	next := make([]cache.LevelRoles, 0, len(levels))
	changed := false
	for _, row := range levels {
		if row.Level != level || !row.RoleIDs.Contains(roleID) {
			next = append(next, row)
			continue
		}
		changed = true
		roleIDs := row.RoleIDs.Clone()
		roleIDs.Remove(roleID)
		if len(roleIDs) > 0 {
			next = append(next, cache.LevelRoles{Level: level, RoleIDs: roleIDs})
		}
	}
	return next, changed
}

func levelRoleIDs(levels []cache.LevelRoles, level int) []snowflake.ID {
	for _, row := range levels {
		if row.Level == level {
			return row.RoleIDs.Values()
		}
	}
	return nil
}
