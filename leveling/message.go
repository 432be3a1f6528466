package leveling

import (
	"context"
	"math"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/varmanaa/seed/cache"
)

const (
	// discordEpoch is the millisecond offset of Discord snowflake time.
	discordEpoch = 1_420_070_400_000

	messageCooldown = time.Minute
	messageXPMin    = 35
	messageXPMax    = 45
)

// Message is the slice of a message-create payload the engine needs.
type Message struct {
	GuildID   snowflake.ID
	MessageID snowflake.ID
	AuthorID  snowflake.ID
	AuthorBot bool
}

// snowflakeTime extracts the creation time embedded in a snowflake id.
func snowflakeTime(id snowflake.ID) time.Time {
	return time.UnixMilli(int64(uint64(id)>>22) + discordEpoch)
}

// HandleMessage awards message XP. The award is gated by a rolling
// 60-second cooldown keyed off the message's snowflake time, not arrival
// time. Members not yet synchronized are dropped; the next roster sync
// corrects the loss.
func (e *Engine) HandleMessage(ctx context.Context, msg Message) error {
	if msg.AuthorBot {
		return nil
	}
	guild, ok := e.cache.GetGuild(msg.GuildID)
	if !ok {
		return nil
	}
	member, ok := e.cache.GetMember(msg.GuildID, msg.AuthorID)
	if !ok {
		return nil
	}

	messageTime := snowflakeTime(msg.MessageID)
	if member.LastMessageAt != nil && member.LastMessageAt.Add(messageCooldown).After(messageTime) {
		return nil
	}

	base := messageXPMin + e.intn(messageXPMax-messageXPMin+1)
	awarded := int64(math.Floor(float64(base) * guild.XPMultiplier))
	newXP := member.XP + awarded

	if err := e.applyLevelChange(ctx, guild, member, newXP); err != nil {
		return err
	}
	if err := e.store.UpdateMemberXP(ctx, msg.GuildID, msg.AuthorID, awarded, &messageTime); err != nil {
		return err
	}
	e.mirrorXP(ctx, msg.GuildID, msg.AuthorID, awarded)

	e.cache.UpdateMember(msg.GuildID, msg.AuthorID, cache.MemberUpdate{
		XP:               &newXP,
		LastMessageAt:    &messageTime,
		SetLastMessageAt: true,
	})
	return nil
}
