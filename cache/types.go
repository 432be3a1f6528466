// Package cache keeps an in-memory mirror of the guilds, channels and
// members the gateway has shown us. Every entity is stored as an immutable
// snapshot: readers keep whatever reference they obtained, writers compute a
// full replacement and swap it in. Two concurrent writers to the same entity
// race and the last insert wins; the durable store stays correct because its
// XP writes are additive.
package cache

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// MemberKey identifies a member snapshot by (guild, user).
type MemberKey struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// Guild is a guild snapshot. The Levels table is ordered by ascending level
// and each level appears at most once; a level whose role set empties is
// removed from the table rather than stored empty.
type Guild struct {
	ID           snowflake.ID
	Name         string
	ChannelIDs   Set[snowflake.ID]
	MemberIDs    Set[snowflake.ID]
	Levels       []LevelRoles
	XPMultiplier float64
}

// LevelRoles is one row of a guild's level-role configuration.
type LevelRoles struct {
	Level   int
	RoleIDs Set[snowflake.ID]
}

// Channel is a voice-channel snapshot. Only voice-capable channels are
// tracked; UserIDs holds the members currently connected.
type Channel struct {
	ID      snowflake.ID
	GuildID snowflake.ID
	UserIDs Set[snowflake.ID]
}

// Member is a member snapshot. JoinedVoiceAt is set iff the member is in
// voice and accruing XP; VoiceChannelID tracks where.
type Member struct {
	GuildID        snowflake.ID
	UserID         snowflake.ID
	Username       string
	Discriminator  string
	AvatarURL      string
	Bot            bool
	XP             int64
	LastMessageAt  *time.Time
	JoinedVoiceAt  *time.Time
	VoiceChannelID *snowflake.ID
	RoleIDs        Set[snowflake.ID]
}

// GuildUpdate is a sparse override set for UpdateGuild. Nil fields keep the
// current snapshot's value; a non-nil empty set or slice clears the field.
type GuildUpdate struct {
	Name         *string
	ChannelIDs   Set[snowflake.ID]
	MemberIDs    Set[snowflake.ID]
	Levels       *[]LevelRoles
	XPMultiplier *float64
}

// ChannelUpdate is a sparse override set for UpdateChannel.
type ChannelUpdate struct {
	UserIDs Set[snowflake.ID]
}

// MemberUpdate is a sparse override set for UpdateMember. The nullable
// timestamp and channel fields carry an explicit Set flag so an update can
// distinguish "leave alone" from "clear".
type MemberUpdate struct {
	Username      *string
	Discriminator *string
	AvatarURL     *string
	XP            *int64
	RoleIDs       Set[snowflake.ID]

	LastMessageAt    *time.Time
	SetLastMessageAt bool

	JoinedVoiceAt    *time.Time
	SetJoinedVoiceAt bool

	VoiceChannelID    *snowflake.ID
	SetVoiceChannelID bool
}
