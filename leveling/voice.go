package leveling

import (
	"context"
	"math"

	"github.com/disgoorg/snowflake/v2"

	"github.com/varmanaa/seed/cache"
)

// voiceXPDivisor scales voice accrual to a quarter of the nominal
// per-message rate per second.
const voiceXPDivisor = 4

// VoiceState is the slice of a voice-state-update payload the engine needs.
// A nil ChannelID means the member left voice (or the guild).
type VoiceState struct {
	GuildID   snowflake.ID
	UserID    snowflake.ID
	ChannelID *snowflake.ID
	Deaf      bool
	Mute      bool
	SelfDeaf  bool
	SelfMute  bool
	Suppress  bool
}

func (s VoiceState) silenced() bool {
	return s.Deaf || s.Mute || s.SelfDeaf || s.SelfMute || s.Suppress
}

// HandleVoiceState tracks voice sessions. Joining starts or restarts the
// accrual clock; leaving settles the session into XP.
func (e *Engine) HandleVoiceState(ctx context.Context, state VoiceState) error {
	guild, ok := e.cache.GetGuild(state.GuildID)
	if !ok {
		return nil
	}
	member, ok := e.cache.GetMember(state.GuildID, state.UserID)
	if !ok {
		return nil
	}

	if state.ChannelID != nil {
		e.trackVoiceJoin(state, member)
		return nil
	}
	return e.settleVoiceLeave(ctx, guild, member)
}

// trackVoiceJoin records the member's new channel and accrual start. A
// session under any deaf/mute/suppress flag restarts at now: silenced time
// never counts, not even retroactively. An unflagged join keeps a session
// already in progress.
func (e *Engine) trackVoiceJoin(state VoiceState, member *cache.Member) {
	joinedAt := member.JoinedVoiceAt
	if state.silenced() || joinedAt == nil {
		now := e.now()
		joinedAt = &now
	}

	e.cache.UpdateMember(state.GuildID, state.UserID, cache.MemberUpdate{
		JoinedVoiceAt:     joinedAt,
		SetJoinedVoiceAt:  true,
		VoiceChannelID:    state.ChannelID,
		SetVoiceChannelID: true,
	})

	channel, ok := e.cache.GetChannel(*state.ChannelID)
	if !ok {
		return
	}
	occupants := channel.UserIDs.Clone()
	occupants.Add(state.UserID)
	e.cache.UpdateChannel(channel.ID, cache.ChannelUpdate{UserIDs: occupants})
}

// settleVoiceLeave converts the member's session into XP and stops
// tracking them. When the departure leaves exactly one occupant behind,
// that occupant's session is settled the same way.
func (e *Engine) settleVoiceLeave(ctx context.Context, guild *cache.Guild, member *cache.Member) error {
	if member.JoinedVoiceAt == nil {
		return nil
	}
	sourceChannelID := member.VoiceChannelID

	if err := e.settleSession(ctx, guild, member); err != nil {
		return err
	}
	if sourceChannelID == nil {
		return nil
	}
	channel, ok := e.cache.GetChannel(*sourceChannelID)
	if !ok {
		return nil
	}
	occupants := channel.UserIDs.Clone()
	occupants.Remove(member.UserID)
	e.cache.UpdateChannel(channel.ID, cache.ChannelUpdate{UserIDs: occupants})

	if len(occupants) != 1 {
		return nil
	}
	return e.flushSoloOccupant(ctx, guild, channel.ID, occupants.Values()[0])
}

// flushSoloOccupant force-ends the session of the last member left in a
// channel, exactly as if they had disconnected themselves. Their
// VoiceChannelID is cleared rather than re-armed, so accrual stays off
// until their next voice-state event.
func (e *Engine) flushSoloOccupant(ctx context.Context, guild *cache.Guild, channelID, userID snowflake.ID) error {
	remaining, ok := e.cache.GetMember(guild.ID, userID)
	if !ok || remaining.JoinedVoiceAt == nil {
		return nil
	}
	if err := e.settleSession(ctx, guild, remaining); err != nil {
		return err
	}

	channel, ok := e.cache.GetChannel(channelID)
	if !ok {
		return nil
	}
	occupants := channel.UserIDs.Clone()
	occupants.Remove(userID)
	e.cache.UpdateChannel(channelID, cache.ChannelUpdate{UserIDs: occupants})
	return nil
}

// settleSession awards the member's elapsed voice time as XP, persists the
// delta and installs a snapshot with voice tracking cleared.
func (e *Engine) settleSession(ctx context.Context, guild *cache.Guild, member *cache.Member) error {
	elapsed := int64(e.now().Sub(*member.JoinedVoiceAt).Seconds())
	awarded := int64(math.Floor(float64(elapsed) * guild.XPMultiplier / voiceXPDivisor))
	newXP := member.XP + awarded

	if err := e.applyLevelChange(ctx, guild, member, newXP); err != nil {
		return err
	}
	if err := e.store.UpdateMemberXP(ctx, guild.ID, member.UserID, awarded, nil); err != nil {
		return err
	}
	e.mirrorXP(ctx, guild.ID, member.UserID, awarded)

	e.cache.UpdateMember(guild.ID, member.UserID, cache.MemberUpdate{
		XP:                &newXP,
		SetJoinedVoiceAt:  true,
		SetVoiceChannelID: true,
	})
	return nil
}
