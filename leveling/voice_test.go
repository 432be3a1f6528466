package leveling

import (
	"context"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joinVoice(t *testing.T, h *engineHarness, userID snowflake.ID, at time.Time, silenced bool) {
	t.Helper()
	h.engine.now = func() time.Time { return at }
	channelID := engChannelID
	require.NoError(t, h.engine.HandleVoiceState(context.Background(), VoiceState{
		GuildID:   engGuildID,
		UserID:    userID,
		ChannelID: &channelID,
		SelfMute:  silenced,
	}))
}

func leaveVoice(t *testing.T, h *engineHarness, userID snowflake.ID, at time.Time) {
	t.Helper()
	h.engine.now = func() time.Time { return at }
	require.NoError(t, h.engine.HandleVoiceState(context.Background(), VoiceState{
		GuildID: engGuildID,
		UserID:  userID,
	}))
}

func TestVoiceAccrual(t *testing.T) {
	h := newEngineHarness(2.0, nil)
	h.addMember(engUserID, 0)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	joinVoice(t, h, engUserID, start, false)

	member, _ := h.cache.GetMember(engGuildID, engUserID)
	require.NotNil(t, member.JoinedVoiceAt)
	assert.True(t, member.JoinedVoiceAt.Equal(start))
	channel, _ := h.cache.GetChannel(engChannelID)
	assert.True(t, channel.UserIDs.Contains(engUserID))

	leaveVoice(t, h, engUserID, start.Add(40*time.Second))

	// floor(40s * 2.0 / 4) == 20.
	require.Len(t, h.storage.writes, 1)
	assert.Equal(t, int64(20), h.storage.writes[0].Delta)
	assert.Nil(t, h.storage.writes[0].MessageTime, "voice settles must not touch the message timestamp")

	member, _ = h.cache.GetMember(engGuildID, engUserID)
	assert.Nil(t, member.JoinedVoiceAt)
	assert.Nil(t, member.VoiceChannelID)
	channel, _ = h.cache.GetChannel(engChannelID)
	assert.False(t, channel.UserIDs.Contains(engUserID))
}

func TestVoiceJoinSilencedRestartsSession(t *testing.T) {
	h := newEngineHarness(1.0, nil)
	h.addMember(engUserID, 0)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	joinVoice(t, h, engUserID, start, false)
	// A mute partway through restarts the clock; the muted span is gone
	// even though the member never left.
	joinVoice(t, h, engUserID, start.Add(30*time.Second), true)

	member, _ := h.cache.GetMember(engGuildID, engUserID)
	require.NotNil(t, member.JoinedVoiceAt)
	assert.True(t, member.JoinedVoiceAt.Equal(start.Add(30*time.Second)))
}

func TestVoiceJoinUnflaggedPreservesSession(t *testing.T) {
	h := newEngineHarness(1.0, nil)
	h.addMember(engUserID, 0)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	joinVoice(t, h, engUserID, start, false)
	joinVoice(t, h, engUserID, start.Add(30*time.Second), false)

	member, _ := h.cache.GetMember(engGuildID, engUserID)
	require.NotNil(t, member.JoinedVoiceAt)
	assert.True(t, member.JoinedVoiceAt.Equal(start), "an unflagged update keeps the running session")
}

func TestVoiceLeaveWithoutSessionIsNoop(t *testing.T) {
	h := newEngineHarness(1.0, nil)
	h.addMember(engUserID, 0)

	leaveVoice(t, h, engUserID, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	assert.Empty(t, h.storage.writes)
}

func TestVoiceSoloChannelFlush(t *testing.T) {
	h := newEngineHarness(1.0, nil)
	h.addMember(engUserID, 0)
	h.addMember(engOtherID, 0)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	joinVoice(t, h, engUserID, start, false)
	joinVoice(t, h, engOtherID, start, false)
	leaveVoice(t, h, engOtherID, start.Add(80*time.Second))

	// Both sessions settled: the leaver and the member left alone.
	require.Len(t, h.storage.writes, 2)
	assert.Equal(t, int64(20), h.storage.writes[0].Delta)
	assert.Equal(t, int64(20), h.storage.writes[1].Delta)

	remaining, _ := h.cache.GetMember(engGuildID, engUserID)
	assert.Nil(t, remaining.JoinedVoiceAt, "the remaining member's session is force-ended")
	assert.Nil(t, remaining.VoiceChannelID)

	channel, _ := h.cache.GetChannel(engChannelID)
	assert.Empty(t, channel.UserIDs)
}

func TestVoiceLeavePersistFailureKeepsSession(t *testing.T) {
	h := newEngineHarness(1.0, nil)
	h.addMember(engUserID, 0)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	joinVoice(t, h, engUserID, start, false)
	h.storage.err = errCollaborator
	h.engine.now = func() time.Time { return start.Add(40 * time.Second) }

	err := h.engine.HandleVoiceState(context.Background(), VoiceState{
		GuildID: engGuildID,
		UserID:  engUserID,
	})
	require.ErrorIs(t, err, errCollaborator)

	member, _ := h.cache.GetMember(engGuildID, engUserID)
	assert.NotNil(t, member.JoinedVoiceAt, "cache mutation is the last step")
}
