package cache

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

func TestInsertMemberRegistersInGuild(t *testing.T) {
	c := New()
	materializeTestGuild(c)

	other := snowflake.ID(80351110224678912)
	c.InsertMember(&Member{GuildID: testGuildID, UserID: other, Username: "sprout"})

	guild, _ := c.GetGuild(testGuildID)
	if !guild.MemberIDs.Contains(other) {
		t.Fatal("member id not registered in guild")
	}

	member, ok := c.GetMember(testGuildID, other)
	if !ok {
		t.Fatal("member not cached")
	}
	if member.RoleIDs == nil {
		t.Fatal("role set must be initialized")
	}
}

func TestRemoveMemberDeregisters(t *testing.T) {
	c := New()
	materializeTestGuild(c)

	c.RemoveMember(testGuildID, testUserID)

	if _, ok := c.GetMember(testGuildID, testUserID); ok {
		t.Fatal("member still cached")
	}
	guild, _ := c.GetGuild(testGuildID)
	if guild.MemberIDs.Contains(testUserID) {
		t.Fatal("member id still registered in guild")
	}
}

func TestUpdateMemberPartialAndClear(t *testing.T) {
	c := New()
	materializeTestGuild(c)

	now := time.Now()
	channelID := testChannelID
	c.UpdateMember(testGuildID, testUserID, MemberUpdate{
		JoinedVoiceAt:     &now,
		SetJoinedVoiceAt:  true,
		VoiceChannelID:    &channelID,
		SetVoiceChannelID: true,
	})

	member, _ := c.GetMember(testGuildID, testUserID)
	if member.JoinedVoiceAt == nil || member.VoiceChannelID == nil {
		t.Fatal("voice fields not set")
	}
	if member.Username != "seedling" {
		t.Fatal("unset fields must resolve from the current snapshot")
	}

	// Clearing needs the explicit flag; an absent field leaves state alone.
	c.UpdateMember(testGuildID, testUserID, MemberUpdate{SetJoinedVoiceAt: true, SetVoiceChannelID: true})

	member, _ = c.GetMember(testGuildID, testUserID)
	if member.JoinedVoiceAt != nil || member.VoiceChannelID != nil {
		t.Fatal("voice fields not cleared")
	}
}

func TestUpdateMemberMissingIsNoop(t *testing.T) {
	c := New()
	xp := int64(10)
	c.UpdateMember(testGuildID, testUserID, MemberUpdate{XP: &xp})
	if _, ok := c.GetMember(testGuildID, testUserID); ok {
		t.Fatal("update must not create a member")
	}
}

func TestMemberSnapshotIsolation(t *testing.T) {
	c := New()
	materializeTestGuild(c)

	before, _ := c.GetMember(testGuildID, testUserID)

	xp := int64(500)
	now := time.Now()
	c.UpdateMember(testGuildID, testUserID, MemberUpdate{XP: &xp, LastMessageAt: &now, SetLastMessageAt: true})

	if before.XP != 0 || before.LastMessageAt != nil {
		t.Fatal("previously obtained snapshot must keep reporting pre-update values")
	}
	after, _ := c.GetMember(testGuildID, testUserID)
	if after.XP != 500 {
		t.Fatalf("got xp %d, want 500", after.XP)
	}
}
