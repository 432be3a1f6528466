package cache

import (
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

const (
	testGuildID   = snowflake.ID(847908927554322432)
	testChannelID = snowflake.ID(847908927554322436)
	testUserID    = snowflake.ID(105141071924143696)
)

func materializeTestGuild(c *Cache) {
	c.InsertGuild(
		&Guild{
			ID:           testGuildID,
			Name:         "seedbed",
			XPMultiplier: 1.0,
			Levels: []LevelRoles{
				{Level: 1, RoleIDs: NewSet[snowflake.ID](1)},
				{Level: 3, RoleIDs: NewSet[snowflake.ID](2)},
			},
		},
		[]*Channel{{ID: testChannelID, GuildID: testGuildID, UserIDs: NewSet[snowflake.ID]()}},
		[]*Member{{GuildID: testGuildID, UserID: testUserID, Username: "seedling"}},
	)
}

func TestInsertGuildMaterializesOwnedEntities(t *testing.T) {
	c := New()
	c.InsertUnavailableGuild(testGuildID)
	materializeTestGuild(c)

	guild, ok := c.GetGuild(testGuildID)
	if !ok {
		t.Fatal("guild not cached")
	}
	if !guild.ChannelIDs.Contains(testChannelID) {
		t.Fatal("channel id not registered")
	}
	if !guild.MemberIDs.Contains(testUserID) {
		t.Fatal("member id not registered")
	}
	if _, ok := c.GetChannel(testChannelID); !ok {
		t.Fatal("channel not cached")
	}
	if _, ok := c.GetMember(testGuildID, testUserID); !ok {
		t.Fatal("member not cached")
	}
	if c.GuildUnavailable(testGuildID) {
		t.Fatal("insert should clear the unavailable set")
	}
}

func TestInsertGuildKeepsConfiguredState(t *testing.T) {
	c := New()
	materializeTestGuild(c)

	// A second full materialization carries the config in its payload, so
	// nothing cached beforehand may leak through or vanish silently.
	multiplier := 2.5
	c.UpdateGuild(testGuildID, GuildUpdate{XPMultiplier: &multiplier})
	materializeTestGuild(c)

	guild, _ := c.GetGuild(testGuildID)
	if guild.XPMultiplier != 1.0 {
		t.Fatalf("got multiplier %v, want the payload's 1.0", guild.XPMultiplier)
	}
	if len(guild.Levels) != 2 {
		t.Fatalf("got %d levels, want 2", len(guild.Levels))
	}
}

func TestUpdateGuildPartial(t *testing.T) {
	c := New()
	materializeTestGuild(c)

	name := "renamed"
	c.UpdateGuild(testGuildID, GuildUpdate{Name: &name})

	guild, _ := c.GetGuild(testGuildID)
	if guild.Name != "renamed" {
		t.Fatalf("got name %q", guild.Name)
	}
	if guild.XPMultiplier != 1.0 {
		t.Fatal("unset fields must resolve from the current snapshot")
	}
	if !guild.MemberIDs.Contains(testUserID) {
		t.Fatal("member ids lost on partial update")
	}
}

func TestUpdateGuildMissingIsNoop(t *testing.T) {
	c := New()
	name := "ghost"
	c.UpdateGuild(testGuildID, GuildUpdate{Name: &name})
	if _, ok := c.GetGuild(testGuildID); ok {
		t.Fatal("update must not create a guild")
	}
}

func TestRemoveGuildCascades(t *testing.T) {
	c := New()
	materializeTestGuild(c)

	c.RemoveGuild(testGuildID, false)

	if _, ok := c.GetGuild(testGuildID); ok {
		t.Fatal("guild still cached")
	}
	if _, ok := c.GetChannel(testChannelID); ok {
		t.Fatal("channel survived guild removal")
	}
	if _, ok := c.GetMember(testGuildID, testUserID); ok {
		t.Fatal("member survived guild removal")
	}
	if c.GuildUnavailable(testGuildID) {
		t.Fatal("kick must not mark the guild unavailable")
	}
}

func TestRemoveGuildUnavailable(t *testing.T) {
	c := New()
	materializeTestGuild(c)

	c.RemoveGuild(testGuildID, true)

	if !c.GuildUnavailable(testGuildID) {
		t.Fatal("outage must mark the guild unavailable")
	}
}
