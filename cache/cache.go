package cache

import "github.com/disgoorg/snowflake/v2"

// Cache owns every snapshot store. One instance is created at bootstrap and
// injected into whatever needs it; its lifetime is the process lifetime. It
// is rebuilt from the durable store plus a full roster resync on reconnect.
type Cache struct {
	guilds      *Store[snowflake.ID, *Guild]
	channels    *Store[snowflake.ID, *Channel]
	members     *Store[MemberKey, *Member]
	unavailable *Store[snowflake.ID, struct{}]
}

func New() *Cache {
	return &Cache{
		guilds:      NewStore[snowflake.ID, *Guild](),
		channels:    NewStore[snowflake.ID, *Channel](),
		members:     NewStore[MemberKey, *Member](),
		unavailable: NewStore[snowflake.ID, struct{}](),
	}
}

func (c *Cache) InsertUnavailableGuild(guildID snowflake.ID) {
	c.unavailable.Insert(guildID, struct{}{})
}

func (c *Cache) RemoveUnavailableGuild(guildID snowflake.ID) {
	c.unavailable.Remove(guildID)
}

func (c *Cache) GuildUnavailable(guildID snowflake.ID) bool {
	_, ok := c.unavailable.Get(guildID)
	return ok
}
