package db

import (
	"context"
	"fmt"

	"github.com/disgoorg/snowflake/v2"
)

// InsertGuild upserts the guild row and returns its XP multiplier, which
// survives re-insertion of a guild already known.
func (c *Client) InsertGuild(ctx context.Context, guildID snowflake.ID) (float64, error) {
	statement := `
		INSERT INTO
			public.guild (guild_id)
		VALUES
			($1)
		ON CONFLICT (guild_id)
		DO UPDATE
		SET
			guild_id = EXCLUDED.guild_id
		RETURNING
			xp_multiplier;
	`
	var multiplier float64
	if err := c.pool.QueryRow(ctx, statement, int64(guildID)).Scan(&multiplier); err != nil {
		return 0, fmt.Errorf("db: insert guild %d: %w", guildID, err)
	}
	return multiplier, nil
}

func (c *Client) RemoveGuild(ctx context.Context, guildID snowflake.ID) error {
	statement := `
		DELETE FROM
			public.guild
		WHERE
			guild_id = $1;
	`
	if _, err := c.pool.Exec(ctx, statement, int64(guildID)); err != nil {
		return fmt.Errorf("db: remove guild %d: %w", guildID, err)
	}
	return nil
}

func (c *Client) UpdateXPMultiplier(ctx context.Context, guildID snowflake.ID, multiplier float64) error {
	statement := `
		UPDATE
			public.guild
		SET
			xp_multiplier = $2
		WHERE
			guild_id = $1;
	`
	if _, err := c.pool.Exec(ctx, statement, int64(guildID), multiplier); err != nil {
		return fmt.Errorf("db: update multiplier for guild %d: %w", guildID, err)
	}
	return nil
}
