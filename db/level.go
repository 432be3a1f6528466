package db

import (
	"context"
	"fmt"
	"slices"

	"github.com/disgoorg/snowflake/v2"

	"github.com/varmanaa/seed/cache"
)

// GetLevels returns the guild's level-role configuration ordered by
// ascending level.
func (c *Client) GetLevels(ctx context.Context, guildID snowflake.ID) ([]cache.LevelRoles, error) {
	statement := `
		SELECT
			level,
			role_ids
		FROM
			public.level
		WHERE
			guild_id = $1;
	`
	rows, err := c.pool.Query(ctx, statement, int64(guildID))
	if err != nil {
		return nil, fmt.Errorf("db: get levels for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var levels []cache.LevelRoles
	for rows.Next() {
		var (
			level   int64
			roleIDs []int64
		)
		if err := rows.Scan(&level, &roleIDs); err != nil {
			return nil, fmt.Errorf("db: scan level row: %w", err)
		}
		levels = append(levels, cache.LevelRoles{
			Level:   int(level),
			RoleIDs: cache.NewSet(toSnowflakes(roleIDs)...),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: read level rows: %w", err)
	}

	slices.SortFunc(levels, func(a, b cache.LevelRoles) int {
		return a.Level - b.Level
	})
	return levels, nil
}

func (c *Client) InsertLevel(ctx context.Context, guildID snowflake.ID, level int, roleIDs []snowflake.ID) error {
	statement := `
		INSERT INTO
			public.level
		VALUES
			($1, $2, $3)
		ON CONFLICT (guild_id, level)
		DO UPDATE
		SET
			role_ids = $3;
	`
	if _, err := c.pool.Exec(ctx, statement, int64(guildID), int64(level), toInt64s(roleIDs)); err != nil {
		return fmt.Errorf("db: insert level %d for guild %d: %w", level, guildID, err)
	}
	return nil
}

func (c *Client) RemoveLevel(ctx context.Context, guildID snowflake.ID, level int) error {
	statement := `
		DELETE FROM
			public.level
		WHERE
			guild_id = $1
			AND level = $2;
	`
	if _, err := c.pool.Exec(ctx, statement, int64(guildID), int64(level)); err != nil {
		return fmt.Errorf("db: remove level %d for guild %d: %w", level, guildID, err)
	}
	return nil
}

func (c *Client) RemoveGuildLevels(ctx context.Context, guildID snowflake.ID) error {
	statement := `
		DELETE FROM
			public.level
		WHERE
			guild_id = $1;
	`
	if _, err := c.pool.Exec(ctx, statement, int64(guildID)); err != nil {
		return fmt.Errorf("db: remove levels for guild %d: %w", guildID, err)
	}
	return nil
}
