// Package db is the durable-storage side of the leveling system: a
// PostgreSQL schema of guilds, level-role configuration and member XP.
// The cache may lose racing updates; rows here never do, because XP writes
// are additive and everything else is an idempotent upsert.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Client struct {
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, databaseURL string) (*Client, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: parse database url: %w", err)
	}
	config.MaxConns = 16

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("db: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}

	return &Client{pool: pool}, nil
}

func (c *Client) Close() {
	c.pool.Close()
}

func (c *Client) CreateTables(ctx context.Context) error {
	statement := `
		CREATE TABLE IF NOT EXISTS public.guild (
			guild_id INT8 NOT NULL PRIMARY KEY,
			xp_multiplier FLOAT8 NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS public.level (
			guild_id INT8 NOT NULL,
			level INT8 NOT NULL,
			role_ids INT8[] NOT NULL DEFAULT '{}'::INT8[],
			PRIMARY KEY (guild_id, level)
		);

		CREATE TABLE IF NOT EXISTS public.member (
			guild_id INT8 NOT NULL,
			user_id INT8 NOT NULL,
			xp INT8 NOT NULL DEFAULT 0,
			last_message_timestamp TIMESTAMP WITH TIME ZONE,
			role_ids INT8[] NOT NULL DEFAULT '{}'::INT8[],
			PRIMARY KEY (guild_id, user_id)
		);
	`
	if _, err := c.pool.Exec(ctx, statement); err != nil {
		return fmt.Errorf("db: create tables: %w", err)
	}
	return nil
}
