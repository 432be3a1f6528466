package db

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// MemberRecord is the durable portion of a member's state.
type MemberRecord struct {
	XP            int64
	LastMessageAt *time.Time
	RoleIDs       []snowflake.ID
}

// RankedMember is one row of a guild's XP standings.
type RankedMember struct {
	UserID snowflake.ID
	XP     int64
	Rank   int64
}

// GetMembers returns every stored member of the guild keyed by user ID.
func (c *Client) GetMembers(ctx context.Context, guildID snowflake.ID) (map[snowflake.ID]MemberRecord, error) {
	statement := `
		SELECT
			user_id,
			xp,
			last_message_timestamp,
			role_ids
		FROM
			public.member
		WHERE
			guild_id = $1;
	`
	rows, err := c.pool.Query(ctx, statement, int64(guildID))
	if err != nil {
		return nil, fmt.Errorf("db: get members for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	members := make(map[snowflake.ID]MemberRecord)
	for rows.Next() {
		var (
			userID        int64
			xp            int64
			lastMessageAt *time.Time
			roleIDs       []int64
		)
		if err := rows.Scan(&userID, &xp, &lastMessageAt, &roleIDs); err != nil {
			return nil, fmt.Errorf("db: scan member row: %w", err)
		}
		members[snowflake.ID(userID)] = MemberRecord{
			XP:            xp,
			LastMessageAt: lastMessageAt,
			RoleIDs:       toSnowflakes(roleIDs),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: read member rows: %w", err)
	}
	return members, nil
}

// InsertMember creates the member row if absent and returns the stored
// record either way.
func (c *Client) InsertMember(ctx context.Context, guildID, userID snowflake.ID, roleIDs []snowflake.ID) (MemberRecord, error) {
	statement := `
		INSERT INTO
			public.member (guild_id, user_id, role_ids)
		VALUES
			($1, $2, $3)
		ON CONFLICT (guild_id, user_id)
		DO UPDATE
		SET
			guild_id = EXCLUDED.guild_id
		RETURNING
			xp,
			last_message_timestamp,
			role_ids;
	`
	var (
		record MemberRecord
		stored []int64
	)
	err := c.pool.
		QueryRow(ctx, statement, int64(guildID), int64(userID), toInt64s(roleIDs)).
		Scan(&record.XP, &record.LastMessageAt, &stored)
	if err != nil {
		return MemberRecord{}, fmt.Errorf("db: insert member %d in guild %d: %w", userID, guildID, err)
	}
	record.RoleIDs = toSnowflakes(stored)
	return record, nil
}

// UpdateMemberXP adds delta to the member's stored XP additively, so
// concurrent awards never overwrite one another. A nil messageTime
// leaves the cooldown timestamp untouched.
func (c *Client) UpdateMemberXP(ctx context.Context, guildID, userID snowflake.ID, delta int64, messageTime *time.Time) error {
	statement := `
		INSERT INTO
			public.member (guild_id, user_id, xp, last_message_timestamp)
		VALUES
			($1, $2, $3, $4)
		ON CONFLICT (guild_id, user_id)
		DO UPDATE
		SET
			xp = public.member.xp + $3,
			last_message_timestamp = COALESCE($4, public.member.last_message_timestamp);
	`
	if _, err := c.pool.Exec(ctx, statement, int64(guildID), int64(userID), delta, messageTime); err != nil {
		return fmt.Errorf("db: update xp for member %d in guild %d: %w", userID, guildID, err)
	}
	return nil
}

func (c *Client) UpdateMemberRoles(ctx context.Context, guildID, userID snowflake.ID, roleIDs []snowflake.ID) error {
	statement := `
		UPDATE
			public.member
		SET
			role_ids = $3
		WHERE
			guild_id = $1
			AND user_id = $2;
	`
	if _, err := c.pool.Exec(ctx, statement, int64(guildID), int64(userID), toInt64s(roleIDs)); err != nil {
		return fmt.Errorf("db: update roles for member %d in guild %d: %w", userID, guildID, err)
	}
	return nil
}

// RemoveRole strips the role from every member that holds it and from
// the guild's level-role table, deleting levels left without a role.
// It returns the surviving role set of every affected member.
func (c *Client) RemoveRole(ctx context.Context, guildID, roleID snowflake.ID) (map[snowflake.ID][]snowflake.ID, error) {
	memberStatement := `
		UPDATE
			public.member
		SET
			role_ids = ARRAY_REMOVE(role_ids, $2)
		WHERE
			guild_id = $1
			AND $2 = ANY(role_ids)
		RETURNING
			user_id,
			role_ids;
	`
	rows, err := c.pool.Query(ctx, memberStatement, int64(guildID), int64(roleID))
	if err != nil {
		return nil, fmt.Errorf("db: remove role %d from members of guild %d: %w", roleID, guildID, err)
	}
	defer rows.Close()

	affected := make(map[snowflake.ID][]snowflake.ID)
	for rows.Next() {
		var (
			userID  int64
			roleIDs []int64
		)
		if err := rows.Scan(&userID, &roleIDs); err != nil {
			return nil, fmt.Errorf("db: scan affected member row: %w", err)
		}
		affected[snowflake.ID(userID)] = toSnowflakes(roleIDs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: read affected member rows: %w", err)
	}

	levelStatement := `
		UPDATE
			public.level
		SET
			role_ids = ARRAY_REMOVE(role_ids, $2)
		WHERE
			guild_id = $1
			AND $2 = ANY(role_ids);
	`
	if _, err := c.pool.Exec(ctx, levelStatement, int64(guildID), int64(roleID)); err != nil {
		return nil, fmt.Errorf("db: remove role %d from levels of guild %d: %w", roleID, guildID, err)
	}

	pruneStatement := `
		DELETE FROM
			public.level
		WHERE
			guild_id = $1
			AND role_ids = '{}';
	`
	if _, err := c.pool.Exec(ctx, pruneStatement, int64(guildID)); err != nil {
		return nil, fmt.Errorf("db: prune empty levels of guild %d: %w", guildID, err)
	}
	return affected, nil
}

// GetRank returns the member's standing within the guild, where the
// highest XP holds rank 1. Members without a row rank last.
func (c *Client) GetRank(ctx context.Context, guildID, userID snowflake.ID) (RankedMember, error) {
	statement := `
		SELECT
			user_id,
			xp,
			rank
		FROM (
			SELECT
				user_id,
				xp,
				RANK() OVER (ORDER BY xp DESC) AS rank
			FROM
				public.member
			WHERE
				guild_id = $1
		) standings
		WHERE
			user_id = $2;
	`
	var ranked RankedMember
	var userIDRaw int64
	err := c.pool.
		QueryRow(ctx, statement, int64(guildID), int64(userID)).
		Scan(&userIDRaw, &ranked.XP, &ranked.Rank)
	if err != nil {
		return RankedMember{}, fmt.Errorf("db: rank of member %d in guild %d: %w", userID, guildID, err)
	}
	ranked.UserID = snowflake.ID(userIDRaw)
	return ranked, nil
}

// TopMembers returns a page of the guild's standings in descending XP
// order.
func (c *Client) TopMembers(ctx context.Context, guildID snowflake.ID, offset, limit int) ([]RankedMember, error) {
	statement := `
		SELECT
			user_id,
			xp,
			RANK() OVER (ORDER BY xp DESC) AS rank
		FROM
			public.member
		WHERE
			guild_id = $1
		ORDER BY
			xp DESC,
			user_id ASC
		OFFSET $2
		LIMIT $3;
	`
	rows, err := c.pool.Query(ctx, statement, int64(guildID), offset, limit)
	if err != nil {
		return nil, fmt.Errorf("db: top members of guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var standings []RankedMember
	for rows.Next() {
		var (
			ranked RankedMember
			userID int64
		)
		if err := rows.Scan(&userID, &ranked.XP, &ranked.Rank); err != nil {
			return nil, fmt.Errorf("db: scan standings row: %w", err)
		}
		ranked.UserID = snowflake.ID(userID)
		standings = append(standings, ranked)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: read standings rows: %w", err)
	}
	return standings, nil
}

func (c *Client) RemoveGuildMembers(ctx context.Context, guildID snowflake.ID) error {
	statement := `
		DELETE FROM
			public.member
		WHERE
			guild_id = $1;
	`
	if _, err := c.pool.Exec(ctx, statement, int64(guildID)); err != nil {
		return fmt.Errorf("db: remove members for guild %d: %w", guildID, err)
	}
	return nil
}
