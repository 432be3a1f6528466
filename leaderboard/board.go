// Package leaderboard mirrors per-guild XP standings into Redis sorted
// sets so rank lookups never hit the relational store. The mirror is
// advisory: it can be rebuilt from the member table at any time, so
// callers treat write failures as recoverable.
package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/snowflake/v2"
	"github.com/redis/go-redis/v9"
)

// ErrNotRanked is returned by Rank when the member holds no score.
var ErrNotRanked = errors.New("leaderboard: member not ranked")

// Entry is one row of a guild's standings, highest XP first.
type Entry struct {
	UserID snowflake.ID
	XP     int64
}

type Board struct {
	client *redis.Client
}

// Connect opens a Redis connection from a redis:// URL and verifies it
// with a ping.
func Connect(ctx context.Context, url string) (*Board, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: ping redis: %w", err)
	}
	return &Board{client: client}, nil
}

// New wraps an existing client, mainly for tests.
func New(client *redis.Client) *Board {
	return &Board{client: client}
}

func (b *Board) Close() error {
	return b.client.Close()
}

func key(guildID snowflake.ID) string {
	return "leaderboard:" + guildID.String()
}

// AddXP bumps the member's mirrored score by delta.
func (b *Board) AddXP(ctx context.Context, guildID, userID snowflake.ID, delta int64) error {
	if err := b.client.ZIncrBy(ctx, key(guildID), float64(delta), userID.String()).Err(); err != nil {
		return fmt.Errorf("leaderboard: add xp for member %d in guild %d: %w", userID, guildID, err)
	}
	return nil
}

// Populate replaces the guild's standings with the given scores.
func (b *Board) Populate(ctx context.Context, guildID snowflake.ID, scores map[snowflake.ID]int64) error {
	k := key(guildID)
	if err := b.client.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("leaderboard: reset guild %d: %w", guildID, err)
	}
	if len(scores) == 0 {
		return nil
	}
	members := make([]redis.Z, 0, len(scores))
	for userID, xp := range scores {
		members = append(members, redis.Z{Score: float64(xp), Member: userID.String()})
	}
	if err := b.client.ZAdd(ctx, k, members...).Err(); err != nil {
		return fmt.Errorf("leaderboard: populate guild %d: %w", guildID, err)
	}
	return nil
}

// Top returns a page of the guild's standings in descending XP order.
func (b *Board) Top(ctx context.Context, guildID snowflake.ID, offset, limit int) ([]Entry, error) {
	start := int64(offset)
	stop := start + int64(limit) - 1
	rows, err := b.client.ZRevRangeWithScores(ctx, key(guildID), start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard: top of guild %d: %w", guildID, err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		member, ok := row.Member.(string)
		if !ok {
			continue
		}
		userID, err := snowflake.Parse(member)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{UserID: userID, XP: int64(row.Score)})
	}
	return entries, nil
}

// Rank returns the member's 1-based standing within the guild.
func (b *Board) Rank(ctx context.Context, guildID, userID snowflake.ID) (int64, error) {
	rank, err := b.client.ZRevRank(ctx, key(guildID), userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotRanked
	}
	if err != nil {
		return 0, fmt.Errorf("leaderboard: rank of member %d in guild %d: %w", userID, guildID, err)
	}
	return rank + 1, nil
}

// Remove drops the guild's standings entirely.
func (b *Board) Remove(ctx context.Context, guildID snowflake.ID) error {
	if err := b.client.Del(ctx, key(guildID)).Err(); err != nil {
		return fmt.Errorf("leaderboard: remove guild %d: %w", guildID, err)
	}
	return nil
}
