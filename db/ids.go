package db

import "github.com/disgoorg/snowflake/v2"

// Snowflakes are stored as signed 8-byte integers; Discord ids fit.

func toInt64s(ids []snowflake.ID) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		out = append(out, int64(id))
	}
	return out
}

func toSnowflakes(raw []int64) []snowflake.ID {
	out := make([]snowflake.ID, 0, len(raw))
	for _, value := range raw {
		out = append(out, snowflake.ID(value))
	}
	return out
}
