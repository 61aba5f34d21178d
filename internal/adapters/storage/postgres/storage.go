package postgres

import (
	"context"
	"fmt"

	"soundboard-bot/internal/core/domain"
	"soundboard-bot/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS sound_plays (
    id           BIGSERIAL PRIMARY KEY,
    guild_id     TEXT NOT NULL,
    channel_id   TEXT NOT NULL,
    requester_id TEXT NOT NULL,
    sound_name   TEXT NOT NULL,
    trigger      TEXT NOT NULL,
    played_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_sound_plays_guild ON sound_plays(guild_id, sound_name);
`

const recordPlay = `
INSERT INTO sound_plays (guild_id, channel_id, requester_id, sound_name, trigger, played_at)
VALUES ($1, $2, $3, $4, $5, $6)`

const topSounds = `
SELECT sound_name, COUNT(*) AS plays
FROM sound_plays
WHERE guild_id = $1
GROUP BY sound_name
ORDER BY plays DESC, sound_name ASC
LIMIT $2`

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PlayStore struct {
	pool *pgxpool.Pool
	db   DBTX
}

var _ ports.PlayHistory = (*PlayStore)(nil)

func NewPlayStore(ctx context.Context, connString string) (*PlayStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PlayStore{pool: pool, db: pool}, nil
}

func (s *PlayStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the play history table if it does not exist.
func (s *PlayStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate play history: %w", err)
	}
	return nil
}

func (s *PlayStore) RecordPlay(ctx context.Context, e domain.PlayEvent) error {
	_, err := s.db.Exec(ctx, recordPlay,
		e.GuildID, e.ChannelID, e.RequesterID, e.SoundName, string(e.Trigger), e.PlayedAt)
	if err != nil {
		return fmt.Errorf("record play: %w", err)
	}
	return nil
}

func (s *PlayStore) TopSounds(ctx context.Context, guildID string, limit int) ([]domain.SoundCount, error) {
	rows, err := s.db.Query(ctx, topSounds, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("query top sounds: %w", err)
	}
	defer rows.Close()

	var result []domain.SoundCount
	for rows.Next() {
		var c domain.SoundCount
		if err := rows.Scan(&c.SoundName, &c.Plays); err != nil {
			return nil, fmt.Errorf("scan top sounds: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top sounds: %w", err)
	}
	return result, nil
}
