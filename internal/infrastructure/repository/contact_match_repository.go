package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ContactMatchRepository serves the Matcher's batched dedup lookups over a
// pgx pool: one ANY($1) round trip per key set instead of a query per row.
type ContactMatchRepository struct {
	pool *pgxpool.Pool
}

func NewContactMatchRepository(pool *pgxpool.Pool) *ContactMatchRepository {
	return &ContactMatchRepository{pool: pool}
}

func (r *ContactMatchRepository) FindIDsByNormalizedEmails(ctx context.Context, emails []string) (map[string]string, error) {
	return r.findIDs(ctx, `
SELECT DISTINCT ON (normalized_email) normalized_email, id
FROM contacts
WHERE normalized_email = ANY($1)
ORDER BY normalized_email, created_at`, emails)
}

func (r *ContactMatchRepository) FindIDsByNormalizedPhones(ctx context.Context, phones []string) (map[string]string, error) {
	return r.findIDs(ctx, `
SELECT DISTINCT ON (normalized_phone) normalized_phone, id
FROM contacts
WHERE normalized_phone = ANY($1)
ORDER BY normalized_phone, created_at`, phones)
}

func (r *ContactMatchRepository) findIDs(ctx context.Context, query string, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, query, keys)
	if err != nil {
		return nil, fmt.Errorf("batched contact lookup: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, id string
		if err := rows.Scan(&key, &id); err != nil {
			return nil, fmt.Errorf("scan contact lookup row: %w", err)
		}
		out[key] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact lookup rows: %w", err)
	}

	return out, nil
}
