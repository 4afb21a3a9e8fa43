package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/certtrack-service/internal/domain"
)

// PostgresStore keeps the profile collection in a single table. A position
// column preserves cache order; Save runs in one transaction so readers see
// either the old or the new collection.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Postgres-backed implementation.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Load(ctx context.Context) ([]domain.UserProfile, error) {
	const query = `
        SELECT email, name, role, search_string, certifications, last_updated
        FROM profiles ORDER BY position`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	defer rows.Close()

	profiles := []domain.UserProfile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

func (s *PostgresStore) Save(ctx context.Context, profiles []domain.UserProfile) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM profiles`); err != nil {
		return fmt.Errorf("clear profiles: %w", err)
	}

	const insert = `
        INSERT INTO profiles (email, name, role, search_string, certifications, last_updated, position)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	for i, profile := range profiles {
		certs, err := marshalCerts(profile.Certifications)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, insert,
			profile.Email,
			profile.Name,
			profile.Role,
			profile.SearchString,
			certs,
			profile.LastUpdated,
			i,
		); err != nil {
			return fmt.Errorf("insert profile %s: %w", profile.Email, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) Upsert(ctx context.Context, profile domain.UserProfile) error {
	certs, err := marshalCerts(profile.Certifications)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO profiles (email, name, role, search_string, certifications, last_updated, position)
        VALUES ($1,$2,$3,$4,$5,$6, COALESCE((SELECT MAX(position)+1 FROM profiles), 0))
        ON CONFLICT (email) DO UPDATE SET
            name=EXCLUDED.name,
            role=EXCLUDED.role,
            search_string=EXCLUDED.search_string,
            certifications=EXCLUDED.certifications,
            last_updated=EXCLUDED.last_updated`

	_, err = s.pool.Exec(ctx, query,
		profile.Email,
		profile.Name,
		profile.Role,
		profile.SearchString,
		certs,
		profile.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", profile.Email, err)
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	const query = `
        SELECT email, name, role, search_string, certifications, last_updated
        FROM profiles WHERE email=$1`

	row := s.pool.QueryRow(ctx, query, email)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanProfile(row pgx.Row) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	var certs []byte
	if err := row.Scan(
		&profile.Email,
		&profile.Name,
		&profile.Role,
		&profile.SearchString,
		&certs,
		&profile.LastUpdated,
	); err != nil {
		return nil, err
	}
	if len(certs) > 0 {
		if err := json.Unmarshal(certs, &profile.Certifications); err != nil {
			return nil, fmt.Errorf("decode certifications for %s: %w", profile.Email, err)
		}
	}
	if profile.Certifications == nil {
		profile.Certifications = []domain.CertificationRecord{}
	}
	return &profile, nil
}

func marshalCerts(certs []domain.CertificationRecord) ([]byte, error) {
	if certs == nil {
		certs = []domain.CertificationRecord{}
	}
	data, err := json.Marshal(certs)
	if err != nil {
		return nil, fmt.Errorf("encode certifications: %w", err)
	}
	return data, nil
}
