package memberrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chingu-voyages/demographics-api/internal/domain"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/memberrepo"
)

// Repo is a Postgres implementation of memberrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const selectColumns = `
	id, joined_at, year_joined, gender, country_code, country_name, goal, source,
	role_type, voyage_role, solo_project_tier, voyage_tier, voyage`

func (r *Repo) Find(ctx context.Context, p memberrepo.Predicate, sort []memberrepo.SortKey, skip, limit int) ([]domain.Member, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	cond, args, err := compileWhere(p)
	if err != nil {
		return nil, err
	}
	order, err := compileOrder(sort)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + selectColumns + ` FROM members WHERE ` + cond + ` ORDER BY ` + order
	if skip > 0 {
		args = append(args, skip)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) Count(ctx context.Context, p memberrepo.Predicate) (int64, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	cond, args, err := compileWhere(p)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM members WHERE `+cond, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repo) GroupByCountry(ctx context.Context, p memberrepo.Predicate) ([]memberrepo.CountryGroup, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	cond, args, err := compileWhere(p)
	if err != nil {
		return nil, err
	}

	// Names are ordered by the first row they appear on, groups by count then first row.
	rows, err := r.pool.Query(ctx, `
		WITH matched AS (
			SELECT seq, country_code, country_name FROM members WHERE `+cond+`
		),
		groups AS (
			SELECT country_code, count(*) AS n, min(seq) AS first_seq
			FROM matched
			GROUP BY country_code
		),
		names AS (
			SELECT country_code, country_name, min(seq) AS first_seq
			FROM matched
			GROUP BY country_code, country_name
		)
		SELECT g.country_code, g.n, array_agg(nm.country_name ORDER BY nm.first_seq)
		FROM groups g
		JOIN names nm ON nm.country_code = g.country_code
		GROUP BY g.country_code, g.n, g.first_seq
		ORDER BY g.n DESC, g.first_seq
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]memberrepo.CountryGroup, 0)
	for rows.Next() {
		var g memberrepo.CountryGroup
		if err := rows.Scan(&g.CountryCode, &g.Count, &g.Names); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repo) ReplaceAll(ctx context.Context, ms []domain.Member) (int, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	rows := make([][]any, 0, len(ms))
	for _, m := range ms {
		id, err := uuid.Parse(string(m.ID))
		if err != nil {
			return 0, fmt.Errorf("invalid member id %q: %w", m.ID, err)
		}
		rows = append(rows, []any{
			id, m.Timestamp.UTC(), m.YearJoined, string(m.Gender), m.CountryCode, m.CountryName,
			m.Goal, m.Source, m.RoleType, m.VoyageRole, m.SoloProjectTier, m.VoyageTier, m.Voyage,
		})
	}

	var n int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM members`); err != nil {
			return err
		}
		var err error
		n, err = tx.CopyFrom(ctx, pgx.Identifier{"members"}, []string{
			"id", "joined_at", "year_joined", "gender", "country_code", "country_name", "goal", "source",
			"role_type", "voyage_role", "solo_project_tier", "voyage_tier", "voyage",
		}, pgx.CopyFromRows(rows))
		return err
	})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func scanMember(row pgx.Row) (domain.Member, error) {
	var (
		id       uuid.UUID
		joinedAt time.Time
		gender   string
		m        domain.Member
	)
	if err := row.Scan(
		&id, &joinedAt, &m.YearJoined, &gender, &m.CountryCode, &m.CountryName, &m.Goal, &m.Source,
		&m.RoleType, &m.VoyageRole, &m.SoloProjectTier, &m.VoyageTier, &m.Voyage,
	); err != nil {
		return domain.Member{}, err
	}
	m.ID = domain.MemberID(id.String())
	m.Timestamp = joinedAt.UTC()
	m.Gender = domain.Gender(gender)
	return m, nil
}
