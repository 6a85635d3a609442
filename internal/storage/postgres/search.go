package postgres

import (
	"context"
	"fmt"
	"time"

	"topmarketingjobs/internal/models"
	"topmarketingjobs/internal/search"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

var (
	jobColumns = []string{
		"jobs.id", "jobs.title", "jobs.description", "jobs.company_id",
		"companies.name AS company_name", "companies.logo_url AS company_logo_url",
		"jobs.location", "jobs.category_id", "jobs.salary", "jobs.job_type",
		"jobs.experience_level", "jobs.is_featured", "jobs.is_hot", "jobs.is_urgent",
		"jobs.employer_id", "jobs.created_at",
	}

	profileColumns = []string{
		"profiles.id", "profiles.full_name", "profiles.headline", "profiles.bio",
		"profiles.avatar_url", "profiles.location", "profiles.category_id",
		"profiles.job_type", "profiles.experience_level", "profiles.expected_salary",
		"profiles.is_featured", "profiles.created_at",
	}

	companyColumns = []string{
		"companies.id", "companies.name", "companies.description", "companies.logo_url",
		"companies.location", "companies.industry", "companies.is_verified",
		"companies.created_at",
	}
)

type join struct {
	table string
	on    string
}

type source[R any] struct {
	store   *Store
	columns []string
	joins   []join
}

func (src source[R]) Query(ctx context.Context, spec search.QuerySpec) ([]R, int, error) {
	return runQuery[R](ctx, src.store, spec, src.columns, src.joins)
}

// Jobs searches job listings joined with their company.
func (s *Store) Jobs() search.Source[models.JobRow] {
	return source[models.JobRow]{
		store:   s,
		columns: jobColumns,
		joins:   []join{{table: "companies", on: "companies.id = jobs.company_id"}},
	}
}

func (s *Store) Candidates() search.Source[models.ProfileRow] {
	return source[models.ProfileRow]{store: s, columns: profileColumns}
}

func (s *Store) Companies() search.Source[models.CompanyRow] {
	return source[models.CompanyRow]{store: s, columns: companyColumns}
}

func runQuery[R any](ctx context.Context, s *Store, spec search.QuerySpec, columns []string, joins []join) ([]R, int, error) {
	start := time.Now()
	where := Condition(spec.Predicates)

	stmt := s.sess.Select(columns...).From(spec.Table)
	for _, j := range joins {
		stmt = stmt.LeftJoin(j.table, j.on)
	}
	if where != nil {
		stmt = stmt.Where(where)
	}
	for _, o := range spec.Order {
		if o.Desc {
			stmt = stmt.OrderDesc(o.Column)
		} else {
			stmt = stmt.OrderAsc(o.Column)
		}
	}
	stmt = stmt.Offset(uint64(spec.Range.From)).Limit(uint64(spec.Range.Limit()))

	var rows []R
	if _, err := stmt.LoadContext(ctx, &rows); err != nil {
		s.logger.Error("failed to search",
			zap.String("table", spec.Table),
			zap.Int("predicates", len(spec.Predicates)),
			zap.Error(err),
		)
		return nil, 0, fmt.Errorf("search %s: %w", spec.Table, err)
	}

	count := len(rows)
	if spec.ExactCount {
		countStmt := s.sess.Select("COUNT(*)").From(spec.Table)
		if where != nil {
			countStmt = countStmt.Where(where)
		}
		if err := countStmt.LoadOneContext(ctx, &count); err != nil {
			s.logger.Error("failed to count search results",
				zap.String("table", spec.Table),
				zap.Error(err),
			)
			return nil, 0, fmt.Errorf("count %s: %w", spec.Table, err)
		}
	}

	s.logger.Debug("search done",
		zap.String("table", spec.Table),
		zap.Int("rows", len(rows)),
		zap.Int("total", count),
		zap.Duration("took", time.Since(start)),
	)

	return rows, count, nil
}

// Condition ANDs predicates into a single dbr condition, nil when there are
// none.
func Condition(predicates []search.Predicate) dbr.Builder {
	if len(predicates) == 0 {
		return nil
	}
	conds := make([]dbr.Builder, 0, len(predicates))
	for _, p := range predicates {
		conds = append(conds, condition(p))
	}
	if len(conds) == 1 {
		return conds[0]
	}
	return dbr.And(conds...)
}

func condition(p search.Predicate) dbr.Builder {
	switch p.Op {
	case search.OpILike:
		// column names come from search.Entity, never from the request
		return dbr.Expr(p.Column+" ILIKE ?", fmt.Sprintf("%%%v%%", p.Value))
	case search.OpOr:
		alts := make([]dbr.Builder, 0, len(p.Any))
		for _, alt := range p.Any {
			alts = append(alts, condition(alt))
		}
		return dbr.Or(alts...)
	default:
		return dbr.Eq(p.Column, p.Value)
	}
}
