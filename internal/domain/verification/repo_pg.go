package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulpai/pulp/internal/domain/eligibility"
	"github.com/pulpai/pulp/internal/platform/hipaa"
)

// DefaultPersistTimeout bounds a single outcome write when the caller does
// not configure one.
const DefaultPersistTimeout = 5 * time.Second

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type outcomeRepoPG struct {
	db      queryable
	enc     *hipaa.PayloadEncryptor
	timeout time.Duration
}

// NewOutcomeRepoPG stores outcomes in verification_outcome. When enc is
// non-nil the member id and both payloads are sealed before they are
// written.
func NewOutcomeRepoPG(pool *pgxpool.Pool, enc *hipaa.PayloadEncryptor, timeout time.Duration) OutcomeRepository {
	return newOutcomeRepo(pool, enc, timeout)
}

func newOutcomeRepo(db queryable, enc *hipaa.PayloadEncryptor, timeout time.Duration) *outcomeRepoPG {
	if timeout <= 0 {
		timeout = DefaultPersistTimeout
	}
	return &outcomeRepoPG{db: db, enc: enc, timeout: timeout}
}

const outcomeSummaryCols = `id, practice_id, payer_id_used, payer_name, trigger,
	verification_status, plan_status, source, duration_ms, created_at`

func (r *outcomeRepoPG) Save(ctx context.Context, o *Outcome) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	normalized, err := json.Marshal(o.NormalizedResult)
	if err != nil {
		return fmt.Errorf("encode normalized result: %w", err)
	}

	memberID, err := r.seal([]byte(o.MemberIDUsed))
	if err != nil {
		return err
	}
	raw, err := r.seal(o.RawResponse)
	if err != nil {
		return err
	}
	norm, err := r.seal(normalized)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO verification_outcome (id, practice_id, member_id_used, payer_id_used, trigger,
			verification_status, plan_status, payer_name, source,
			raw_response, normalized_result, payload_encrypted, duration_ms, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		o.ID, o.PracticeID, memberID, o.PayerIDUsed, o.Trigger,
		string(o.VerificationStatus), o.PlanStatus, o.PayerName, string(o.Source),
		raw, norm, r.enc != nil, o.DurationMs, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert verification outcome: %w", err)
	}
	return nil
}

func (r *outcomeRepoPG) seal(data []byte) ([]byte, error) {
	if r.enc == nil || len(data) == 0 {
		return data, nil
	}
	sealed, err := r.enc.Seal(data)
	if err != nil {
		return nil, fmt.Errorf("seal outcome payload: %w", err)
	}
	return sealed, nil
}

func (r *outcomeRepoPG) List(ctx context.Context, limit, offset int) ([]*OutcomeSummary, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM verification_outcome`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count verification outcomes: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+outcomeSummaryCols+` FROM verification_outcome
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list verification outcomes: %w", err)
	}
	defer rows.Close()

	items := []*OutcomeSummary{}
	for rows.Next() {
		var s OutcomeSummary
		var status, source string
		if err := rows.Scan(&s.ID, &s.PracticeID, &s.PayerIDUsed, &s.PayerName, &s.Trigger,
			&status, &s.PlanStatus, &source, &s.DurationMs, &s.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan verification outcome: %w", err)
		}
		s.VerificationStatus = eligibility.VerificationStatus(status)
		s.Source = Source(source)
		items = append(items, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
