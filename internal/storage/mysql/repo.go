package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"review_dashboard/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Upsert inserts or updates on the (platform, external_id) key. The second
// return value reports whether a new row was created. The write is a single
// atomic statement, so concurrent syncs cannot produce lost updates for the
// same record.
func (r *Repo) Upsert(ctx context.Context, rv domain.Review) (domain.Review, bool, error) {
	var reviewDate any
	if !rv.ReviewDate.IsZero() {
		reviewDate = rv.ReviewDate.UTC()
	}
	var sentiment any
	if rv.Sentiment != nil {
		sentiment = string(*rv.Sentiment)
	}
	var raw any
	if len(rv.RawJSON) > 0 {
		raw = string(rv.RawJSON)
	}

	res, err := r.db.ExecContext(ctx, upsertReviewSQL,
		string(rv.Platform),
		rv.ExternalID,
		rv.ReviewerName,
		rv.Rating,
		rv.Text,
		reviewDate,
		sentiment,
		raw,
	)
	if err != nil {
		return domain.Review{}, false, fmt.Errorf("upsert review: %w", err)
	}

	// MySQL reports 1 affected row for an insert, 2 for a duplicate-key
	// update, 0 when the update changed nothing. On the 0 path the insert id
	// is not reliable, so resolve the row by its natural key instead.
	affected, _ := res.RowsAffected()
	wasNew := affected == 1
	if affected == 0 {
		stored, err := r.getByKey(ctx, rv.Platform, rv.ExternalID)
		if err != nil {
			return domain.Review{}, false, err
		}
		return stored, false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Review{}, false, err
	}
	stored, err := r.Get(ctx, id)
	if err != nil {
		return domain.Review{}, false, err
	}
	return stored, wasNew, nil
}

func (r *Repo) getByKey(ctx context.Context, p domain.Platform, externalID string) (domain.Review, error) {
	row := r.db.QueryRowContext(ctx, getReviewByKeySQL, string(p), externalID)
	rv, err := scanReview(row)
	if err == sql.ErrNoRows {
		return domain.Review{}, domain.ErrNotFound
	}
	return rv, err
}

func (r *Repo) Get(ctx context.Context, id int64) (domain.Review, error) {
	row := r.db.QueryRowContext(ctx, getReviewSQL, id)
	rv, err := scanReview(row)
	if err == sql.ErrNoRows {
		return domain.Review{}, domain.ErrNotFound
	}
	return rv, err
}

func (r *Repo) List(ctx context.Context, q domain.ReviewsQuery) ([]domain.Review, error) {
	var (
		where []string
		args  []any
	)
	if q.Platform != nil {
		where = append(where, "platform = ?")
		args = append(args, string(*q.Platform))
	}
	if q.MaxRating != nil {
		where = append(where, "rating <= ?")
		args = append(args, *q.MaxRating)
	}

	qry := selectReviewCols
	if len(where) > 0 {
		qry += " WHERE " + strings.Join(where, " AND ")
	}
	qry += " ORDER BY review_date DESC, id DESC"
	switch {
	case q.Limit == 0:
		qry += " LIMIT 50"
	case q.Limit > 0:
		qry += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, qry, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetResponse stores a reply for a review. The UPDATE only matches rows
// without one, so a second write distinguishes "already answered" from
// "unknown id" by re-reading the row.
func (r *Repo) SetResponse(ctx context.Context, id int64, text string) (domain.Review, error) {
	res, err := r.db.ExecContext(ctx, setResponseSQL, text, id)
	if err != nil {
		return domain.Review{}, err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		existing, err := r.Get(ctx, id)
		if err != nil {
			return domain.Review{}, err // ErrNotFound for unknown ids
		}
		if existing.ResponseText != nil {
			return domain.Review{}, domain.ErrAlreadyResponded
		}
	}
	return r.Get(ctx, id)
}

func (r *Repo) MarkSynced(ctx context.Context, p domain.Platform, t time.Time) error {
	_, err := r.db.ExecContext(ctx, upsertWatermarkSQL, string(p), t.UTC())
	return err
}

func (r *Repo) LastSync(ctx context.Context, p domain.Platform) (*time.Time, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx, getWatermarkSQL, string(p)).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type scanner interface{ Scan(dst ...any) error }

func scanReview(row scanner) (domain.Review, error) {
	var (
		rv        domain.Review
		platform  string
		text      sql.NullString
		date      sql.NullTime
		sentiment sql.NullString
		response  sql.NullString
		raw       []byte
	)
	if err := row.Scan(
		&rv.ID,
		&platform,
		&rv.ExternalID,
		&rv.ReviewerName,
		&rv.Rating,
		&text,
		&date,
		&sentiment,
		&response,
		&raw,
	); err != nil {
		return domain.Review{}, err
	}

	rv.Platform = domain.Platform(platform)
	if text.Valid {
		rv.Text = text.String
	}
	if date.Valid {
		rv.ReviewDate = date.Time.UTC()
	}
	if sentiment.Valid {
		s := domain.Sentiment(sentiment.String)
		rv.Sentiment = &s
	}
	if response.Valid {
		s := response.String
		rv.ResponseText = &s
	}
	if len(raw) > 0 {
		rv.RawJSON = append([]byte(nil), raw...)
	}
	return rv, nil
}
