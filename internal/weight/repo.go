package weight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/forgefit/forge/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrWeightLogNotFound = errors.New("weight log not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, wl Log) (_ *Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", wl.UserID))

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO weight_logs (user_id, weight, date, notes)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at;`,
		wl.UserID, wl.Weight, wl.Date, wl.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert weight log: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, errors.New("unexpected: no rows returned")
	}
	if err := rows.Scan(&wl.ID, &wl.CreatedAt); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}
	return &wl, nil
}

// Latest returns the most recent log, date ordering with ties broken by
// insertion order.
func (r *Repo) Latest(ctx context.Context, userID int) (_ *Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.latest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.one(ctx,
		`SELECT id, user_id, weight, date, notes, created_at
			FROM weight_logs
			WHERE user_id = $1
			ORDER BY date DESC, id DESC
			LIMIT 1;`,
		userID,
	)
}

// ForDay returns the measurement in effect on the given civil day: the most
// recent log with date <= day. Weight carries forward from the last recorded
// measurement, it is not restricted to the exact day.
func (r *Repo) ForDay(ctx context.Context, userID int, day time.Time) (_ *Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.forday")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.one(ctx,
		`SELECT id, user_id, weight, date, notes, created_at
			FROM weight_logs
			WHERE user_id = $1 AND date <= $2
			ORDER BY date DESC, id DESC
			LIMIT 1;`,
		userID, day,
	)
}

func (r *Repo) History(ctx context.Context, userID, days int) (_ []Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("days", days))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, weight, date, notes, created_at
			FROM weight_logs
			WHERE user_id = $1 AND date >= CURRENT_DATE - $2::int
			ORDER BY date ASC, id ASC;`,
		userID, days,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return rows2logs(rows)
}

// Delete removes a log by id, scoped to its owner. A row owned by another
// user reports not found, it is never touched.
func (r *Repo) Delete(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("weightlog.id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM weight_logs WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWeightLogNotFound
	}
	return nil
}

// DeleteLatest removes the user's most recent log and returns it.
func (r *Repo) DeleteLatest(ctx context.Context, userID int) (_ *Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.deletelatest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	latest, err := r.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := r.Delete(ctx, userID, latest.ID); err != nil {
		return nil, err
	}
	return latest, nil
}

func (r *Repo) one(ctx context.Context, query string, args ...any) (*Log, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs, err := rows2logs(rows)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, ErrWeightLogNotFound
	}
	return &logs[0], nil
}

func rows2logs(rows pgx.Rows) ([]Log, error) {
	var logs []Log
	for rows.Next() {
		var wl Log
		if err := rows.Scan(
			&wl.ID, &wl.UserID, &wl.Weight, &wl.Date, &wl.Notes, &wl.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		logs = append(logs, wl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
