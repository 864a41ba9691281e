package fasting

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

var (
	ErrNoActiveFast      = errors.New("no active fasting window")
	ErrFastAlreadyActive = errors.New("a fasting window is already active")
	ErrWindowNotFound    = errors.New("fasting window not found")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const windowColumns = `
	id, user_id, started_at, ended_at, fasting_type, notes`

// Start opens a new fasting window. An open-ended start is rejected while
// another window is still active; logging an already-closed window (both
// timestamps supplied) is always allowed.
func (r *Repo) Start(ctx context.Context, window Window) (_ *Window, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.fasting.start")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", window.UserID))

	if window.FastingType == "" {
		window.FastingType = DefaultType
	}

	if window.EndedAt == nil {
		if _, err := r.Active(ctx, window.UserID); err == nil {
			return nil, ErrFastAlreadyActive
		} else if !errors.Is(err, ErrNoActiveFast) {
			return nil, err
		}
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO fasting_windows (user_id, started_at, ended_at, fasting_type, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id;`,
		window.UserID, window.StartedAt, window.EndedAt, window.FastingType, window.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert fasting window: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, errors.New("unexpected: no rows returned")
	}
	if err := rows.Scan(&window.ID); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}
	return &window, nil
}

// Active returns the user's active window: the most recently started row
// with a null end.
func (r *Repo) Active(ctx context.Context, userID int) (_ *Window, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.fasting.active")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+windowColumns+`
			FROM fasting_windows
			WHERE user_id = $1 AND ended_at IS NULL
			ORDER BY started_at DESC
			LIMIT 1;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows, err := rows2windows(rows)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, ErrNoActiveFast
	}
	return &windows[0], nil
}

// End closes the active window at the given instant and returns it.
func (r *Repo) End(ctx context.Context, userID int, endedAt time.Time) (_ *Window, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.fasting.end")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	active, err := r.Active(ctx, userID)
	if err != nil {
		return nil, err
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE fasting_windows SET ended_at = $1 WHERE id = $2 AND user_id = $3;`,
		endedAt, active.ID, userID,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNoActiveFast
	}

	active.EndedAt = &endedAt
	return active, nil
}

func (r *Repo) History(ctx context.Context, userID int, since time.Time) (_ []Window, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.fasting.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+windowColumns+`
			FROM fasting_windows
			WHERE user_id = $1 AND started_at >= $2
			ORDER BY started_at DESC;`,
		userID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return rows2windows(rows)
}

func (r *Repo) Delete(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.fasting.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("fastingwindow.id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM fasting_windows WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWindowNotFound
	}
	return nil
}

func rows2windows(rows pgx.Rows) ([]Window, error) {
	var windows []Window
	for rows.Next() {
		var window Window
		if err := rows.Scan(
			&window.ID, &window.UserID, &window.StartedAt, &window.EndedAt,
			&window.FastingType, &window.Notes,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		windows = append(windows, window)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return windows, nil
}
