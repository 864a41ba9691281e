package wellness

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

var ErrDailyMetricNotFound = errors.New("daily metric not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const metricColumns = `
	id, user_id, date, sleep_hours, sleep_quality, mood, energy_level, notes`

// Upsert writes the metric for (user, date). On an existing row only the
// supplied fields overwrite; nulls in the incoming record leave the stored
// values untouched.
func (r *Repo) Upsert(ctx context.Context, metric DailyMetric) (_ *DailyMetric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.wellness.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", metric.UserID))

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO daily_metrics
			(user_id, date, sleep_hours, sleep_quality, mood, energy_level, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (user_id, date) DO UPDATE SET
				sleep_hours = COALESCE(EXCLUDED.sleep_hours, daily_metrics.sleep_hours),
				sleep_quality = COALESCE(EXCLUDED.sleep_quality, daily_metrics.sleep_quality),
				mood = COALESCE(EXCLUDED.mood, daily_metrics.mood),
				energy_level = COALESCE(EXCLUDED.energy_level, daily_metrics.energy_level),
				notes = COALESCE(EXCLUDED.notes, daily_metrics.notes)
			RETURNING ` + metricColumns + `;`,
		metric.UserID, metric.Date,
		metric.SleepHours, metric.SleepQuality, metric.Mood, metric.EnergyLevel, metric.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert daily metric: %w", err)
	}
	defer rows.Close()

	metrics, err := rows2metrics(rows)
	if err != nil {
		return nil, err
	}
	if len(metrics) != 1 {
		return nil, errors.New("unexpected: no rows returned")
	}
	return &metrics[0], nil
}

// ForDay returns the single metric row for (user, day).
func (r *Repo) ForDay(ctx context.Context, userID int, day time.Time) (_ *DailyMetric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.wellness.forday")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+metricColumns+`
			FROM daily_metrics
			WHERE user_id = $1 AND date = $2;`,
		userID, day,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metrics, err := rows2metrics(rows)
	if err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		return nil, ErrDailyMetricNotFound
	}
	return &metrics[0], nil
}

func (r *Repo) History(ctx context.Context, userID int, since time.Time) (_ []DailyMetric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.wellness.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+metricColumns+`
			FROM daily_metrics
			WHERE user_id = $1 AND date >= $2
			ORDER BY date DESC;`,
		userID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return rows2metrics(rows)
}

func rows2metrics(rows pgx.Rows) ([]DailyMetric, error) {
	var metrics []DailyMetric
	for rows.Next() {
		var metric DailyMetric
		if err := rows.Scan(
			&metric.ID, &metric.UserID, &metric.Date,
			&metric.SleepHours, &metric.SleepQuality, &metric.Mood,
			&metric.EnergyLevel, &metric.Notes,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		metrics = append(metrics, metric)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return metrics, nil
}
