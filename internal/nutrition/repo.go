package nutrition

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

var ErrNutritionLogNotFound = errors.New("nutrition log not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const logColumns = `
	id, user_id, logged_at, raw_input, description,
	calories, protein_g, carbs_g, fat_g, fiber_g, water_oz,
	meal_type, usda_fdc_id`

func (r *Repo) Add(ctx context.Context, nl Log) (_ *Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", nl.UserID))

	if nl.LoggedAt.IsZero() {
		nl.LoggedAt = time.Now().UTC()
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO nutrition_logs
			(user_id, logged_at, raw_input, description,
			 calories, protein_g, carbs_g, fat_g, fiber_g, water_oz,
			 meal_type, usda_fdc_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id;`,
		nl.UserID, nl.LoggedAt, nl.RawInput, nl.Description,
		nl.Calories, nl.ProteinG, nl.CarbsG, nl.FatG, nl.FiberG, nl.WaterOz,
		nl.MealType, nl.USDAFDCID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert nutrition log: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, errors.New("unexpected: no rows returned")
	}
	if err := rows.Scan(&nl.ID); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}
	return &nl, nil
}

// ForInterval lists all logs whose logged_at falls in [start, end).
func (r *Repo) ForInterval(ctx context.Context, userID int, start, end time.Time) (_ []Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.forinterval")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+logColumns+`
			FROM nutrition_logs
			WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
			ORDER BY logged_at ASC, id ASC;`,
		userID, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return rows2logs(rows)
}

// SumForInterval sums the macro fields over [start, end), null fields
// counting as zero.
func (r *Repo) SumForInterval(ctx context.Context, userID int, start, end time.Time) (_ Totals, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.sumforinterval")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var totals Totals
	err = r.db.QueryRow(
		ctx,
		`SELECT
			COALESCE(SUM(calories), 0),
			COALESCE(SUM(protein_g), 0),
			COALESCE(SUM(carbs_g), 0),
			COALESCE(SUM(fat_g), 0),
			COALESCE(SUM(fiber_g), 0),
			COALESCE(SUM(water_oz), 0)
		FROM nutrition_logs
		WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3;`,
		userID, start, end,
	).Scan(
		&totals.Calories, &totals.ProteinG, &totals.CarbsG,
		&totals.FatG, &totals.FiberG, &totals.WaterOz,
	)
	if err != nil {
		return Totals{}, fmt.Errorf("sum nutrition logs: %w", err)
	}
	return totals, nil
}

// History lists logs since the given instant, newest first.
func (r *Repo) History(ctx context.Context, userID int, since time.Time) (_ []Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+logColumns+`
			FROM nutrition_logs
			WHERE user_id = $1 AND logged_at >= $2
			ORDER BY logged_at DESC, id DESC;`,
		userID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return rows2logs(rows)
}

func (r *Repo) Delete(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("nutritionlog.id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM nutrition_logs WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNutritionLogNotFound
	}
	return nil
}

// DeleteLatest removes the user's most recent log and returns it.
func (r *Repo) DeleteLatest(ctx context.Context, userID int) (_ *Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.deletelatest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+logColumns+`
			FROM nutrition_logs
			WHERE user_id = $1
			ORDER BY logged_at DESC, id DESC
			LIMIT 1;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs, err := rows2logs(rows)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, ErrNutritionLogNotFound
	}

	latest := logs[0]
	if err := r.Delete(ctx, userID, latest.ID); err != nil {
		return nil, err
	}
	return &latest, nil
}

func rows2logs(rows pgx.Rows) ([]Log, error) {
	var logs []Log
	for rows.Next() {
		var nl Log
		if err := rows.Scan(
			&nl.ID, &nl.UserID, &nl.LoggedAt, &nl.RawInput, &nl.Description,
			&nl.Calories, &nl.ProteinG, &nl.CarbsG, &nl.FatG, &nl.FiberG, &nl.WaterOz,
			&nl.MealType, &nl.USDAFDCID,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		logs = append(logs, nl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
