package workouts

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

var ErrWorkoutNotFound = errors.New("workout not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const workoutColumns = `
	id, user_id, date, workout_type, duration_minutes,
	calories_burned, description, created_at`

func (r *Repo) Add(ctx context.Context, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("user.id", workout.UserID),
		attribute.String("workout.type", string(workout.Type)),
	)

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO workouts
			(user_id, date, workout_type, duration_minutes, calories_burned, description)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at;`,
		workout.UserID, workout.Date, workout.Type,
		workout.DurationMinutes, workout.CaloriesBurned, workout.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, errors.New("unexpected: no rows returned")
	}
	if err := rows.Scan(&workout.ID, &workout.CreatedAt); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}
	return &workout, nil
}

// ForDay lists workouts whose calendar date equals the given day. The date
// column is matched directly, the absolute created_at timestamp plays no
// part here.
func (r *Repo) ForDay(ctx context.Context, userID int, day time.Time) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.forday")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+workoutColumns+`
			FROM workouts
			WHERE user_id = $1 AND date = $2
			ORDER BY id ASC;`,
		userID, day,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return rows2workouts(rows)
}

// MinutesForDay sums duration over the day's workouts, null durations
// counting as zero.
func (r *Repo) MinutesForDay(ctx context.Context, userID int, day time.Time) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.minutesforday")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var minutes int
	err = r.db.QueryRow(
		ctx,
		`SELECT COALESCE(SUM(duration_minutes), 0)
			FROM workouts
			WHERE user_id = $1 AND date = $2;`,
		userID, day,
	).Scan(&minutes)
	if err != nil {
		return 0, fmt.Errorf("sum workout minutes: %w", err)
	}
	return minutes, nil
}

func (r *Repo) History(ctx context.Context, userID int, since time.Time) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+workoutColumns+`
			FROM workouts
			WHERE user_id = $1 AND date >= $2
			ORDER BY date DESC, id DESC;`,
		userID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return rows2workouts(rows)
}

func (r *Repo) Delete(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workouts WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func rows2workouts(rows pgx.Rows) ([]Workout, error) {
	var workouts []Workout
	for rows.Next() {
		var workout Workout
		if err := rows.Scan(
			&workout.ID, &workout.UserID, &workout.Date, &workout.Type,
			&workout.DurationMinutes, &workout.CaloriesBurned,
			&workout.Description, &workout.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		workouts = append(workouts, workout)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}
