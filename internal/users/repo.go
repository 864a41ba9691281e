package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgefit/forge/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrUserNotFound = errors.New("user not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const userColumns = `
	id, discord_id, display_name, created_at,
	target_weight, daily_calorie_goal, daily_protein_goal,
	daily_carb_goal, daily_fat_goal, daily_water_goal`

// FindOrCreate resolves a discord id to a user, creating the record on first
// sight. The conditional insert makes concurrent first-contact safe: the
// unique index on discord_id plus ON CONFLICT DO NOTHING means two racing
// calls cannot both insert, and both read back the same row.
func (r *Repo) FindOrCreate(ctx context.Context, discordID string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.findorcreate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("discord_id", discordID))

	if discordID == "" {
		return nil, errors.New("empty discord id")
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO users (discord_id, display_name)
			VALUES ($1, $2)
			ON CONFLICT (discord_id) DO NOTHING;`,
		discordID, DeriveDisplayName(discordID),
	)
	if err != nil {
		return nil, fmt.Errorf("conditional insert user: %w", err)
	}

	return r.GetByDiscordID(ctx, discordID)
}

func (r *Repo) GetByDiscordID(ctx context.Context, discordID string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getbydiscordid")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE discord_id = $1;`,
		discordID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users, err := rows2users(rows)
	if err != nil {
		return nil, err
	}
	if len(users) != 1 {
		return nil, ErrUserNotFound
	}
	return &users[0], nil
}

func (r *Repo) Get(ctx context.Context, userID int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users, err := rows2users(rows)
	if err != nil {
		return nil, err
	}
	if len(users) != 1 {
		return nil, ErrUserNotFound
	}
	return &users[0], nil
}

// SetGoals replaces all six goal fields atomically.
func (r *Repo) SetGoals(ctx context.Context, userID int, goals Goals) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.setgoals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE users SET
			target_weight = $1,
			daily_calorie_goal = $2,
			daily_protein_goal = $3,
			daily_carb_goal = $4,
			daily_fat_goal = $5,
			daily_water_goal = $6
		WHERE id = $7;`,
		goals.TargetWeight,
		goals.DailyCalorieGoal, goals.DailyProteinGoal,
		goals.DailyCarbGoal, goals.DailyFatGoal, goals.DailyWaterGoal,
		userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func rows2users(rows pgx.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.DiscordID, &u.DisplayName, &u.CreatedAt,
			&u.TargetWeight, &u.DailyCalorieGoal, &u.DailyProteinGoal,
			&u.DailyCarbGoal, &u.DailyFatGoal, &u.DailyWaterGoal,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
