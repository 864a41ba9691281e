package workouts

import (
	"context"
	"sort"
	"time"
)

type repoMock struct {
	nextID   int
	workouts map[int]*Workout
}

func NewMockWorkoutsRepo() *repoMock {
	return &repoMock{
		nextID:   1,
		workouts: make(map[int]*Workout),
	}
}

func (r *repoMock) Add(_ context.Context, workout Workout) (*Workout, error) {
	workout.ID = r.nextID
	workout.CreatedAt = time.Now()
	r.workouts[workout.ID] = &workout
	r.nextID++
	return &workout, nil
}

func (r *repoMock) ForDay(_ context.Context, userID int, day time.Time) ([]Workout, error) {
	var workouts []Workout
	for _, workout := range r.workouts {
		if workout.UserID == userID && workout.Date.Equal(day) {
			workouts = append(workouts, *workout)
		}
	}
	sort.Slice(workouts, func(i, j int) bool { return workouts[i].ID < workouts[j].ID })
	return workouts, nil
}

func (r *repoMock) MinutesForDay(ctx context.Context, userID int, day time.Time) (int, error) {
	workouts, err := r.ForDay(ctx, userID, day)
	if err != nil {
		return 0, err
	}
	var minutes int
	for _, workout := range workouts {
		if workout.DurationMinutes != nil {
			minutes += *workout.DurationMinutes
		}
	}
	return minutes, nil
}

func (r *repoMock) History(_ context.Context, userID int, since time.Time) ([]Workout, error) {
	var workouts []Workout
	for _, workout := range r.workouts {
		if workout.UserID == userID && !workout.Date.Before(since) {
			workouts = append(workouts, *workout)
		}
	}
	sort.Slice(workouts, func(i, j int) bool {
		if !workouts[i].Date.Equal(workouts[j].Date) {
			return workouts[i].Date.After(workouts[j].Date)
		}
		return workouts[i].ID > workouts[j].ID
	})
	return workouts, nil
}

func (r *repoMock) Delete(_ context.Context, userID, id int) error {
	workout, ok := r.workouts[id]
	if !ok || workout.UserID != userID {
		return ErrWorkoutNotFound
	}
	delete(r.workouts, id)
	return nil
}
