package users

import (
	"context"
	"sync"
)

type repoMock struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*User
}

func NewMockUsersRepo() *repoMock {
	return &repoMock{
		nextID: 1,
		users:  make(map[int]*User),
	}
}

func (r *repoMock) FindOrCreate(_ context.Context, discordID string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.DiscordID == discordID {
			return u, nil
		}
	}
	u := &User{
		ID:          r.nextID,
		DiscordID:   discordID,
		DisplayName: DeriveDisplayName(discordID),
	}
	r.users[u.ID] = u
	r.nextID++
	return u, nil
}

func (r *repoMock) Get(_ context.Context, userID int) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *repoMock) GetByDiscordID(_ context.Context, discordID string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.DiscordID == discordID {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *repoMock) SetGoals(_ context.Context, userID int, goals Goals) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.TargetWeight = &goals.TargetWeight
	u.DailyCalorieGoal = &goals.DailyCalorieGoal
	u.DailyProteinGoal = &goals.DailyProteinGoal
	u.DailyCarbGoal = &goals.DailyCarbGoal
	u.DailyFatGoal = &goals.DailyFatGoal
	u.DailyWaterGoal = &goals.DailyWaterGoal
	return nil
}
