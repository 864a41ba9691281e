package fasting

import (
	"context"
	"errors"
	"sort"
	"time"
)

type repoMock struct {
	nextID  int
	windows map[int]*Window
}

func NewMockFastingRepo() *repoMock {
	return &repoMock{
		nextID:  1,
		windows: make(map[int]*Window),
	}
}

func (r *repoMock) Start(ctx context.Context, window Window) (*Window, error) {
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
	window.ID = r.nextID
	r.windows[window.ID] = &window
	r.nextID++
	started := window
	return &started, nil
}

func (r *repoMock) Active(_ context.Context, userID int) (*Window, error) {
	var active *Window
	for _, window := range r.windows {
		if window.UserID != userID || window.EndedAt != nil {
			continue
		}
		if active == nil || window.StartedAt.After(active.StartedAt) {
			active = window
		}
	}
	if active == nil {
		return nil, ErrNoActiveFast
	}
	found := *active
	return &found, nil
}

func (r *repoMock) End(ctx context.Context, userID int, endedAt time.Time) (*Window, error) {
	active, err := r.Active(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.windows[active.ID].EndedAt = &endedAt
	active.EndedAt = &endedAt
	return active, nil
}

func (r *repoMock) History(_ context.Context, userID int, since time.Time) ([]Window, error) {
	var windows []Window
	for _, window := range r.windows {
		if window.UserID == userID && !window.StartedAt.Before(since) {
			windows = append(windows, *window)
		}
	}
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].StartedAt.After(windows[j].StartedAt)
	})
	return windows, nil
}

func (r *repoMock) Delete(_ context.Context, userID, id int) error {
	window, ok := r.windows[id]
	if !ok || window.UserID != userID {
		return ErrWindowNotFound
	}
	delete(r.windows, id)
	return nil
}
