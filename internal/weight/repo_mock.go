package weight

import (
	"context"
	"sort"
	"time"
)

type repoMock struct {
	nextID int
	logs   map[int]*Log
}

func NewMockWeightRepo() *repoMock {
	return &repoMock{
		nextID: 1,
		logs:   make(map[int]*Log),
	}
}

func (r *repoMock) Add(_ context.Context, wl Log) (*Log, error) {
	wl.ID = r.nextID
	wl.CreatedAt = time.Now()
	r.logs[wl.ID] = &wl
	r.nextID++
	return &wl, nil
}

func (r *repoMock) sorted(userID int) []Log {
	var logs []Log
	for _, wl := range r.logs {
		if wl.UserID == userID {
			logs = append(logs, *wl)
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		if !logs[i].Date.Equal(logs[j].Date) {
			return logs[i].Date.After(logs[j].Date)
		}
		return logs[i].ID > logs[j].ID
	})
	return logs
}

func (r *repoMock) Latest(_ context.Context, userID int) (*Log, error) {
	logs := r.sorted(userID)
	if len(logs) == 0 {
		return nil, ErrWeightLogNotFound
	}
	return &logs[0], nil
}

func (r *repoMock) History(_ context.Context, userID, days int) ([]Log, error) {
	logs := r.sorted(userID)
	// history is oldest first
	sort.Slice(logs, func(i, j int) bool {
		if !logs[i].Date.Equal(logs[j].Date) {
			return logs[i].Date.Before(logs[j].Date)
		}
		return logs[i].ID < logs[j].ID
	})
	return logs, nil
}

func (r *repoMock) Delete(_ context.Context, userID, id int) error {
	wl, ok := r.logs[id]
	if !ok || wl.UserID != userID {
		return ErrWeightLogNotFound
	}
	delete(r.logs, id)
	return nil
}

func (r *repoMock) DeleteLatest(ctx context.Context, userID int) (*Log, error) {
	latest, err := r.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := r.Delete(ctx, userID, latest.ID); err != nil {
		return nil, err
	}
	return latest, nil
}
