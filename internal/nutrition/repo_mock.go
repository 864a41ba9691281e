package nutrition

import (
	"context"
	"sort"
	"time"
)

type repoMock struct {
	nextID int
	logs   map[int]*Log
}

func NewMockNutritionRepo() *repoMock {
	return &repoMock{
		nextID: 1,
		logs:   make(map[int]*Log),
	}
}

func (r *repoMock) Add(_ context.Context, nl Log) (*Log, error) {
	if nl.LoggedAt.IsZero() {
		nl.LoggedAt = time.Now().UTC()
	}
	nl.ID = r.nextID
	r.logs[nl.ID] = &nl
	r.nextID++
	return &nl, nil
}

func (r *repoMock) ForInterval(_ context.Context, userID int, start, end time.Time) ([]Log, error) {
	var logs []Log
	for _, nl := range r.logs {
		if nl.UserID != userID {
			continue
		}
		if nl.LoggedAt.Before(start) || !nl.LoggedAt.Before(end) {
			continue
		}
		logs = append(logs, *nl)
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].ID < logs[j].ID })
	return logs, nil
}

func (r *repoMock) SumForInterval(ctx context.Context, userID int, start, end time.Time) (Totals, error) {
	logs, err := r.ForInterval(ctx, userID, start, end)
	if err != nil {
		return Totals{}, err
	}
	var totals Totals
	for _, nl := range logs {
		if nl.Calories != nil {
			totals.Calories += *nl.Calories
		}
		if nl.ProteinG != nil {
			totals.ProteinG += *nl.ProteinG
		}
		if nl.CarbsG != nil {
			totals.CarbsG += *nl.CarbsG
		}
		if nl.FatG != nil {
			totals.FatG += *nl.FatG
		}
		if nl.FiberG != nil {
			totals.FiberG += *nl.FiberG
		}
		if nl.WaterOz != nil {
			totals.WaterOz += *nl.WaterOz
		}
	}
	return totals, nil
}

func (r *repoMock) History(_ context.Context, userID int, since time.Time) ([]Log, error) {
	var logs []Log
	for _, nl := range r.logs {
		if nl.UserID == userID && !nl.LoggedAt.Before(since) {
			logs = append(logs, *nl)
		}
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].ID > logs[j].ID })
	return logs, nil
}

func (r *repoMock) Delete(_ context.Context, userID, id int) error {
	nl, ok := r.logs[id]
	if !ok || nl.UserID != userID {
		return ErrNutritionLogNotFound
	}
	delete(r.logs, id)
	return nil
}

func (r *repoMock) DeleteLatest(_ context.Context, userID int) (*Log, error) {
	var latest *Log
	for _, nl := range r.logs {
		if nl.UserID != userID {
			continue
		}
		if latest == nil || nl.LoggedAt.After(latest.LoggedAt) ||
			(nl.LoggedAt.Equal(latest.LoggedAt) && nl.ID > latest.ID) {
			latest = nl
		}
	}
	if latest == nil {
		return nil, ErrNutritionLogNotFound
	}
	deleted := *latest
	delete(r.logs, latest.ID)
	return &deleted, nil
}

type parserMock struct {
	parsed *Parsed
	err    error
}

func (p *parserMock) Parse(context.Context, string) (*Parsed, error) {
	return p.parsed, p.err
}

type usdaMock struct {
	foods []Food
	err   error
}

func (u *usdaMock) Search(context.Context, string, int) ([]Food, error) {
	return u.foods, u.err
}

func (u *usdaMock) FoodDetails(context.Context, int) (*Food, error) {
	if u.err != nil {
		return nil, u.err
	}
	if len(u.foods) == 0 {
		return nil, ErrFoodNotFound
	}
	return &u.foods[0], nil
}
