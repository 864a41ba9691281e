package webdash

import (
	"context"
	"sync"

	"github.com/forgefit/forge/internal/dashboard"
	"github.com/forgefit/forge/internal/fasting"
	"github.com/forgefit/forge/internal/forgeapi"
	"github.com/forgefit/forge/internal/nutrition"
	"github.com/forgefit/forge/internal/users"
	"github.com/forgefit/forge/internal/weight"
	"github.com/forgefit/forge/internal/workouts"
)

// apiMock is an in-memory stand in for the backend client, used in
// tests.
type apiMock struct {
	mutex sync.Mutex

	today         dashboard.DailySummary
	week          []dashboard.DailySummary
	goals         users.Goals
	weightHistory []weight.Log
	nutritionLogs []nutrition.Log
	fasts         []fasting.WindowResponse
	activeFast    *fasting.WindowResponse
	foods         []nutrition.Food

	addedWeights   []weight.AddRequest
	addedNutrition []nutrition.AddRequest
	addedWorkouts  []workouts.AddRequest
	deletedLogIDs  []int
	deletedFastIDs []int
	returnErr      error
}

func newApiMock() *apiMock {
	return &apiMock{}
}

func (m *apiMock) DashboardToday(_ context.Context, _ string) (*dashboard.DailySummary, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	today := m.today
	return &today, nil
}

func (m *apiMock) DashboardWeek(_ context.Context, _ string) ([]dashboard.DailySummary, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return m.week, nil
}

func (m *apiMock) Goals(_ context.Context, _ string) (*users.Goals, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	goals := m.goals
	return &goals, nil
}

func (m *apiMock) WeightHistory(_ context.Context, _ string, _ int) ([]weight.Log, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return m.weightHistory, nil
}

func (m *apiMock) AddWeight(_ context.Context, req weight.AddRequest) (*weight.Log, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	m.addedWeights = append(m.addedWeights, req)
	return &weight.Log{ID: len(m.addedWeights), Weight: req.Weight}, nil
}

func (m *apiMock) AddNutrition(_ context.Context, req nutrition.AddRequest) (*nutrition.Log, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	m.addedNutrition = append(m.addedNutrition, req)
	return &nutrition.Log{ID: len(m.addedNutrition), Description: req.Description}, nil
}

func (m *apiMock) NutritionHistory(_ context.Context, _ string, _ int) ([]nutrition.Log, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return m.nutritionLogs, nil
}

func (m *apiMock) DeleteNutrition(_ context.Context, _ string, id int) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.returnErr != nil {
		return 0, m.returnErr
	}
	m.deletedLogIDs = append(m.deletedLogIDs, id)
	return id, nil
}

func (m *apiMock) AddWorkout(_ context.Context, req workouts.AddRequest) (*workouts.Workout, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	m.addedWorkouts = append(m.addedWorkouts, req)
	return &workouts.Workout{ID: len(m.addedWorkouts)}, nil
}

func (m *apiMock) StartFast(_ context.Context, req fasting.StartRequest) (*fasting.WindowResponse, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	if m.activeFast != nil {
		return nil, forgeapi.ErrFastActive
	}
	window := &fasting.WindowResponse{
		Window: fasting.Window{ID: 1, FastingType: req.FastingType},
	}
	m.activeFast = window
	return window, nil
}

func (m *apiMock) EndFast(_ context.Context, _ string) (*fasting.WindowResponse, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	if m.activeFast == nil {
		return nil, forgeapi.ErrNotFound
	}
	ended := m.activeFast
	m.activeFast = nil
	return ended, nil
}

func (m *apiMock) ActiveFast(_ context.Context, _ string) (*fasting.WindowResponse, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	if m.activeFast == nil {
		return nil, forgeapi.ErrNotFound
	}
	return m.activeFast, nil
}

func (m *apiMock) FastingHistory(_ context.Context, _ string, _ int) ([]fasting.WindowResponse, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return m.fasts, nil
}

func (m *apiMock) DeleteFast(_ context.Context, _ string, id int) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.returnErr != nil {
		return 0, m.returnErr
	}
	m.deletedFastIDs = append(m.deletedFastIDs, id)
	return id, nil
}

func (m *apiMock) SearchFood(_ context.Context, _ string, _ int) ([]nutrition.Food, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return m.foods, nil
}
