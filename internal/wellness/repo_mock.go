package wellness

import (
	"context"
	"sort"
	"time"
)

type repoMock struct {
	nextID  int
	metrics map[int]*DailyMetric
}

func NewMockMetricsRepo() *repoMock {
	return &repoMock{
		nextID:  1,
		metrics: make(map[int]*DailyMetric),
	}
}

func (r *repoMock) Upsert(_ context.Context, metric DailyMetric) (*DailyMetric, error) {
	for _, existing := range r.metrics {
		if existing.UserID == metric.UserID && existing.Date.Equal(metric.Date) {
			if metric.SleepHours != nil {
				existing.SleepHours = metric.SleepHours
			}
			if metric.SleepQuality != nil {
				existing.SleepQuality = metric.SleepQuality
			}
			if metric.Mood != nil {
				existing.Mood = metric.Mood
			}
			if metric.EnergyLevel != nil {
				existing.EnergyLevel = metric.EnergyLevel
			}
			if metric.Notes != nil {
				existing.Notes = metric.Notes
			}
			updated := *existing
			return &updated, nil
		}
	}

	metric.ID = r.nextID
	r.metrics[metric.ID] = &metric
	r.nextID++
	added := metric
	return &added, nil
}

func (r *repoMock) ForDay(_ context.Context, userID int, day time.Time) (*DailyMetric, error) {
	for _, metric := range r.metrics {
		if metric.UserID == userID && metric.Date.Equal(day) {
			found := *metric
			return &found, nil
		}
	}
	return nil, ErrDailyMetricNotFound
}

func (r *repoMock) History(_ context.Context, userID int, since time.Time) ([]DailyMetric, error) {
	var metrics []DailyMetric
	for _, metric := range r.metrics {
		if metric.UserID == userID && !metric.Date.Before(since) {
			metrics = append(metrics, *metric)
		}
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Date.After(metrics[j].Date) })
	return metrics, nil
}
