package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

type goalSource struct {
	mu    sync.Mutex
	seen  []common.Goal
	fail  common.Goal
	count int
}

func (s *goalSource) GetRecipesByGoal(_ context.Context, goal common.Goal, _ int) ([]common.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, goal)
	if goal == s.fail {
		return nil, errors.New("load failed")
	}
	return make([]common.Recipe, s.count), nil
}

func TestWarmupRunsOneJobPerGoal(t *testing.T) {
	src := &goalSource{count: 4, fail: common.GoalMaintenance}
	m := NewManager(config.QueueConfig{Workers: 2, MaxSize: 10})
	defer m.Close()
	m.Start(context.Background(), WarmupHandler(src))

	results := m.Warmup(context.Background(), common.AllGoals, 0)
	require.Len(t, results, 3)

	byGoal := map[common.Goal]Result{}
	for _, r := range results {
		byGoal[r.Job.Goal] = r
	}
	assert.Equal(t, 4, byGoal[common.GoalWeightLoss].Count)
	assert.NoError(t, byGoal[common.GoalMuscleGain].Error)
	assert.Error(t, byGoal[common.GoalMaintenance].Error)
	assert.ElementsMatch(t, common.AllGoals, src.seen)

	status := m.GetQueueStatus()
	assert.Equal(t, 3, status.ProcessedCount)
	assert.Equal(t, 1, status.FailedCount)
	assert.Equal(t, 2, status.Workers)
	assert.True(t, status.Running)
}

func TestEnqueueFullAndClosed(t *testing.T) {
	m := NewManager(config.QueueConfig{Workers: 1, MaxSize: 1})

	_, err := m.Enqueue(context.Background(), Job{Goal: common.GoalWeightLoss})
	require.NoError(t, err)
	_, err = m.Enqueue(context.Background(), Job{Goal: common.GoalMuscleGain})
	assert.ErrorIs(t, err, ErrQueueFull)

	m.Close()
	m.Close()
	_, err = m.Enqueue(context.Background(), Job{Goal: common.GoalMuscleGain})
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.False(t, m.GetQueueStatus().Running)
}

func TestJobPanicIsReported(t *testing.T) {
	m := NewManager(config.QueueConfig{Workers: 1, MaxSize: 2})
	defer m.Close()
	m.Start(context.Background(), func(context.Context, Job) (int, error) {
		panic("boom")
	})

	ch, err := m.Enqueue(context.Background(), Job{Goal: common.GoalWeightLoss})
	require.NoError(t, err)
	res := <-ch
	assert.ErrorContains(t, res.Error, "boom")
}

func TestCancelledJobIsSkipped(t *testing.T) {
	m := NewManager(config.QueueConfig{Workers: 1, MaxSize: 2})
	defer m.Close()

	called := false
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := m.Enqueue(ctx, Job{Goal: common.GoalWeightLoss})
	require.NoError(t, err)
	cancel()

	m.Start(context.Background(), func(context.Context, Job) (int, error) {
		called = true
		return 0, nil
	})
	res := <-ch
	assert.ErrorIs(t, res.Error, context.Canceled)
	assert.False(t, called)
}
