package scheduler

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var defaultWindow = Window{StartHour: 10, EndHour: 20, Location: time.UTC}

func TestArmOneFiringPerHour(t *testing.T) {
	s := NewDailyScheduler(defaultWindow, zap.NewNop())
	day := time.Date(2026, 3, 10, 7, 30, 0, 0, time.UTC)

	s.Arm(day)
	plan := s.Arm(day)

	require.Len(t, plan, 11)
	assert.Equal(t, plan, s.Plan())

	hours := map[int]int{}
	for _, at := range plan {
		hours[at.Hour()]++
		assert.Equal(t, 2026, at.Year())
		assert.Equal(t, time.March, at.Month())
		assert.Equal(t, 10, at.Day())
		assert.GreaterOrEqual(t, at.Minute(), 0)
		assert.Less(t, at.Minute(), 60)
		assert.Zero(t, at.Second())
	}
	for hour := 10; hour <= 20; hour++ {
		assert.Equal(t, 1, hours[hour], "hour %d", hour)
	}
}

func TestArmUsesWindowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	s := NewDailyScheduler(Window{StartHour: 10, EndHour: 12, Location: loc}, zap.NewNop())

	// 23:00 UTC уже следующий день в UTC+3
	plan := s.Arm(time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC))

	require.Len(t, plan, 3)
	for _, at := range plan {
		assert.Equal(t, 11, at.Day())
		assert.Equal(t, loc, at.Location())
	}
}

func TestArmDrawsFreshMinutes(t *testing.T) {
	s := NewDailyScheduler(defaultWindow, zap.NewNop(), WithRand(rand.New(rand.NewSource(1))))
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	first := s.Arm(day)
	differs := false
	for i := 0; i < 5 && !differs; i++ {
		second := s.Arm(day)
		for j := range first {
			if !first[j].Equal(second[j]) {
				differs = true
			}
		}
	}
	assert.True(t, differs)
}

func TestNextFiring(t *testing.T) {
	s := NewDailyScheduler(defaultWindow, zap.NewNop())
	plan := s.Arm(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	at, ok := s.next(time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, plan[0], at)

	at, ok = s.next(plan[4])
	require.True(t, ok)
	assert.Equal(t, plan[5], at)

	_, ok = s.next(plan[len(plan)-1])
	assert.False(t, ok)
}

type jobFunc func(ctx context.Context) error

func (f jobFunc) Run(ctx context.Context) error { return f(ctx) }

func TestStartRunsJobsAndRearmsNextDay(t *testing.T) {
	const seed = 7
	minute := rand.New(rand.NewSource(seed)).Intn(60)

	firing := time.Date(2026, 3, 10, 12, minute, 0, 0, time.UTC)
	base := firing.Add(-20 * time.Millisecond)
	started := time.Now()
	clock := func() time.Time { return base.Add(time.Since(started)) }

	s := NewDailyScheduler(
		Window{StartHour: 12, EndHour: 12, Location: time.UTC},
		zap.NewNop(),
		WithRand(rand.New(rand.NewSource(seed))),
		WithClock(clock),
	)

	ran := make(chan struct{}, 1)
	s.AddJob(jobFunc(func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job was not run")
	}

	require.Eventually(t, func() bool {
		plan := s.Plan()
		return len(plan) == 1 && plan[0].Day() == 11
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
