package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerService_EveryMinute(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	id, err := s.EveryMinute(func() {})

	assert.NoError(t, err)
	assert.NotZero(t, id)

	entry := s.cron.Entry(id)
	now := time.Date(2024, 3, 15, 8, 0, 30, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 15, 8, 1, 0, 0, time.UTC), entry.Schedule.Next(now))

	s.Start()
	s.Stop()
}
