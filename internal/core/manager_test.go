package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviehouse/internal/clients/metadata"
	"moviehouse/internal/config"
	"moviehouse/internal/models"
	"moviehouse/internal/utils"
)

type fakeClient struct{}

func (fakeClient) Listing(_ context.Context, mediaType models.MediaType, category models.Category) ([]models.Item, error) {
	return []models.Item{{ID: 1, Type: mediaType, Title: metadata.ListingPath(mediaType, category)}}, nil
}

func (fakeClient) Search(_ context.Context, mediaType models.MediaType, query string) ([]models.Item, error) {
	return nil, nil
}

func (fakeClient) Videos(context.Context, models.MediaType, int) ([]metadata.Video, error) {
	return nil, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("does-not-exist.yml")
	require.NoError(t, err)
	return cfg
}

func TestManagerSessionLifecycle(t *testing.T) {
	m := NewManagerWithClient(testConfig(t), fakeClient{}, utils.Discard())
	defer m.Stop()

	s := m.CreateSession()
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 1, m.SessionCount())

	got, err := m.GetSession(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.Eventually(t, func() bool {
		v := s.Controller.Snapshot()
		return !v.IsLoading && len(v.Items) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "/trending/movie/week", s.Controller.Snapshot().Items[0].Title)

	require.NoError(t, m.CloseSession(s.ID))
	assert.Zero(t, m.SessionCount())
	_, err = m.GetSession(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.CloseSession(s.ID), ErrSessionNotFound)
}

func TestManagerSweepsIdleSessions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sessions.IdleTimeout = "10m"
	m := NewManagerWithClient(cfg, fakeClient{}, utils.Discard())
	defer m.Stop()

	now := time.Now()
	m.now = func() time.Time { return now }

	idle := m.CreateSession()
	active := m.CreateSession()

	idle.mu.Lock()
	idle.lastSeen = now.Add(-11 * time.Minute)
	idle.mu.Unlock()

	m.sweepIdleSessions()

	_, err := m.GetSession(idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.GetSession(active.ID)
	assert.NoError(t, err)
}

func TestManagerSchedulerRejectsBadSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sessions.SweepInterval = "whenever"
	m := NewManagerWithClient(cfg, fakeClient{}, utils.Discard())
	defer m.Stop()

	assert.Error(t, m.StartScheduler())
}

func TestManagerApplyConfig(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	cfg := testConfig(t)
	m := NewManager(cfg, utils.Discard())
	defer m.Stop()

	assert.Equal(t, false, m.SystemStatus()["metadata"])

	next := testConfig(t)
	next.Metadata.TMDB.APIKey = "fresh"
	next.Search.Debounce = "250ms"
	m.ApplyConfig(next)

	assert.Equal(t, true, m.SystemStatus()["metadata"])
	assert.Equal(t, 250*time.Millisecond, m.viewOptions().Debounce)
}

func TestManagerApplyConfigUpdatesIdleTimeout(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sessions.IdleTimeout = "1h"
	m := NewManagerWithClient(cfg, fakeClient{}, utils.Discard())
	defer m.Stop()

	now := time.Now()
	m.now = func() time.Time { return now }

	s := m.CreateSession()
	s.mu.Lock()
	s.lastSeen = now.Add(-20 * time.Minute)
	s.mu.Unlock()

	m.sweepIdleSessions()
	assert.Equal(t, 1, m.SessionCount())

	next := testConfig(t)
	next.Sessions.IdleTimeout = "15m"
	m.ApplyConfig(next)
	assert.Equal(t, 15*time.Minute, m.IdleTimeout())

	m.sweepIdleSessions()
	assert.Zero(t, m.SessionCount())
}
