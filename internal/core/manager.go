package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"moviehouse/internal/clients/metadata"
	"moviehouse/internal/config"
	"moviehouse/internal/core/view"
	"moviehouse/internal/utils"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one browser tab's view state.
type Session struct {
	ID         string
	Controller *view.Controller
	CreatedAt  time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// Touch marks the session as active.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type Manager struct {
	config    *config.Config
	client    metadata.Client
	tmdb      *metadata.TMDBClient
	logger    *utils.Logger
	scheduler *cron.Cron
	startedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	now         func() time.Time
}

func NewManager(cfg *config.Config, logger *utils.Logger) *Manager {
	tmdb := metadata.NewTMDBClient(cfg.Metadata.TMDB.APIKey, cfg.Metadata.Language,
		metadata.WithBaseURL(cfg.Metadata.BaseURL),
		metadata.WithTimeout(config.Duration(cfg.Metadata.Timeout, 10*time.Second)),
		metadata.WithRateLimit(cfg.Metadata.RateLimit),
	)
	if cfg.Metadata.TMDB.APIKey == "" {
		logger.Error("No TMDB API key configured, every listing will fail until one is set")
	}

	m := NewManagerWithClient(cfg, tmdb, logger)
	m.tmdb = tmdb
	return m
}

// NewManagerWithClient builds a Manager around an existing metadata client.
func NewManagerWithClient(cfg *config.Config, client metadata.Client, logger *utils.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		config:      cfg,
		client:      client,
		logger:      logger,
		scheduler:   cron.New(),
		startedAt:   time.Now(),
		ctx:         ctx,
		cancel:      cancel,
		sessions:    make(map[string]*Session),
		idleTimeout: config.Duration(cfg.Sessions.IdleTimeout, 30*time.Minute),
		now:         time.Now,
	}
}

func (m *Manager) currentConfig() *config.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *Manager) viewOptions() view.Options {
	cfg := m.currentConfig()
	return view.Options{
		Debounce:       config.Duration(cfg.Search.Debounce, 500*time.Millisecond),
		MinQueryLength: cfg.Search.MinQueryLength,
		EmbedURL:       cfg.Player.EmbedURL,
		TrailerURL:     cfg.Player.TrailerURL,
		ImageURL:       cfg.Metadata.ImageURL,
		Logger:         m.logger,
	}
}

// CreateSession starts a new controller, which immediately loads the
// trending movies listing.
func (m *Manager) CreateSession() *Session {
	now := m.now()
	s := &Session{
		ID:         uuid.NewString(),
		Controller: view.NewController(m.client, m.viewOptions()),
		CreatedAt:  now,
		lastSeen:   now,
	}
	s.Controller.Start(m.ctx)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Debug("Created session", s.ID)
	return s
}

func (m *Manager) GetSession(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.Touch()
	return s, nil
}

func (m *Manager) CloseSession(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.Controller.Stop()
	m.logger.Debug("Closed session", id)
	return nil
}

func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ApplyConfig reloads the TMDB api key and language, the idle timeout, and
// the search and player settings used by sessions created afterwards. The
// metadata base URL, timeout, rate limit and sweep schedule need a restart.
func (m *Manager) ApplyConfig(cfg *config.Config) {
	m.mu.Lock()
	m.config = cfg
	m.idleTimeout = config.Duration(cfg.Sessions.IdleTimeout, 30*time.Minute)
	m.mu.Unlock()

	if m.tmdb != nil {
		m.tmdb.SetCredentials(cfg.Metadata.TMDB.APIKey, cfg.Metadata.Language)
	}
	m.logger.Info("Configuration reloaded")
}

func (m *Manager) StartScheduler() error {
	spec := m.currentConfig().Sessions.SweepInterval
	if spec == "" {
		spec = "@every 1m"
	}
	if _, err := m.scheduler.AddFunc(spec, m.sweepIdleSessions); err != nil {
		return fmt.Errorf("invalid session sweep schedule %q: %w", spec, err)
	}
	m.scheduler.Start()
	m.logger.Info("Scheduler started. Idle sessions expire after", m.IdleTimeout())
	return nil
}

func (m *Manager) Stop() {
	if m.scheduler != nil {
		<-m.scheduler.Stop().Done()
	}

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Controller.Stop()
	}
	m.cancel()
}

func (m *Manager) IdleTimeout() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idleTimeout
}

func (m *Manager) sweepIdleSessions() {
	m.mu.RLock()
	cutoff := m.now().Add(-m.idleTimeout)
	var expired []string
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		if err := m.CloseSession(id); err == nil {
			m.logger.Info("Expired idle session", id)
		}
	}
}

// PlayerEmbedURL is the base address of the video host's embed player.
func (m *Manager) PlayerEmbedURL() string {
	return m.viewOptions().EmbedURL
}

// SystemStatus reports whether the pieces the UI depends on are usable.
func (m *Manager) SystemStatus() map[string]interface{} {
	return map[string]interface{}{
		"sessions":       m.SessionCount(),
		"uptime_seconds": int(time.Since(m.startedAt).Seconds()),
		"metadata":       m.tmdb == nil || m.currentConfig().Metadata.TMDB.APIKey != "",
	}
}
