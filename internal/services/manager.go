// Package services provides service orchestration for the TUI.
package services

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/kissesu/claude-token-monitor/internal/config"
	"github.com/kissesu/claude-token-monitor/internal/db"
	"github.com/kissesu/claude-token-monitor/internal/ingest"
	"github.com/kissesu/claude-token-monitor/internal/logger"
	"github.com/kissesu/claude-token-monitor/internal/models"
)

type (
	// ProviderChangedEvent is emitted when the active provider switches.
	ProviderChangedEvent struct {
		Provider *models.Provider
	}

	// StatsChangedEvent is emitted after new usage has been recorded.
	StatsChangedEvent struct {
		Recorded int
	}

	// FilesChangedEvent is emitted when watched files were processed.
	FilesChangedEvent struct {
		Files []string
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (ProviderChangedEvent) isServiceEvent() {}
func (StatsChangedEvent) isServiceEvent()    {}
func (FilesChangedEvent) isServiceEvent()    {}
func (ErrorEvent) isServiceEvent()           {}

// Manager owns the store and the scanner and routes their events to
// subscribers. It is also the synchronous command surface for the TUI.
type Manager struct {
	mu          sync.RWMutex
	database    *db.DB
	scanner     *ingest.Scanner
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	notify      bool
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
		notify:    true,
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.scanner, err = ingest.New(m.database, cfg.ClaudeDir, cfg.WatchDebounce)
	if err != nil {
		_ = m.database.Close()
		return nil, fmt.Errorf("failed to start scanner: %w", err)
	}

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from the scanner to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.scanner.Events():
			m.handleScannerEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleScannerEvent converts and broadcasts scanner events.
func (m *Manager) handleScannerEvent(event ingest.Event) {
	switch event.Type {
	case ingest.EventProviderChanged:
		if event.Provider != nil {
			if err := m.database.LogProviderSwitch(event.Provider.ID); err != nil {
				logger.Error("failed to log provider switch", "error", err)
			}
			m.mu.RLock()
			notify := m.notify
			m.mu.RUnlock()
			if notify {
				title := "Provider Switched"
				body := fmt.Sprintf("Now tracking %s", event.Provider.Label())
				_ = beeep.Notify(title, body, "")
			}
		}
		m.broadcast(ProviderChangedEvent{Provider: event.Provider})

	case ingest.EventStatsChanged:
		m.broadcast(StatsChangedEvent{Recorded: event.Recorded})

	case ingest.EventFilesChanged:
		m.broadcast(FilesChangedEvent{Files: event.Files})

	case ingest.EventError:
		m.broadcast(ErrorEvent{
			Service: "scanner",
			Error:   event.Error,
		})
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// SetNotifications enables or disables desktop notifications.
func (m *Manager) SetNotifications(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify = enabled
}

// LifetimeStats returns the all-time usage snapshot.
func (m *Manager) LifetimeStats() (*models.LifetimeStats, error) {
	return m.database.LifetimeStats()
}

// TodayStats returns today's aggregate across all providers.
func (m *Manager) TodayStats() (*models.TodayStats, error) {
	return m.database.TodayStats()
}

// TodayProviderStats returns every provider with its usage for today.
func (m *Manager) TodayProviderStats() ([]models.ProviderStats, error) {
	return m.database.TodayProviderStats()
}

// DailyActivity returns per-day usage for the trailing window, today
// inclusive. Days without activity are omitted.
func (m *Manager) DailyActivity(days int) ([]models.DailyActivity, error) {
	if days < 1 {
		days = 1
	}
	end := time.Now()
	start := end.AddDate(0, 0, -(days - 1))
	return m.database.DailyActivity(start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// ListProviders returns all known providers, most recently seen first.
func (m *Manager) ListProviders() ([]models.Provider, error) {
	return m.database.ListProviders(false)
}

// ActiveProvider returns the provider currently in use, or nil.
func (m *Manager) ActiveProvider() (*models.Provider, error) {
	return m.database.ActiveProvider()
}

// AddProvider registers a credential by hand without activating it.
func (m *Manager) AddProvider(apiKey, displayName string) (*models.Provider, error) {
	provider, err := m.database.CreateProvider(apiKey, displayName)
	if err != nil {
		return nil, err
	}
	m.broadcast(StatsChangedEvent{})
	return provider, nil
}

// RenameProvider sets a provider's display name.
func (m *Manager) RenameProvider(providerID int64, displayName string) error {
	if err := m.database.RenameProvider(providerID, displayName); err != nil {
		return err
	}
	m.broadcast(StatsChangedEvent{})
	return nil
}

// DeleteProvider removes a provider and all usage recorded under it.
func (m *Manager) DeleteProvider(providerID int64) error {
	if err := m.database.DeleteProvider(providerID); err != nil {
		return err
	}
	m.broadcast(StatsChangedEvent{})
	return nil
}

// RecentSwitches returns the latest provider switch log entries.
func (m *Manager) RecentSwitches(limit int) ([]models.ProviderSwitch, error) {
	return m.database.RecentSwitches(limit)
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.scanner.Close(); err != nil {
		errs = append(errs, err)
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
