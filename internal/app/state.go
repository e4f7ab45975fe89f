// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/kissesu/claude-token-monitor/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial   bool
	Stats     bool
	Providers bool
	Activity  bool
}

// State is the shared application state read by every tab.
type State struct {
	mu sync.RWMutex

	lifetime       *models.LifetimeStats
	today          *models.TodayStats
	providers      []models.ProviderStats
	activeProvider *models.Provider
	activity       []models.DailyActivity

	selectedProviderIndex int

	Loading LoadingState

	lastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty application state.
func NewState() *State {
	return &State{
		providers:     make([]models.ProviderStats, 0),
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "stats":
		s.Loading.Stats = loading
	case "providers":
		s.Loading.Providers = loading
	case "activity":
		s.Loading.Activity = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Stats ||
		s.Loading.Providers ||
		s.Loading.Activity
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// SetStats updates the lifetime and today snapshots.
func (s *State) SetStats(lifetime *models.LifetimeStats, today *models.TodayStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lifetime = lifetime
	s.today = today
	s.lastUpdated = time.Now()
}

// GetLifetimeStats returns the lifetime usage snapshot.
func (s *State) GetLifetimeStats() *models.LifetimeStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lifetime
}

// GetTodayStats returns today's aggregate snapshot.
func (s *State) GetTodayStats() *models.TodayStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.today
}

// SetProviders updates the provider list and resolves the active one.
func (s *State) SetProviders(providers []models.ProviderStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.providers = providers
	s.lastUpdated = time.Now()

	s.activeProvider = nil
	for i := range providers {
		if providers[i].Provider.IsActive {
			s.activeProvider = &providers[i].Provider
			break
		}
	}

	if s.selectedProviderIndex >= len(providers) {
		s.selectedProviderIndex = max(0, len(providers)-1)
	}
}

// GetProviders returns a copy of the provider list.
func (s *State) GetProviders() []models.ProviderStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	providers := make([]models.ProviderStats, len(s.providers))
	copy(providers, s.providers)
	return providers
}

// GetProviderCount returns the number of known providers.
func (s *State) GetProviderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.providers)
}

// GetActiveProvider returns the provider currently in use, or nil.
func (s *State) GetActiveProvider() *models.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeProvider
}

// SetActivity updates the daily activity window.
func (s *State) SetActivity(activity []models.DailyActivity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity = activity
	s.lastUpdated = time.Now()
}

// GetActivity returns a copy of the daily activity window.
func (s *State) GetActivity() []models.DailyActivity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activity := make([]models.DailyActivity, len(s.activity))
	copy(activity, s.activity)
	return activity
}

// GetSelectedProviderIndex returns the currently selected provider index.
func (s *State) GetSelectedProviderIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedProviderIndex
}

// SetSelectedProviderIndex updates the selected provider index.
func (s *State) SetSelectedProviderIndex(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedProviderIndex = idx
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  0,
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time the state was updated.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.lastUpdated)
}
