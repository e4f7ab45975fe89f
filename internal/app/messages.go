package app

import (
	"time"

	"github.com/kissesu/claude-token-monitor/internal/models"
	"github.com/kissesu/claude-token-monitor/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// StatsLoadedMsg contains the lifetime and today snapshots.
type StatsLoadedMsg struct {
	Lifetime *models.LifetimeStats
	Today    *models.TodayStats
	Error    error
}

// ProvidersLoadedMsg contains the provider list with today's usage.
type ProvidersLoadedMsg struct {
	Providers []models.ProviderStats
	Error     error
}

// ActivityLoadedMsg contains the daily activity window.
type ActivityLoadedMsg struct {
	Days  []models.DailyActivity
	Error error
}

// RenameProviderMsg requests renaming a provider.
type RenameProviderMsg struct {
	ProviderID  int64
	DisplayName string
}

// RenameProviderResultMsg contains the result of a provider rename.
type RenameProviderResultMsg struct {
	DisplayName string
	Success     bool
	Error       error
}

// DeleteProviderMsg requests deletion of a provider and its usage.
type DeleteProviderMsg struct {
	ProviderID int64
	Label      string
}

// DeleteProviderResultMsg contains the result of a provider deletion.
type DeleteProviderResultMsg struct {
	Label   string
	Success bool
	Error   error
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "stats", "providers", "activity"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
