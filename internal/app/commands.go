package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kissesu/claude-token-monitor/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// ActivityWindowDays is the trailing window shown on the activity tab.
	ActivityWindowDays = 30
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadInitialData returns a command that loads all initial data.
func loadInitialData(mgr *services.Manager) tea.Cmd {
	return tea.Batch(
		loadStatsCmd(mgr),
		loadProvidersCmd(mgr),
		loadActivityCmd(mgr),
	)
}

// loadStatsCmd returns a command that loads the lifetime and today snapshots.
func loadStatsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		lifetime, err := mgr.LifetimeStats()
		if err != nil {
			return StatsLoadedMsg{Error: err}
		}
		today, err := mgr.TodayStats()
		if err != nil {
			return StatsLoadedMsg{Error: err}
		}
		return StatsLoadedMsg{Lifetime: lifetime, Today: today}
	}
}

// loadProvidersCmd returns a command that loads providers with today's usage.
func loadProvidersCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		providers, err := mgr.TodayProviderStats()
		return ProvidersLoadedMsg{Providers: providers, Error: err}
	}
}

// loadActivityCmd returns a command that loads the daily activity window.
func loadActivityCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		days, err := mgr.DailyActivity(ActivityWindowDays)
		return ActivityLoadedMsg{Days: days, Error: err}
	}
}

// renameProviderCmd returns a command that renames a provider.
func renameProviderCmd(mgr *services.Manager, providerID int64, displayName string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.RenameProvider(providerID, displayName)
		return RenameProviderResultMsg{
			DisplayName: displayName,
			Success:     err == nil,
			Error:       err,
		}
	}
}

// deleteProviderCmd returns a command that deletes a provider and its usage.
func deleteProviderCmd(mgr *services.Manager, providerID int64, label string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.DeleteProvider(providerID)
		return DeleteProviderResultMsg{
			Label:   label,
			Success: err == nil,
			Error:   err,
		}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// delayedCmd returns a command that sends a message after a delay.
func delayedCmd(delay time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return msg
	})
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// LoadInitialData returns a command that loads all initial data.
func (c *Commands) LoadInitialData() tea.Cmd {
	return loadInitialData(c.manager)
}

// LoadStats returns a command that loads the usage snapshots.
func (c *Commands) LoadStats() tea.Cmd {
	return loadStatsCmd(c.manager)
}

// LoadProviders returns a command that loads the provider list.
func (c *Commands) LoadProviders() tea.Cmd {
	return loadProvidersCmd(c.manager)
}

// LoadActivity returns a command that loads the daily activity window.
func (c *Commands) LoadActivity() tea.Cmd {
	return loadActivityCmd(c.manager)
}

// RenameProvider returns a command that renames a provider.
func (c *Commands) RenameProvider(providerID int64, displayName string) tea.Cmd {
	return renameProviderCmd(c.manager, providerID, displayName)
}

// DeleteProvider returns a command that deletes a provider.
func (c *Commands) DeleteProvider(providerID int64, label string) tea.Cmd {
	return deleteProviderCmd(c.manager, providerID, label)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// Delayed returns a command that sends a message after a delay.
func (c *Commands) Delayed(delay time.Duration, msg tea.Msg) tea.Cmd {
	return delayedCmd(delay, msg)
}
