// Package ingest watches the CLI data directory and feeds settings and
// usage-log changes into the store in debounced batches.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	"github.com/kissesu/claude-token-monitor/internal/config"
	"github.com/kissesu/claude-token-monitor/internal/db"
	"github.com/kissesu/claude-token-monitor/internal/logger"
	"github.com/kissesu/claude-token-monitor/internal/models"
	"github.com/kissesu/claude-token-monitor/internal/parser"
	"github.com/kissesu/claude-token-monitor/internal/pricing"
)

// Event represents a scanner event.
type Event struct {
	Type     EventType
	Error    error
	Provider *models.Provider
	Files    []string
	Recorded int
}

// EventType defines the type of scanner event.
type EventType int

const (
	EventProviderChanged EventType = iota
	EventStatsChanged
	EventFilesChanged
	EventError
)

// maxLineSize bounds a single usage-log line. Lines carrying full message
// payloads can be large, so this is generous.
const maxLineSize = 4 * 1024 * 1024

// Scanner tails a directory tree for settings.json and *.jsonl changes.
//
// fsnotify watches are not recursive, so every directory under the root is
// registered individually and newly created directories are added as their
// Create events arrive.
type Scanner struct {
	mu            sync.Mutex
	store         *db.DB
	root          string
	debounce      time.Duration
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	pending       map[string]struct{}
	offsets       map[string]int64
	debounceTimer *time.Timer
	lastActiveID  int64
	closeOnce     sync.Once
}

// New creates a scanner over the given data root, runs the initial scan,
// and starts watching for changes.
func New(store *db.DB, root string, debounce time.Duration) (*Scanner, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	s := &Scanner{
		store:     store,
		root:      root,
		debounce:  debounce,
		watcher:   watcher,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
		pending:   make(map[string]struct{}),
		offsets:   make(map[string]int64),
	}

	if active, err := store.ActiveProvider(); err == nil && active != nil {
		s.lastActiveID = active.ID
	}

	if err := s.InitialScan(); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	go s.watchLoop()
	return s, nil
}

// Events returns the event channel for subscribing to scanner activity.
func (s *Scanner) Events() <-chan Event {
	return s.eventChan
}

// InitialScan walks the data root once, registers every directory with the
// watcher, and processes all existing settings and usage files as one batch.
func (s *Scanner) InitialScan() error {
	var batch []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if err := s.watcher.Add(path); err != nil {
				logger.Warn("failed to watch directory", "path", path, "error", err)
			}
			return nil
		}
		if relevantFile(path) {
			batch = append(batch, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk data directory: %w", err)
	}

	s.processBatch(batch)
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Scanner) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handleFsEvent(event)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

func (s *Scanner) handleFsEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	// New directories must be registered before their contents change.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			s.addTree(event.Name)
			return
		}
	}

	if !relevantFile(event.Name) {
		return
	}

	s.mu.Lock()
	s.pending[event.Name] = struct{}{}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, s.flushPending)
	s.mu.Unlock()
}

// addTree registers a directory and everything below it, queueing any
// relevant files already inside. Files written into a brand-new directory
// can land before the watch does, so the walk picks them up.
func (s *Scanner) addTree(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := s.watcher.Add(path); err != nil {
				logger.Warn("failed to watch directory", "path", path, "error", err)
			}
			return nil
		}
		if relevantFile(path) {
			s.mu.Lock()
			s.pending[path] = struct{}{}
			if s.debounceTimer != nil {
				s.debounceTimer.Stop()
			}
			s.debounceTimer = time.AfterFunc(s.debounce, s.flushPending)
			s.mu.Unlock()
		}
		return nil
	})
}

// flushPending hands the accumulated batch to a worker goroutine.
func (s *Scanner) flushPending() {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	batch := lo.Keys(s.pending)
	s.pending = make(map[string]struct{})
	s.mu.Unlock()

	go s.processBatch(batch)
}

// processBatch processes one batch of changed files, settings first so a
// provider switch is visible before the usage that follows it. A failing
// file never stops the rest of the batch.
func (s *Scanner) processBatch(batch []string) {
	if len(batch) == 0 {
		return
	}

	settings, usage := lo.FilterReject(batch, func(path string, _ int) bool {
		return filepath.Base(path) == config.SettingsFileName
	})
	sort.Strings(settings)
	sort.Strings(usage)

	var batchProvider *models.Provider
	for _, path := range settings {
		provider, err := s.processSettingsFile(path)
		if err != nil {
			logger.Warn("failed to process settings file", "path", path, "error", err)
			continue
		}
		if provider != nil {
			batchProvider = provider
		}
	}

	if batchProvider != nil {
		s.mu.Lock()
		switched := batchProvider.ID != s.lastActiveID
		s.lastActiveID = batchProvider.ID
		s.mu.Unlock()

		if switched {
			logger.Info("active provider changed", "provider", batchProvider.Label())
			s.sendEvent(Event{Type: EventProviderChanged, Provider: batchProvider})
		}
	}

	recorded := 0
	if len(usage) > 0 {
		provider := batchProvider
		if provider == nil {
			active, err := s.store.ActiveProvider()
			if err != nil {
				s.sendEvent(Event{Type: EventError, Error: err})
				return
			}
			provider = active
		}

		if provider == nil {
			logger.Debug("no active provider, skipping usage files", "count", len(usage))
		} else {
			for _, path := range usage {
				n, err := s.processUsageFile(path, provider.ID)
				if err != nil {
					logger.Warn("failed to process usage file", "path", path, "error", err)
					continue
				}
				recorded += n
			}
		}
	}

	s.sendEvent(Event{Type: EventFilesChanged, Files: batch})
	if recorded > 0 {
		s.sendEvent(Event{Type: EventStatsChanged, Recorded: recorded})
	}
}

// processSettingsFile resolves the credential in a settings file to its
// provider row. A settings file without a credential leaves the active
// provider untouched.
func (s *Scanner) processSettingsFile(path string) (*models.Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	settings, err := parser.ParseSettings(data)
	if err != nil {
		return nil, err
	}

	provider, err := s.store.RecognizeProvider(settings.APIKey, settings.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to recognize provider: %w", err)
	}
	return provider, nil
}

// processUsageFile tails a usage log from its last known offset and records
// every parseable line. Returns the number of lines handed to the store;
// duplicates count as handled since the store absorbs them silently.
func (s *Scanner) processUsageFile(path string, providerID int64) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open usage log: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat usage log: %w", err)
	}

	s.mu.Lock()
	offset := s.offsets[path]
	s.mu.Unlock()

	// A shrunken file was rewritten; start over. Replays are safe because
	// the store deduplicates by message id.
	if info.Size() < offset {
		offset = 0
	}
	if offset > 0 {
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			return 0, fmt.Errorf("failed to seek usage log: %w", err)
		}
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	recorded := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		record, err := parser.ParseUsageLine(line)
		if err != nil {
			logger.Debug("skipping malformed usage line", "path", path, "error", err)
			continue
		}
		if record == nil {
			continue
		}

		if record.Usage.CostUSD == 0 {
			record.Usage.CostUSD = pricing.Cost(
				record.Model,
				record.Usage.InputTokens,
				record.Usage.OutputTokens,
				record.Usage.CacheReadTokens,
				record.Usage.CacheCreationTokens,
			)
		}

		if err := s.store.RecordUsage(providerID, record); err != nil {
			logger.Error("failed to record usage", "message", record.MessageID, "error", err)
			continue
		}
		recorded++
	}
	if err := scanner.Err(); err != nil {
		return recorded, fmt.Errorf("failed to read usage log: %w", err)
	}

	s.mu.Lock()
	s.offsets[path] = info.Size()
	s.mu.Unlock()

	return recorded, nil
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Scanner) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// relevantFile reports whether a path is a settings file or usage log.
func relevantFile(path string) bool {
	return filepath.Base(path) == config.SettingsFileName ||
		filepath.Ext(path) == config.UsageLogExt
}

// Close stops the watcher and the event loop.
func (s *Scanner) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
