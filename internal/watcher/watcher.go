// Package watcher reports debounced changes to individual files such as
// the theme preference and the project catalog.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/folio/internal/logging"
)

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type EventType
	Path string
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// ChangeHandler handles file change events
type ChangeHandler func(events []ChangeEvent) error

// FileWatcher watches a set of files. Parent directories are watched so
// that files replaced by rename keep being observed.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	delay    time.Duration
	logger   logging.Logger
	files    map[string]struct{}
	handlers []ChangeHandler

	mutex   sync.Mutex
	timer   *time.Timer
	pending map[string]ChangeEvent
	stopped bool
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounceDelay time.Duration, logger logging.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &FileWatcher{
		watcher: w,
		delay:   debounceDelay,
		logger:  logger.WithComponent("watcher"),
		files:   make(map[string]struct{}),
		pending: make(map[string]ChangeEvent),
	}, nil
}

// AddHandler adds a change handler. Handlers must be added before Start.
func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// AddFile starts observing path. The file may not exist yet but its
// directory must.
func (fw *FileWatcher) AddFile(path string) error {
	clean := filepath.Clean(path)
	fw.mutex.Lock()
	fw.files[clean] = struct{}{}
	fw.mutex.Unlock()
	return fw.watcher.Add(filepath.Dir(clean))
}

// Start runs the event loop until ctx is done or Stop is called.
func (fw *FileWatcher) Start(ctx context.Context) {
	go fw.watchLoop(ctx)
}

// Stop stops the file watcher and cleans up resources
func (fw *FileWatcher) Stop() error {
	fw.mutex.Lock()
	fw.stopped = true
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mutex.Unlock()
	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsnotifyEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn(ctx, err, "File watcher error")
		}
	}
}

func (fw *FileWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	name := filepath.Clean(event.Name)

	fw.mutex.Lock()
	defer fw.mutex.Unlock()

	if _, ok := fw.files[name]; !ok || fw.stopped {
		return
	}

	var eventType EventType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventTypeCreated
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventTypeModified
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = EventTypeDeleted
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventTypeRenamed
	default:
		return
	}

	fw.pending[name] = ChangeEvent{Type: eventType, Path: name}

	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.delay, fw.flush)
}

func (fw *FileWatcher) flush() {
	fw.mutex.Lock()
	if len(fw.pending) == 0 || fw.stopped {
		fw.mutex.Unlock()
		return
	}
	events := make([]ChangeEvent, 0, len(fw.pending))
	for _, e := range fw.pending {
		events = append(events, e)
	}
	fw.pending = make(map[string]ChangeEvent)
	handlers := fw.handlers
	fw.mutex.Unlock()

	for _, handler := range handlers {
		if err := handler(events); err != nil {
			fw.logger.Warn(context.Background(), err, "File watcher handler error")
		}
	}
}
