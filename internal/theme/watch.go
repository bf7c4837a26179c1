package theme

import (
	"context"
	"time"

	"github.com/conneroisu/folio/internal/logging"
	"github.com/conneroisu/folio/internal/watcher"
)

const watchDebounce = 50 * time.Millisecond

// Watch calls onChange with the stored mode whenever the preference file
// changes on disk. Writes made through Save are reported too, so every
// watcher sees a toggle no matter which process made it. The returned stop
// function releases the watcher. The file's directory must exist.
func (s *Store) Watch(ctx context.Context, logger logging.Logger, onChange func(Mode)) (func() error, error) {
	fw, err := watcher.NewFileWatcher(watchDebounce, logger)
	if err != nil {
		return nil, err
	}

	fw.AddHandler(func([]watcher.ChangeEvent) error {
		m, err := s.Load()
		if err != nil {
			return err
		}
		onChange(m)
		return nil
	})

	if err := fw.AddFile(s.path); err != nil {
		_ = fw.Stop()
		return nil, err
	}

	fw.Start(ctx)
	return fw.Stop, nil
}
