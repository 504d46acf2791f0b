package stub

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/godbus/dbus/v5"

	"github.com/expidus/lunar-remote/backend/trash"
	"github.com/expidus/lunar-remote/events"
	"github.com/expidus/lunar-remote/logger"
)

func trashHasEntries(dir string) bool {
	f, err := os.Open(dir)
	if err != nil {
		return false
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Debug("[stub] failed to close %s: %v", dir, err)
		}
	}()
	names, _ := f.Readdirnames(1)
	return len(names) > 0
}

// watchTrash emits TrashChanged whenever dir goes from empty to non-empty or
// back.
func (s *Stub) watchTrash(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Info("[stub] failed to close watcher: %v", closeErr)
		}
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	logger.Info("[stub] watching trash directory %s (fsnotify)", dir)
	go s.listenFSNotify(watcher, dir)
	return nil
}

func (s *Stub) listenFSNotify(watcher *fsnotify.Watcher, dir string) {
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Warn("[stub] failed to close watcher: %v", err)
		}
	}()

	for {
		select {
		case <-s.ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			s.dispatchFSNotify(event, dir)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error("[stub] fsnotify watcher error: %v", err)
		}
	}
}

func (s *Stub) dispatchFSNotify(event fsnotify.Event, dir string) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	logger.Debug("[stub] trash entry %s changed (%s)", filepath.Base(event.Name), event.Op)
	s.refreshTrash(trashHasEntries(dir))
}

// refreshTrash records full and signals a transition on the bus.
func (s *Stub) refreshTrash(full bool) {
	if !s.setTrashFull(full) {
		return
	}

	signal := trash.TRASH_INTERFACE + "." + trash.SIGNAL_TRASH_CHANGED
	if err := s.bus.Emit(dbus.ObjectPath(trash.TRASH_PATH), signal, full); err != nil {
		logger.Warn("[stub] failed to emit %s: %v", signal, err)
	}
	s.notify(events.Event{Type: events.TypeTrashChanged, Data: events.TrashState{Full: full}})
}
