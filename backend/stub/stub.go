// Package stub exports recording implementations of the file manager
// interfaces on a bus. It stands in for the real file manager when testing
// clients and desktop integration.
package stub

import (
	"context"
	"fmt"
	"sync"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/expidus/lunar-remote/backend/fdo"
	"github.com/expidus/lunar-remote/backend/filemanager"
	"github.com/expidus/lunar-remote/backend/lunar"
	"github.com/expidus/lunar-remote/backend/trash"
	"github.com/expidus/lunar-remote/config"
	"github.com/expidus/lunar-remote/events"
	"github.com/expidus/lunar-remote/logger"
)

// Bus is the part of *dbus.Conn the stub needs.
type Bus interface {
	Export(v interface{}, path dbus.ObjectPath, iface string) error
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)
	ReleaseName(name string) (dbus.ReleaseNameReply, error)
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

// Names are the well-known names the stub claims.
var Names = []string{
	filemanager.FILEMANAGER_NAME,
	lunar.LUNAR_NAME,
	fdo.FDO_NAME,
}

// NameTakenError is returned by Start when another process owns one of Names.
type NameTakenError struct {
	Name  string
	Reply dbus.RequestNameReply
}

func (e *NameTakenError) Error() string {
	return fmt.Sprintf("stub: bus name %s is not available (reply %d)", e.Name, e.Reply)
}

type Stub struct {
	bus    Bus
	cfg    *config.StubConfig
	ctx    context.Context
	cancel context.CancelFunc

	fileManager *fileManager
	application *application
	trashBin    *trashBin
	freedesktop *freedesktop

	eventsC chan events.Event

	mu        sync.Mutex
	calls     []events.Invocation
	owned     []string
	trashFull bool
	closeOnce sync.Once
}

func New(ctx context.Context, bus Bus, cfg *config.StubConfig) *Stub {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stub{
		bus:     bus,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		eventsC: make(chan events.Event, 32),
	}
	s.fileManager = &fileManager{s}
	s.application = &application{s}
	s.trashBin = &trashBin{s}
	s.freedesktop = &freedesktop{s}
	return s
}

// Start exports every object, claims Names, starts watching the trash
// directory and reports readiness to systemd when run as a notify service.
func (s *Stub) Start() error {
	if err := s.export(); err != nil {
		return err
	}
	if err := s.requestNames(); err != nil {
		s.releaseNames()
		return err
	}

	if s.cfg != nil && s.cfg.TrashDir != "" {
		s.setTrashFull(trashHasEntries(s.cfg.TrashDir))
		if err := s.watchTrash(s.cfg.TrashDir); err != nil {
			logger.Warn("[stub] trash directory not watched: %v", err)
		}
	}

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logger.Warn("[stub] sd_notify failed: %v", err)
	} else if sent {
		logger.Debug("[stub] readiness sent to systemd")
	}

	logger.Info("[stub] serving %v", Names)
	return nil
}

func (s *Stub) export() error {
	exports := []struct {
		v     interface{}
		path  string
		iface string
	}{
		{s.fileManager, filemanager.FILEMANAGER_PATH, filemanager.FILEMANAGER_INTERFACE},
		{s.application, lunar.LUNAR_PATH, lunar.LUNAR_INTERFACE},
		{s.trashBin, trash.TRASH_PATH, trash.TRASH_INTERFACE},
		{s.freedesktop, fdo.FDO_PATH, fdo.FDO_INTERFACE},
	}
	for _, e := range exports {
		if err := s.bus.Export(e.v, dbus.ObjectPath(e.path), e.iface); err != nil {
			return fmt.Errorf("export %s on %s: %w", e.iface, e.path, err)
		}
	}

	for path, node := range s.introspection() {
		if err := s.bus.Export(introspect.NewIntrospectable(node), path, "org.freedesktop.DBus.Introspectable"); err != nil {
			return fmt.Errorf("export introspection on %s: %w", path, err)
		}
	}
	return nil
}

// introspection describes the exported objects per path.
func (s *Stub) introspection() map[dbus.ObjectPath]*introspect.Node {
	fmPath := dbus.ObjectPath(filemanager.FILEMANAGER_PATH)
	fdoPath := dbus.ObjectPath(fdo.FDO_PATH)
	return map[dbus.ObjectPath]*introspect.Node{
		fmPath: {
			Name: string(fmPath),
			Interfaces: []introspect.Interface{
				introspect.IntrospectData,
				{Name: filemanager.FILEMANAGER_INTERFACE, Methods: introspect.Methods(s.fileManager)},
				{Name: lunar.LUNAR_INTERFACE, Methods: introspect.Methods(s.application)},
				{
					Name:    trash.TRASH_INTERFACE,
					Methods: introspect.Methods(s.trashBin),
					Signals: []introspect.Signal{{
						Name: trash.SIGNAL_TRASH_CHANGED,
						Args: []introspect.Arg{{Name: "full", Type: "b"}},
					}},
				},
			},
		},
		fdoPath: {
			Name: string(fdoPath),
			Interfaces: []introspect.Interface{
				introspect.IntrospectData,
				{Name: fdo.FDO_INTERFACE, Methods: introspect.Methods(s.freedesktop)},
			},
		},
	}
}

func (s *Stub) requestNames() error {
	for _, name := range Names {
		reply, err := s.bus.RequestName(name, dbus.NameFlagDoNotQueue)
		if err != nil {
			return fmt.Errorf("request name %s: %w", name, err)
		}
		if reply != dbus.RequestNameReplyPrimaryOwner {
			return &NameTakenError{Name: name, Reply: reply}
		}
		s.mu.Lock()
		s.owned = append(s.owned, name)
		s.mu.Unlock()
	}
	return nil
}

func (s *Stub) releaseNames() {
	s.mu.Lock()
	owned := s.owned
	s.owned = nil
	s.mu.Unlock()

	for _, name := range owned {
		if _, err := s.bus.ReleaseName(name); err != nil {
			logger.Debug("[stub] failed to release %s: %v", name, err)
		}
	}
}

// Done is closed once the stub stops, either by Close or by a Terminate call.
func (s *Stub) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Events delivers an events.TypeInvoked event per received call and an
// events.TypeTrashChanged event per trash state transition.
func (s *Stub) Events() <-chan events.Event {
	return s.eventsC
}

// Invocations returns the calls received so far, oldest first.
func (s *Stub) Invocations() []events.Invocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.Invocation, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Stub) TrashFull() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trashFull
}

// Close releases the bus names and stops the trash watcher. Safe to call
// more than once.
func (s *Stub) Close() {
	s.closeOnce.Do(func() {
		s.releaseNames()
		s.cancel()
		logger.Info("[stub] stopped")
	})
}

func (s *Stub) record(iface, method string, args ...interface{}) *dbus.Error {
	if s.ctx.Err() != nil {
		return dbus.MakeFailedError(fmt.Errorf("stub is shutting down"))
	}
	inv := events.Invocation{Interface: iface, Method: method, Args: args}

	s.mu.Lock()
	s.calls = append(s.calls, inv)
	s.mu.Unlock()

	logger.Info("[stub] %s.%s%v", iface, method, args)
	s.notify(events.Event{Type: events.TypeInvoked, Data: inv})
	return nil
}

// setTrashFull stores the trash state and reports whether it changed.
func (s *Stub) setTrashFull(full bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.trashFull != full
	s.trashFull = full
	return changed
}

func (s *Stub) notify(e events.Event) {
	select {
	case s.eventsC <- e:
	default:
		logger.Debug("[stub] event channel full, dropping %s event", e.Type)
	}
}
