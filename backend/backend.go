package backend

import (
	"context"
	"errors"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/expidus/lunar-remote/backend/fdo"
	"github.com/expidus/lunar-remote/backend/filemanager"
	idbus "github.com/expidus/lunar-remote/backend/internal/dbus"
	"github.com/expidus/lunar-remote/backend/lunar"
	"github.com/expidus/lunar-remote/backend/remote"
	"github.com/expidus/lunar-remote/backend/trash"
	"github.com/expidus/lunar-remote/config"
	"github.com/expidus/lunar-remote/events"
	"github.com/expidus/lunar-remote/logger"
)

// ErrNoSignals is returned by WatchTrash when the backend has no bus
// connection to receive signals from.
var ErrNoSignals = errors.New("backend: no signal source")

type Backend struct {
	FileManager *filemanager.Client
	Lunar       *lunar.Client
	Trash       *trash.Client
	FDO         *fdo.Client

	ctx     context.Context
	conn    *dbus.Conn
	bus     remote.Caller
	signals trash.SignalSource
	address string

	mu       sync.Mutex
	listener *trash.Listener
	closed   bool
}

// Options maps the bus configuration onto client options. bus is only used
// when cfg.RequireRunning is set.
func Options(cfg *config.BusConfig, bus remote.Caller) remote.Options {
	opts := remote.Options{
		Display:        cfg.Display,
		StartupID:      cfg.StartupID,
		Timeout:        cfg.Timeout,
		NoAutoStart:    !cfg.AutoStart,
		RequireRunning: cfg.RequireRunning,
		Verify:         cfg.Verify,
		IntrospectTTL:  cfg.IntrospectTTL,
	}
	if cfg.RequireRunning {
		opts.Bus = bus
	}
	return opts
}

func connect(address string) (*dbus.Conn, error) {
	var (
		conn *dbus.Conn
		err  error
	)
	if address == "" {
		conn, err = dbus.ConnectSessionBus()
	} else {
		conn, err = dbus.Connect(address)
	}
	if err != nil {
		return nil, &remote.ConnectionError{Address: address, Err: err}
	}
	return conn, nil
}

// New connects to the bus once and builds every client on that connection.
func New(ctx context.Context, cfg *config.BusConfig) (*Backend, error) {
	conn, err := connect(cfg.Address)
	if err != nil {
		return nil, err
	}

	objectFor := func(name, path string) remote.Caller {
		return idbus.GetObject(conn, name, path)
	}
	b := build(ctx, cfg, objectFor, conn.BusObject(), conn)
	b.conn = conn
	logger.Debug("[backend] connected to %s", b.describeBus())
	return b, nil
}

func build(
	ctx context.Context,
	cfg *config.BusConfig,
	objectFor func(name, path string) remote.Caller,
	bus remote.Caller,
	signals trash.SignalSource,
) *Backend {
	opts := Options(cfg, bus)
	return &Backend{
		FileManager: filemanager.New(objectFor(filemanager.FILEMANAGER_NAME, filemanager.FILEMANAGER_PATH), opts),
		Lunar:       lunar.New(objectFor(lunar.LUNAR_NAME, lunar.LUNAR_PATH), opts),
		Trash:       trash.New(objectFor(trash.TRASH_NAME, trash.TRASH_PATH), opts),
		FDO:         fdo.New(objectFor(fdo.FDO_NAME, fdo.FDO_PATH), opts),

		ctx:     ctx,
		bus:     bus,
		signals: signals,
		address: cfg.Address,
	}
}

// Conn returns the underlying bus connection, nil for backends not built by New.
func (b *Backend) Conn() *dbus.Conn {
	return b.conn
}

func (b *Backend) describeBus() string {
	if b.address == "" {
		return "session bus"
	}
	return b.address
}

// WatchTrash starts the TrashChanged listener on first use and returns its
// event channel. The current trash state is queried once so that a first
// signal repeating it is not reported.
func (b *Backend) WatchTrash() (<-chan events.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.signals == nil || b.closed {
		return nil, ErrNoSignals
	}
	if b.listener != nil {
		return b.listener.Events(), nil
	}

	l := trash.NewListener(b.ctx, b.signals)
	if b.Trash != nil {
		if full, err := b.Trash.QueryTrash(b.ctx); err == nil {
			l.Prime(full)
		} else {
			logger.Debug("[backend] initial trash query failed: %v", err)
		}
	}
	if err := l.Start(); err != nil {
		return nil, &remote.SignalError{Reason: err.Error()}
	}
	b.listener = l
	return l.Events(), nil
}

// NewBroadcaster fans trash events out to any number of subscribers. Without
// a signal source the broadcaster only lives until ctx is done.
func (b *Backend) NewBroadcaster(ctx context.Context) *Broadcaster {
	upstream, err := b.WatchTrash()
	if err != nil {
		logger.Warn("[backend] trash events unavailable: %v", err)
	}
	return NewBroadcaster(ctx, upstream)
}

// Close stops the listener and closes the bus connection. It is safe to call
// more than once.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true

	if b.listener != nil {
		b.listener.Close()
	}
	if b.conn != nil {
		if err := b.conn.Close(); err != nil {
			logger.Debug("[backend] failed to close bus connection: %v", err)
		}
	}
}
