// Package remote holds what every file manager interface client shares: the
// object abstraction, call options and the typed errors of a remote call.
package remote

import (
	"time"

	idbus "github.com/expidus/lunar-remote/backend/internal/dbus"
)

// Caller is the remote object a client talks to. *dbus.Conn.Object values
// satisfy it.
type Caller = idbus.Caller

type (
	ConnectionError     = idbus.ConnectionError
	ServiceUnknownError = idbus.ServiceUnknownError
	MethodError         = idbus.MethodError
	SignatureError      = idbus.SignatureError
	TimeoutError        = idbus.TimeoutError
	SignalError         = idbus.SignalError
	ValidationError     = idbus.ValidationError
	RemoteError         = idbus.RemoteError
)

// Options configure a client. The zero value sends empty display and
// startup-id strings, lets the bus activate the service and uses the default
// reply timeout.
type Options struct {
	// Display is the X11/Wayland display name the window opens on.
	Display string
	// StartupID is the startup notification id handed to the window.
	StartupID string

	Timeout     time.Duration
	NoAutoStart bool
	// RequireRunning refuses to call a service whose name has no owner.
	// Bus must be set for it to take effect.
	RequireRunning bool
	Bus            Caller
	// Verify introspects the remote object before each call and checks the
	// method signature. Results are cached for IntrospectTTL (0: forever).
	Verify        bool
	IntrospectTTL time.Duration
}

// NewInvoker binds obj to iface with the call options of o.
func (o Options) NewInvoker(obj Caller, iface idbus.Interface) *idbus.Invoker {
	opts := idbus.Options{
		Timeout:        o.Timeout,
		NoAutoStart:    o.NoAutoStart,
		RequireRunning: o.RequireRunning,
		Bus:            o.Bus,
	}
	if o.Verify {
		opts.Introspector = idbus.NewIntrospector(o.IntrospectTTL)
	}
	return idbus.NewInvoker(obj, iface, opts)
}

// NonEmpty rejects an empty list before anything is sent.
func NonEmpty(field string, values []string) error {
	if len(values) == 0 {
		return &ValidationError{Field: field, Message: "must not be empty"}
	}
	return nil
}
