package dbus

import (
	"context"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/expidus/lunar-remote/logger"
)

// Options tune how an Invoker reaches the remote object.
type Options struct {
	// Timeout bounds each call. Zero means DefaultTimeout.
	Timeout time.Duration
	// NoAutoStart forbids the bus daemon from activating the service.
	NoAutoStart bool
	// RequireRunning refuses to call when the bus name has no owner.
	// Bus must be set for the check to run.
	RequireRunning bool
	Bus            Caller
	// Introspector, when set, verifies interface and member before calling.
	Introspector *Introspector
}

// Invoker calls the members of one interface on one remote object.
type Invoker struct {
	obj   Caller
	iface Interface
	opts  Options
}

func NewInvoker(obj Caller, iface Interface, opts Options) *Invoker {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Invoker{obj: obj, iface: iface, opts: opts}
}

// Invoke checks args against the declared signature of member and sends
// exactly one method call. Nothing is sent when a local check fails.
func (inv *Invoker) Invoke(ctx context.Context, member string, args ...interface{}) (*dbus.Call, error) {
	method := inv.iface.Member(member)
	m, ok := inv.iface.Lookup(member)
	if !ok {
		return nil, &MethodError{Method: method, Reason: "not part of " + inv.iface.Name}
	}
	if err := CheckArgs(inv.iface, m, args...); err != nil {
		return nil, err
	}

	if inv.opts.RequireRunning && inv.opts.Bus != nil {
		has, err := NameHasOwner(ctx, inv.opts.Bus, inv.obj.Destination())
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, &ServiceUnknownError{Name: inv.obj.Destination(), Reason: "name has no owner"}
		}
	}

	if inv.opts.Introspector != nil {
		if err := inv.opts.Introspector.Verify(ctx, inv.obj, inv.iface, m); err != nil {
			return nil, err
		}
	}

	var flags dbus.Flags
	if inv.opts.NoAutoStart {
		flags |= dbus.FlagNoAutoStart
	}

	logger.Debug("[dbus] calling %s on %s %s", method, inv.obj.Destination(), inv.obj.Path())
	call, err := CallWithContext(ctx, inv.obj, inv.opts.Timeout, flags, method, args...)
	if err != nil {
		logger.Debug("[dbus] %s failed: %v", method, err)
		return nil, err
	}
	return call, nil
}
