// Package bustest provides an in-memory stand-in for a remote D-Bus object.
// It records every method call so tests can assert on the exact arguments a
// client sent, without a running bus daemon.
package bustest

import (
	"context"
	"sync"

	"github.com/godbus/dbus/v5"
)

// Call is one recorded method call.
type Call struct {
	Method string
	Flags  dbus.Flags
	Args   []interface{}
}

// Object records calls and answers them with canned replies.
type Object struct {
	mu      sync.Mutex
	dest    string
	path    dbus.ObjectPath
	calls   []Call
	replies map[string][]interface{}
	errs    map[string]error
	hang    map[string]bool
	owned   map[string]bool
}

func NewObject(dest, path string) *Object {
	return &Object{
		dest:    dest,
		path:    dbus.ObjectPath(path),
		replies: make(map[string][]interface{}),
		errs:    make(map[string]error),
		hang:    make(map[string]bool),
	}
}

// NewBus returns a fake org.freedesktop.DBus object reporting whether each of
// names has an owner.
func NewBus(owned map[string]bool) *Object {
	o := NewObject("org.freedesktop.DBus", "/org/freedesktop/DBus")
	o.owned = owned
	return o
}

// Reply sets the body returned for method (fully qualified).
func (o *Object) Reply(method string, body ...interface{}) *Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.replies[method] = body
	return o
}

// Fail makes method return err.
func (o *Object) Fail(method string, err error) *Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs[method] = err
	return o
}

// Hang makes method block until the call context is done.
func (o *Object) Hang(method string) *Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hang[method] = true
	return o
}

// Calls returns a copy of every recorded call in order.
func (o *Object) Calls() []Call {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Call, len(o.calls))
	copy(out, o.calls)
	return out
}

// CallsTo returns the recorded calls to method.
func (o *Object) CallsTo(method string) []Call {
	var out []Call
	for _, c := range o.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (o *Object) CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	o.mu.Lock()
	o.calls = append(o.calls, Call{Method: method, Flags: flags, Args: args})
	body, err, hang := o.replies[method], o.errs[method], o.hang[method]
	if o.owned != nil && method == "org.freedesktop.DBus.NameHasOwner" && len(args) == 1 {
		name, _ := args[0].(string)
		body = []interface{}{o.owned[name]}
	}
	o.mu.Unlock()

	call := &dbus.Call{
		Destination: o.dest,
		Path:        o.path,
		Method:      method,
		Args:        args,
		Done:        make(chan *dbus.Call, 1),
	}
	switch {
	case hang:
		<-ctx.Done()
		call.Err = ctx.Err()
	case ctx.Err() != nil:
		call.Err = ctx.Err()
	case err != nil:
		call.Err = err
	default:
		call.Body = body
	}
	call.Done <- call
	return call
}

func (o *Object) Destination() string { return o.dest }

func (o *Object) Path() dbus.ObjectPath { return o.path }

// Error builds the error a remote service returns for name.
func Error(name string, body ...interface{}) error {
	return dbus.NewError(name, body)
}
