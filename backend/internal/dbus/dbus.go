package dbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

// DefaultTimeout matches the reply timeout libdbus applies when none is given.
var DefaultTimeout = 25 * time.Second

// Caller is the part of dbus.BusObject the clients rely on.
type Caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
	Destination() string
	Path() dbus.ObjectPath
}

// GetObject returns a D-Bus object for the given service and object path.
func GetObject(conn *dbus.Conn, service, path string) dbus.BusObject {
	return conn.Object(service, dbus.ObjectPath(path))
}

// CallWithContext runs a method call bounded by timeout (no bound if <= 0)
// and classifies the error it returns.
func CallWithContext(ctx context.Context, obj Caller, timeout time.Duration, flags dbus.Flags, method string, args ...interface{}) (*dbus.Call, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	call := obj.CallWithContext(ctx, method, flags, args...)
	if call == nil {
		return nil, &RemoteError{Method: method, Name: "no call returned"}
	}
	if call.Err != nil {
		return nil, Classify(obj.Destination(), method, call.Err)
	}
	return call, nil
}

// NameHasOwner asks the bus daemon whether name currently has an owner.
// Activatable services that are not running report false.
func NameHasOwner(ctx context.Context, bus Caller, name string) (bool, error) {
	var has bool
	call, err := CallWithContext(ctx, bus, DefaultTimeout, 0, BUS_NAME_HAS_OWNER, name)
	if err != nil {
		return false, err
	}
	if err := call.Store(&has); err != nil {
		return false, err
	}
	return has, nil
}

// Classify maps an error returned by a method call on destination onto the
// typed errors of this package.
func Classify(destination, method string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Method: method}
	}

	var name string
	var body []interface{}
	var perr *dbus.Error
	var verr dbus.Error
	switch {
	case errors.As(err, &perr) && perr != nil:
		name, body = perr.Name, perr.Body
	case errors.As(err, &verr):
		name, body = verr.Name, verr.Body
	default:
		return fmt.Errorf("%s: %w", method, err)
	}

	switch name {
	case ERR_SERVICE_UNKNOWN, ERR_NAME_HAS_NO_OWNER, ERR_SPAWN_EXEC_FAILED, ERR_SPAWN_CHILD_EXITED:
		return &ServiceUnknownError{Name: destination, Reason: bodyString(body)}
	case ERR_UNKNOWN_METHOD:
		return &MethodError{Method: method, Reason: "unknown method"}
	case ERR_UNKNOWN_INTERFACE:
		return &MethodError{Method: method, Reason: "unknown interface"}
	case ERR_UNKNOWN_OBJECT:
		return &MethodError{Method: method, Reason: "unknown object"}
	case ERR_INVALID_ARGS, ERR_INVALID_SIGNATURE:
		return &SignatureError{Method: method}
	case ERR_NO_REPLY, ERR_TIMEOUT:
		return &TimeoutError{Method: method}
	}
	return &RemoteError{Method: method, Name: name, Body: body}
}

func bodyString(body []interface{}) string {
	if len(body) == 0 {
		return ""
	}
	s, _ := body[0].(string)
	return s
}

// FilterSignal checks that sig is a live signal with the expected name and
// at least minArgs body values.
func FilterSignal(sig *dbus.Signal, name string, minArgs int) ([]interface{}, error) {
	if sig == nil {
		return nil, &SignalError{Reason: "channel closed"}
	}
	if sig.Name != name {
		return nil, &SignalError{Reason: "unexpected signal " + sig.Name}
	}
	if len(sig.Body) < minArgs {
		return nil, &SignalError{Reason: "body too short"}
	}
	return sig.Body, nil
}

// ExtractBool extracts a bool from a signal body value or a dbus.Variant.
func ExtractBool(v interface{}) (bool, bool) {
	if variant, ok := v.(dbus.Variant); ok {
		v = variant.Value()
	}
	val, ok := v.(bool)
	return val, ok
}
