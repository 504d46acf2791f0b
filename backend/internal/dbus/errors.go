package dbus

import (
	"fmt"
	"strings"
)

// ConnectionError is returned when the session bus cannot be reached.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	if e.Address == "" {
		return fmt.Sprintf("dbus: cannot connect to session bus: %v", e.Err)
	}
	return fmt.Sprintf("dbus: cannot connect to %s: %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ServiceUnknownError is returned when no process owns the requested bus name.
type ServiceUnknownError struct {
	Name   string
	Reason string
}

func (e *ServiceUnknownError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("dbus: service %s is not running: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("dbus: service %s is not running", e.Name)
}

// MethodError is returned when the remote object does not implement the
// requested interface or member.
type MethodError struct {
	Method string
	Reason string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("dbus: %s: %s", e.Method, e.Reason)
}

// SignatureError is returned when call arguments do not match the declared
// signature of a method. Got is empty when the remote side rejected the call.
type SignatureError struct {
	Method string
	Want   string
	Got    string
}

func (e *SignatureError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("dbus: %s rejected arguments (want %q)", e.Method, e.Want)
	}
	return fmt.Sprintf("dbus: %s expects signature %q, got %q", e.Method, e.Want, e.Got)
}

// TimeoutError is returned when a D-Bus call exceeds its deadline.
type TimeoutError struct {
	Method string
}

func (e *TimeoutError) Error() string {
	if e.Method == "" {
		return "dbus: call timed out"
	}
	return "dbus: " + e.Method + ": call timed out"
}

// SignalError is returned when a D-Bus signal body is malformed.
type SignalError struct {
	Reason string
}

func (e *SignalError) Error() string { return fmt.Sprintf("dbus: signal error: %s", e.Reason) }

// ValidationError indicates that a parameter is rejected before any call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// RemoteError wraps any other error name returned by the remote service.
type RemoteError struct {
	Method string
	Name   string
	Body   []interface{}
}

func (e *RemoteError) Error() string {
	parts := make([]string, 0, len(e.Body))
	for _, v := range e.Body {
		if s, ok := v.(string); ok {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("dbus: %s failed: %s", e.Method, e.Name)
	}
	return fmt.Sprintf("dbus: %s failed: %s: %s", e.Method, e.Name, strings.Join(parts, "; "))
}
