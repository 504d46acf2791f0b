package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Method describes one member of a remote interface by its input signature.
type Method struct {
	Name      string
	Signature string
}

// Interface is a named method table.
type Interface struct {
	Name    string
	Methods []Method
}

// Lookup returns the method called member.
func (i Interface) Lookup(member string) (Method, bool) {
	for _, m := range i.Methods {
		if m.Name == member {
			return m, true
		}
	}
	return Method{}, false
}

// Member returns the fully qualified method name used on the wire.
func (i Interface) Member(member string) string {
	return i.Name + "." + member
}

// SignatureOf returns the D-Bus signature of args. Values godbus cannot
// encode produce an error instead of a panic.
func SignatureOf(args ...interface{}) (sig string, err error) {
	for i, a := range args {
		if a == nil {
			return "", fmt.Errorf("argument %d is nil", i)
		}
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unsupported argument type: %v", r)
		}
	}()
	return dbus.SignatureOf(args...).String(), nil
}

// CheckArgs verifies that args match the declared signature of m exactly.
func CheckArgs(iface Interface, m Method, args ...interface{}) error {
	got, err := SignatureOf(args...)
	if err != nil {
		return &SignatureError{Method: iface.Member(m.Name), Want: m.Signature, Got: err.Error()}
	}
	if got != m.Signature {
		if got == "" {
			got = "()"
		}
		return &SignatureError{Method: iface.Member(m.Name), Want: m.Signature, Got: got}
	}
	return nil
}
