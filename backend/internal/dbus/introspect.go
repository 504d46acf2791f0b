package dbus

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/godbus/dbus/v5/introspect"

	"github.com/expidus/lunar-remote/cache"
	"github.com/expidus/lunar-remote/logger"
)

// Introspector fetches and caches introspection data per (destination, path).
type Introspector struct {
	cache *cache.Cache[*introspect.Node]
}

func NewIntrospector(ttl time.Duration) *Introspector {
	return &Introspector{cache: cache.New[*introspect.Node](ttl)}
}

// Node returns the parsed introspection document of obj.
func (i *Introspector) Node(ctx context.Context, obj Caller) (*introspect.Node, error) {
	key := obj.Destination() + string(obj.Path())
	return i.cache.GetOrLoad(key, func() (*introspect.Node, error) {
		logger.Debug("[dbus] introspecting %s %s", obj.Destination(), obj.Path())
		call, err := CallWithContext(ctx, obj, DefaultTimeout, 0, INTROSPECT)
		if err != nil {
			return nil, err
		}
		var data string
		if err := call.Store(&data); err != nil {
			return nil, err
		}
		var node introspect.Node
		if err := xml.NewDecoder(strings.NewReader(data)).Decode(&node); err != nil {
			return nil, fmt.Errorf("introspect %s: %w", obj.Destination(), err)
		}
		return &node, nil
	})
}

// Verify checks that obj implements iface.m with the expected input signature.
func (i *Introspector) Verify(ctx context.Context, obj Caller, iface Interface, m Method) error {
	node, err := i.Node(ctx, obj)
	if err != nil {
		return err
	}
	for _, ifc := range node.Interfaces {
		if ifc.Name != iface.Name {
			continue
		}
		for _, im := range ifc.Methods {
			if im.Name != m.Name {
				continue
			}
			if got := InSignature(im); got != m.Signature {
				return &SignatureError{Method: iface.Member(m.Name), Want: m.Signature, Got: got}
			}
			return nil
		}
		return &MethodError{Method: iface.Member(m.Name), Reason: "unknown method"}
	}
	return &MethodError{Method: iface.Member(m.Name), Reason: "unknown interface"}
}

// InSignature concatenates the types of the input arguments of m.
func InSignature(m introspect.Method) string {
	var b strings.Builder
	for _, a := range m.Args {
		if a.Direction == "" || a.Direction == "in" {
			b.WriteString(a.Type)
		}
	}
	return b.String()
}
