package dbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIntrospectXML = `<!DOCTYPE node PUBLIC "-//freedesktop//DTD D-BUS Object Introspection 1.0//EN"
 "http://www.freedesktop.org/standards/dbus/1.0/introspect.dtd">
<node name="/com/example/Test">
  <interface name="com.example.Test">
    <method name="Ping"/>
    <method name="Open">
      <arg name="uri" type="s" direction="in"/>
      <arg name="display" type="s" direction="in"/>
      <arg name="startup_id" type="s" direction="in"/>
    </method>
    <method name="Rename">
      <arg name="working_directory" type="s" direction="in"/>
      <arg name="filenames" type="as" direction="in"/>
      <arg name="display" type="s" direction="in"/>
    </method>
  </interface>
</node>`

func TestIntrospector_Verify(t *testing.T) {
	obj := newTestObject().Reply(INTROSPECT, testIntrospectXML)
	in := NewIntrospector(time.Minute)
	ctx := context.Background()

	open, _ := testIface.Lookup("Open")
	assert.NoError(t, in.Verify(ctx, obj, testIface, open))

	ping, _ := testIface.Lookup("Ping")
	assert.NoError(t, in.Verify(ctx, obj, testIface, ping))

	rename, _ := testIface.Lookup("Rename")
	var sigErr *SignatureError
	require.ErrorAs(t, in.Verify(ctx, obj, testIface, rename), &sigErr)
	assert.Equal(t, "sass", sigErr.Got)

	var mErr *MethodError
	require.ErrorAs(t, in.Verify(ctx, obj, testIface, Method{Name: "Missing"}), &mErr)
	assert.Equal(t, "unknown method", mErr.Reason)

	other := Interface{Name: "com.example.Other"}
	require.ErrorAs(t, in.Verify(ctx, obj, other, Method{Name: "Ping"}), &mErr)
	assert.Equal(t, "unknown interface", mErr.Reason)

	assert.Len(t, obj.CallsTo(INTROSPECT), 1, "introspection data should be cached")
}

func TestIntrospector_InvokerRejectsMismatch(t *testing.T) {
	obj := newTestObject().Reply(INTROSPECT, testIntrospectXML)
	inv := NewInvoker(obj, testIface, Options{Introspector: NewIntrospector(0)})

	_, err := inv.Invoke(context.Background(), "Rename", "/tmp", []string{}, true, "", "")

	var sigErr *SignatureError
	require.ErrorAs(t, err, &sigErr)
	assert.Empty(t, obj.CallsTo("com.example.Test.Rename"))
}

func TestIntrospector_BadXML(t *testing.T) {
	obj := newTestObject().Reply(INTROSPECT, "<node><interface")
	in := NewIntrospector(0)

	_, err := in.Node(context.Background(), obj)
	assert.Error(t, err)
}
