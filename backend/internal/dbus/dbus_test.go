package dbus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expidus/lunar-remote/backend/bustest"
)

var testIface = Interface{
	Name: "com.example.Test",
	Methods: []Method{
		{Name: "Ping", Signature: ""},
		{Name: "Open", Signature: "sss"},
		{Name: "Rename", Signature: "sasbss"},
	},
}

const testDest = "com.example.Test"

func newTestObject() *bustest.Object {
	return bustest.NewObject(testDest, "/com/example/Test")
}

func TestGetObject(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	conn, err := dbus.NewConn(client)
	require.NoError(t, err)
	defer conn.Close()

	obj := GetObject(conn, testDest, "/com/example/Test")

	assert.Equal(t, testDest, obj.Destination())
	assert.Equal(t, dbus.ObjectPath("/com/example/Test"), obj.Path())

	var caller Caller = obj
	assert.NotNil(t, caller)
}

func TestCheckArgs(t *testing.T) {
	tests := []struct {
		name    string
		member  string
		args    []interface{}
		wantErr bool
	}{
		{"no args", "Ping", nil, false},
		{"three strings", "Open", []interface{}{"/", "", ""}, false},
		{"string list bool", "Rename", []interface{}{"/tmp", []string{}, true, "", ""}, false},
		{"nil string list", "Rename", []interface{}{"/tmp", []string(nil), true, "", ""}, false},
		{"int instead of string", "Open", []interface{}{"/", 1, ""}, true},
		{"missing arg", "Open", []interface{}{"/", ""}, true},
		{"extra arg", "Ping", []interface{}{"x"}, true},
		{"untyped list", "Rename", []interface{}{"/tmp", []interface{}{}, true, "", ""}, true},
		{"string instead of bool", "Rename", []interface{}{"/tmp", []string{}, "true", "", ""}, true},
		{"nil argument", "Open", []interface{}{nil, "", ""}, true},
		{"unsupported type", "Open", []interface{}{make(chan int), "", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := testIface.Lookup(tt.member)
			require.True(t, ok)
			err := CheckArgs(testIface, m, tt.args...)
			if tt.wantErr {
				var sigErr *SignatureError
				require.ErrorAs(t, err, &sigErr)
				assert.Equal(t, "com.example.Test."+tt.member, sigErr.Method)
				assert.Equal(t, m.Signature, sigErr.Want)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInvoke_SendsExactlyOneCall(t *testing.T) {
	obj := newTestObject()
	inv := NewInvoker(obj, testIface, Options{})

	_, err := inv.Invoke(context.Background(), "Open", "/", "", "")
	require.NoError(t, err)

	calls := obj.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "com.example.Test.Open", calls[0].Method)
	assert.Equal(t, []interface{}{"/", "", ""}, calls[0].Args)
	assert.Equal(t, dbus.Flags(0), calls[0].Flags)
}

func TestInvoke_SignatureMismatchSendsNothing(t *testing.T) {
	obj := newTestObject()
	inv := NewInvoker(obj, testIface, Options{})

	_, err := inv.Invoke(context.Background(), "Open", "/", 42, "")

	var sigErr *SignatureError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, "sis", sigErr.Got)
	assert.Empty(t, obj.Calls())
}

func TestInvoke_UnknownMemberSendsNothing(t *testing.T) {
	obj := newTestObject()
	inv := NewInvoker(obj, testIface, Options{})

	_, err := inv.Invoke(context.Background(), "Explode")

	var mErr *MethodError
	require.ErrorAs(t, err, &mErr)
	assert.Empty(t, obj.Calls())
}

func TestInvoke_NoAutoStartFlag(t *testing.T) {
	obj := newTestObject()
	inv := NewInvoker(obj, testIface, Options{NoAutoStart: true})

	_, err := inv.Invoke(context.Background(), "Ping")
	require.NoError(t, err)

	calls := obj.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, dbus.FlagNoAutoStart, calls[0].Flags&dbus.FlagNoAutoStart)
}

func TestInvoke_RequireRunning(t *testing.T) {
	t.Run("no owner", func(t *testing.T) {
		obj := newTestObject()
		bus := bustest.NewBus(map[string]bool{})
		inv := NewInvoker(obj, testIface, Options{RequireRunning: true, Bus: bus})

		_, err := inv.Invoke(context.Background(), "Open", "/", "", "")

		var svcErr *ServiceUnknownError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, testDest, svcErr.Name)
		assert.Empty(t, obj.Calls(), "no call may reach an unregistered service")
		assert.Len(t, bus.CallsTo(BUS_NAME_HAS_OWNER), 1)
	})

	t.Run("owned", func(t *testing.T) {
		obj := newTestObject()
		bus := bustest.NewBus(map[string]bool{testDest: true})
		inv := NewInvoker(obj, testIface, Options{RequireRunning: true, Bus: bus})

		_, err := inv.Invoke(context.Background(), "Open", "/", "", "")
		require.NoError(t, err)
		assert.Len(t, obj.Calls(), 1)
	})
}

func TestInvoke_Timeout(t *testing.T) {
	obj := newTestObject().Hang("com.example.Test.Ping")
	inv := NewInvoker(obj, testIface, Options{Timeout: 20 * time.Millisecond})

	_, err := inv.Invoke(context.Background(), "Ping")

	var tErr *TimeoutError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "com.example.Test.Ping", tErr.Method)
}

func TestClassify(t *testing.T) {
	method := "com.example.Test.Open"
	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, err error)
	}{
		{
			name: "service unknown",
			err:  bustest.Error(ERR_SERVICE_UNKNOWN, "The name com.example.Test was not provided by any .service files"),
			check: func(t *testing.T, err error) {
				var e *ServiceUnknownError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, testDest, e.Name)
				assert.Contains(t, e.Reason, "not provided")
			},
		},
		{
			name: "name has no owner",
			err:  bustest.Error(ERR_NAME_HAS_NO_OWNER),
			check: func(t *testing.T, err error) {
				var e *ServiceUnknownError
				require.ErrorAs(t, err, &e)
			},
		},
		{
			name: "unknown method",
			err:  bustest.Error(ERR_UNKNOWN_METHOD),
			check: func(t *testing.T, err error) {
				var e *MethodError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "unknown method", e.Reason)
			},
		},
		{
			name: "unknown interface",
			err:  bustest.Error(ERR_UNKNOWN_INTERFACE),
			check: func(t *testing.T, err error) {
				var e *MethodError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "unknown interface", e.Reason)
			},
		},
		{
			name: "invalid args",
			err:  bustest.Error(ERR_INVALID_ARGS),
			check: func(t *testing.T, err error) {
				var e *SignatureError
				require.ErrorAs(t, err, &e)
				assert.Empty(t, e.Got)
			},
		},
		{
			name: "value dbus.Error",
			err:  dbus.Error{Name: ERR_UNKNOWN_OBJECT},
			check: func(t *testing.T, err error) {
				var e *MethodError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "unknown object", e.Reason)
			},
		},
		{
			name: "no reply",
			err:  bustest.Error(ERR_NO_REPLY),
			check: func(t *testing.T, err error) {
				var e *TimeoutError
				require.ErrorAs(t, err, &e)
			},
		},
		{
			name: "deadline",
			err:  fmt.Errorf("wrapped: %w", context.DeadlineExceeded),
			check: func(t *testing.T, err error) {
				var e *TimeoutError
				require.ErrorAs(t, err, &e)
			},
		},
		{
			name: "service specific error",
			err:  bustest.Error("com.expidus.FileManager.Error.Failed", "No such file"),
			check: func(t *testing.T, err error) {
				var e *RemoteError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "com.expidus.FileManager.Error.Failed", e.Name)
				assert.Contains(t, e.Error(), "No such file")
			},
		},
		{
			name: "plain error is wrapped",
			err:  errors.New("connection closed"),
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, method+": connection closed")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Classify(testDest, method, tt.err))
		})
	}

	assert.NoError(t, Classify(testDest, method, nil))
}

func TestFilterSignal(t *testing.T) {
	_, err := FilterSignal(nil, "a.B.C", 1)
	var sigErr *SignalError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, "channel closed", sigErr.Reason)

	_, err = FilterSignal(&dbus.Signal{Name: "a.B.D", Body: []interface{}{true}}, "a.B.C", 1)
	require.ErrorAs(t, err, &sigErr)

	_, err = FilterSignal(&dbus.Signal{Name: "a.B.C"}, "a.B.C", 1)
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, "body too short", sigErr.Reason)

	body, err := FilterSignal(&dbus.Signal{Name: "a.B.C", Body: []interface{}{true}}, "a.B.C", 1)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{true}, body)
}

func TestExtractBool(t *testing.T) {
	v, ok := ExtractBool(true)
	assert.True(t, ok)
	assert.True(t, v)

	v, ok = ExtractBool(dbus.MakeVariant(false))
	assert.True(t, ok)
	assert.False(t, v)

	_, ok = ExtractBool("yes")
	assert.False(t, ok)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "dbus: call timed out", (&TimeoutError{}).Error())
	assert.Equal(t, "dbus: a.B: call timed out", (&TimeoutError{Method: "a.B"}).Error())
	assert.Equal(t, "dbus: service a.B is not running", (&ServiceUnknownError{Name: "a.B"}).Error())
	assert.Equal(t, `dbus: a.B.C expects signature "sss", got "sis"`,
		(&SignatureError{Method: "a.B.C", Want: "sss", Got: "sis"}).Error())
	assert.Equal(t, "uris: must not be empty", (&ValidationError{Field: "uris", Message: "must not be empty"}).Error())

	connErr := &ConnectionError{Err: errors.New("no address")}
	assert.Contains(t, connErr.Error(), "session bus")
	assert.ErrorIs(t, connErr, connErr.Err)
}

var (
	_ error = (*ConnectionError)(nil)
	_ error = (*ServiceUnknownError)(nil)
	_ error = (*MethodError)(nil)
	_ error = (*SignatureError)(nil)
	_ error = (*TimeoutError)(nil)
	_ error = (*SignalError)(nil)
	_ error = (*ValidationError)(nil)
	_ error = (*RemoteError)(nil)
)
