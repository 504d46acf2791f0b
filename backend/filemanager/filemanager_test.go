package filemanager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expidus/lunar-remote/backend/bustest"
	"github.com/expidus/lunar-remote/backend/remote"
)

func newFake() *bustest.Object {
	return bustest.NewObject(FILEMANAGER_NAME, FILEMANAGER_PATH)
}

func TestClientMethods(t *testing.T) {
	tests := []struct {
		name     string
		invoke   func(ctx context.Context, c *Client) error
		wantCall string
		wantArgs []interface{}
	}{
		{
			name:     "Launch root",
			invoke:   func(ctx context.Context, c *Client) error { return c.Launch(ctx, "/") },
			wantCall: "com.expidus.FileManager.Launch",
			wantArgs: []interface{}{"/", "", ""},
		},
		{
			name:     "DisplayFolder",
			invoke:   func(ctx context.Context, c *Client) error { return c.DisplayFolder(ctx, "/tmp") },
			wantCall: "com.expidus.FileManager.DisplayFolder",
			wantArgs: []interface{}{"/tmp", "", ""},
		},
		{
			name: "DisplayFolderAndSelect",
			invoke: func(ctx context.Context, c *Client) error {
				return c.DisplayFolderAndSelect(ctx, "/tmp", "file.txt")
			},
			wantCall: "com.expidus.FileManager.DisplayFolderAndSelect",
			wantArgs: []interface{}{"/tmp", "file.txt", "", ""},
		},
		{
			name:     "DisplayPreferencesDialog",
			invoke:   func(ctx context.Context, c *Client) error { return c.DisplayPreferencesDialog(ctx) },
			wantCall: "com.expidus.FileManager.DisplayPreferencesDialog",
			wantArgs: []interface{}{"", ""},
		},
		{
			name: "DisplayFileProperties",
			invoke: func(ctx context.Context, c *Client) error {
				return c.DisplayFileProperties(ctx, "/path/to/file")
			},
			wantCall: "com.expidus.FileManager.DisplayFileProperties",
			wantArgs: []interface{}{"/path/to/file", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := newFake()
			c := New(obj, remote.Options{})

			require.NoError(t, tt.invoke(context.Background(), c))

			calls := obj.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.wantCall, calls[0].Method)
			assert.Equal(t, tt.wantArgs, calls[0].Args)
		})
	}
}

func TestClientPassesDisplayAndStartupID(t *testing.T) {
	obj := newFake()
	c := New(obj, remote.Options{Display: ":0", StartupID: "lunar-remote-42_TIME0"})

	require.NoError(t, c.DisplayFolderAndSelect(context.Background(), "/tmp", "a.txt"))

	calls := obj.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []interface{}{"/tmp", "a.txt", ":0", "lunar-remote-42_TIME0"}, calls[0].Args)
}

func TestInvokeRejectsMismatchedTypes(t *testing.T) {
	obj := newFake()
	c := New(obj, remote.Options{})

	err := c.Invoke(context.Background(), METHOD_LAUNCH, "/", true, "")

	var sigErr *remote.SignatureError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, "sss", sigErr.Want)
	assert.Equal(t, "sbs", sigErr.Got)
	assert.Empty(t, obj.Calls())
}

func TestServiceNotRunning(t *testing.T) {
	obj := newFake()
	bus := bustest.NewBus(map[string]bool{})
	c := New(obj, remote.Options{RequireRunning: true, Bus: bus})

	err := c.Launch(context.Background(), "/")

	var svcErr *remote.ServiceUnknownError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, FILEMANAGER_NAME, svcErr.Name)
	assert.Empty(t, obj.Calls())
}

func TestRemoteErrorPropagates(t *testing.T) {
	obj := newFake().Fail(
		"com.expidus.FileManager.Launch",
		bustest.Error("org.freedesktop.DBus.Error.UnknownMethod", "No such method"),
	)
	c := New(obj, remote.Options{})

	err := c.Launch(context.Background(), "/")

	var mErr *remote.MethodError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, "com.expidus.FileManager.Launch", mErr.Method)
	assert.Len(t, obj.Calls(), 1, "the call is made once and not retried")
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "com.expidus.FileManager", FILEMANAGER_NAME)
	assert.Equal(t, "/com/expidus/FileManager", FILEMANAGER_PATH)
	assert.Equal(t, "com.expidus.FileManager", Interface.Name)
	assert.Len(t, Interface.Methods, 5)
}
