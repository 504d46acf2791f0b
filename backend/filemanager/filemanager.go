package filemanager

import (
	"context"

	idbus "github.com/expidus/lunar-remote/backend/internal/dbus"
	"github.com/expidus/lunar-remote/backend/remote"
	"github.com/expidus/lunar-remote/logger"
)

// Client drives the folder windows and dialogs of a running file manager.
type Client struct {
	inv       *idbus.Invoker
	display   string
	startupID string
}

// New binds a client to obj, normally the object at FILEMANAGER_PATH owned
// by FILEMANAGER_NAME.
func New(obj remote.Caller, opts remote.Options) *Client {
	return &Client{
		inv:       opts.NewInvoker(obj, Interface),
		display:   opts.Display,
		startupID: opts.StartupID,
	}
}

// Launch opens uri the way a double click would: folders get a window,
// files are handed to their default application.
func (c *Client) Launch(ctx context.Context, uri string) error {
	logger.Info("[filemanager] launching %s", uri)
	return c.call(ctx, METHOD_LAUNCH, uri, c.display, c.startupID)
}

func (c *Client) DisplayFolder(ctx context.Context, uri string) error {
	logger.Info("[filemanager] displaying folder %s", uri)
	return c.call(ctx, METHOD_DISPLAY_FOLDER, uri, c.display, c.startupID)
}

// DisplayFolderAndSelect opens uri and preselects filename, a base name
// relative to it.
func (c *Client) DisplayFolderAndSelect(ctx context.Context, uri, filename string) error {
	logger.Info("[filemanager] displaying folder %s, selecting %s", uri, filename)
	return c.call(ctx, METHOD_DISPLAY_FOLDER_AND_SELECT, uri, filename, c.display, c.startupID)
}

func (c *Client) DisplayPreferencesDialog(ctx context.Context) error {
	logger.Info("[filemanager] displaying preferences dialog")
	return c.call(ctx, METHOD_DISPLAY_PREFERENCES_DIALOG, c.display, c.startupID)
}

func (c *Client) DisplayFileProperties(ctx context.Context, uri string) error {
	logger.Info("[filemanager] displaying properties of %s", uri)
	return c.call(ctx, METHOD_DISPLAY_FILE_PROPERTIES, uri, c.display, c.startupID)
}

// Invoke calls member with caller-supplied arguments. The arguments must
// match the declared signature exactly; nothing is coerced.
func (c *Client) Invoke(ctx context.Context, member string, args ...interface{}) error {
	return c.call(ctx, member, args...)
}

func (c *Client) call(ctx context.Context, member string, args ...interface{}) error {
	_, err := c.inv.Invoke(ctx, member, args...)
	return err
}
