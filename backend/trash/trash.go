package trash

import (
	"context"

	idbus "github.com/expidus/lunar-remote/backend/internal/dbus"
	"github.com/expidus/lunar-remote/backend/remote"
	"github.com/expidus/lunar-remote/logger"
)

const (
	TRASH_NAME      = "com.expidus.FileManager"
	TRASH_PATH      = "/com/expidus/FileManager"
	TRASH_INTERFACE = "com.expidus.Trash"

	METHOD_DISPLAY_TRASH = "DisplayTrash"
	METHOD_EMPTY_TRASH   = "EmptyTrash"
	METHOD_MOVE_TO_TRASH = "MoveToTrash"
	METHOD_QUERY_TRASH   = "QueryTrash"

	SIGNAL_TRASH_CHANGED = "TrashChanged"
)

// Interface is the method table of com.expidus.Trash, exported by the file
// manager next to com.expidus.FileManager.
var Interface = idbus.Interface{
	Name: TRASH_INTERFACE,
	Methods: []idbus.Method{
		{Name: METHOD_DISPLAY_TRASH, Signature: "ss"},
		{Name: METHOD_EMPTY_TRASH, Signature: "ss"},
		{Name: METHOD_MOVE_TO_TRASH, Signature: "asss"},
		{Name: METHOD_QUERY_TRASH, Signature: ""},
	},
}

type Client struct {
	inv       *idbus.Invoker
	display   string
	startupID string
}

func New(obj remote.Caller, opts remote.Options) *Client {
	return &Client{
		inv:       opts.NewInvoker(obj, Interface),
		display:   opts.Display,
		startupID: opts.StartupID,
	}
}

// DisplayTrash opens a window on trash:///.
func (c *Client) DisplayTrash(ctx context.Context) error {
	logger.Info("[trash] displaying trash")
	_, err := c.inv.Invoke(ctx, METHOD_DISPLAY_TRASH, c.display, c.startupID)
	return err
}

// EmptyTrash asks the file manager to empty the trash. The file manager shows
// its own confirmation dialog.
func (c *Client) EmptyTrash(ctx context.Context) error {
	logger.Info("[trash] emptying trash")
	_, err := c.inv.Invoke(ctx, METHOD_EMPTY_TRASH, c.display, c.startupID)
	return err
}

func (c *Client) MoveToTrash(ctx context.Context, uris []string) error {
	if err := remote.NonEmpty("uris", uris); err != nil {
		return err
	}
	logger.Info("[trash] moving %d files to trash", len(uris))
	_, err := c.inv.Invoke(ctx, METHOD_MOVE_TO_TRASH, uris, c.display, c.startupID)
	return err
}

// QueryTrash reports whether the trash contains files.
func (c *Client) QueryTrash(ctx context.Context) (bool, error) {
	call, err := c.inv.Invoke(ctx, METHOD_QUERY_TRASH)
	if err != nil {
		return false, err
	}
	var full bool
	if err := call.Store(&full); err != nil {
		return false, err
	}
	logger.Debug("[trash] trash full: %v", full)
	return full, nil
}
