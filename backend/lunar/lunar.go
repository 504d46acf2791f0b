package lunar

import (
	"context"

	idbus "github.com/expidus/lunar-remote/backend/internal/dbus"
	"github.com/expidus/lunar-remote/backend/remote"
	"github.com/expidus/lunar-remote/logger"
)

const (
	LUNAR_NAME      = "com.expidus.Lunar"
	LUNAR_PATH      = "/com/expidus/FileManager"
	LUNAR_INTERFACE = "com.expidus.Lunar"

	METHOD_TERMINATE   = "Terminate"
	METHOD_BULK_RENAME = "BulkRename"
)

// Interface is the method table of the application object.
var Interface = idbus.Interface{
	Name: LUNAR_INTERFACE,
	Methods: []idbus.Method{
		{Name: METHOD_TERMINATE, Signature: ""},
		{Name: METHOD_BULK_RENAME, Signature: "sasbss"},
	},
}

// Client controls the Lunar application itself.
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

// Terminate asks the running instance to quit, like `lunar -q`.
func (c *Client) Terminate(ctx context.Context) error {
	logger.Info("[lunar] requesting termination")
	_, err := c.inv.Invoke(ctx, METHOD_TERMINATE)
	return err
}

// BulkRename opens the bulk rename dialog for files. workingDir is the
// default folder of the "Add Files" dialog; standalone runs the dialog
// without a main window.
func (c *Client) BulkRename(ctx context.Context, workingDir string, files []string, standalone bool) error {
	if files == nil {
		files = []string{}
	}
	logger.Info("[lunar] bulk rename in %s (%d files, standalone=%v)", workingDir, len(files), standalone)
	_, err := c.inv.Invoke(ctx, METHOD_BULK_RENAME, workingDir, files, standalone, c.display, c.startupID)
	return err
}

// Invoke calls member with caller-supplied arguments, checked against the
// declared signature.
func (c *Client) Invoke(ctx context.Context, member string, args ...interface{}) error {
	_, err := c.inv.Invoke(ctx, member, args...)
	return err
}
