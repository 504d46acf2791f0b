// Package fdo talks to the org.freedesktop.FileManager1 interface, which the
// file manager owns next to its own names so that desktop-neutral callers
// (browsers' "show in folder", portals) reach it too.
package fdo

import (
	"context"

	idbus "github.com/expidus/lunar-remote/backend/internal/dbus"
	"github.com/expidus/lunar-remote/backend/remote"
	"github.com/expidus/lunar-remote/logger"
)

const (
	FDO_NAME      = "org.freedesktop.FileManager1"
	FDO_PATH      = "/org/freedesktop/FileManager1"
	FDO_INTERFACE = "org.freedesktop.FileManager1"

	METHOD_SHOW_FOLDERS         = "ShowFolders"
	METHOD_SHOW_ITEMS           = "ShowItems"
	METHOD_SHOW_ITEM_PROPERTIES = "ShowItemProperties"
)

var Interface = idbus.Interface{
	Name: FDO_INTERFACE,
	Methods: []idbus.Method{
		{Name: METHOD_SHOW_FOLDERS, Signature: "ass"},
		{Name: METHOD_SHOW_ITEMS, Signature: "ass"},
		{Name: METHOD_SHOW_ITEM_PROPERTIES, Signature: "ass"},
	},
}

type Client struct {
	inv       *idbus.Invoker
	startupID string
}

func New(obj remote.Caller, opts remote.Options) *Client {
	return &Client{
		inv:       opts.NewInvoker(obj, Interface),
		startupID: opts.StartupID,
	}
}

func (c *Client) ShowFolders(ctx context.Context, uris []string) error {
	return c.show(ctx, METHOD_SHOW_FOLDERS, uris)
}

// ShowItems opens the parent folders of uris with the items selected.
func (c *Client) ShowItems(ctx context.Context, uris []string) error {
	return c.show(ctx, METHOD_SHOW_ITEMS, uris)
}

func (c *Client) ShowItemProperties(ctx context.Context, uris []string) error {
	return c.show(ctx, METHOD_SHOW_ITEM_PROPERTIES, uris)
}

func (c *Client) show(ctx context.Context, member string, uris []string) error {
	if err := remote.NonEmpty("uris", uris); err != nil {
		return err
	}
	logger.Info("[fdo] %s %v", member, uris)
	_, err := c.inv.Invoke(ctx, member, uris, c.startupID)
	return err
}
