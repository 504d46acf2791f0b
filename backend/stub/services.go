package stub

import (
	"github.com/godbus/dbus/v5"

	"github.com/expidus/lunar-remote/backend/fdo"
	"github.com/expidus/lunar-remote/backend/filemanager"
	idbus "github.com/expidus/lunar-remote/backend/internal/dbus"
	"github.com/expidus/lunar-remote/backend/lunar"
	"github.com/expidus/lunar-remote/backend/trash"
)

func invalidArgs(reason string) *dbus.Error {
	return &dbus.Error{Name: idbus.ERR_INVALID_ARGS, Body: []interface{}{reason}}
}

// Every exported method of the types below is a D-Bus method: the bus
// dispatches on the Go method name and introspection is derived from it.

type fileManager struct{ s *Stub }

func (f *fileManager) Launch(uri, display, startupID string) *dbus.Error {
	return f.s.record(filemanager.FILEMANAGER_INTERFACE, filemanager.METHOD_LAUNCH, uri, display, startupID)
}

func (f *fileManager) DisplayFolder(uri, display, startupID string) *dbus.Error {
	if uri == "" {
		return invalidArgs("empty uri")
	}
	return f.s.record(filemanager.FILEMANAGER_INTERFACE, filemanager.METHOD_DISPLAY_FOLDER, uri, display, startupID)
}

func (f *fileManager) DisplayFolderAndSelect(uri, filename, display, startupID string) *dbus.Error {
	if uri == "" {
		return invalidArgs("empty uri")
	}
	return f.s.record(filemanager.FILEMANAGER_INTERFACE, filemanager.METHOD_DISPLAY_FOLDER_AND_SELECT, uri, filename, display, startupID)
}

func (f *fileManager) DisplayPreferencesDialog(display, startupID string) *dbus.Error {
	return f.s.record(filemanager.FILEMANAGER_INTERFACE, filemanager.METHOD_DISPLAY_PREFERENCES_DIALOG, display, startupID)
}

func (f *fileManager) DisplayFileProperties(uri, display, startupID string) *dbus.Error {
	if uri == "" {
		return invalidArgs("empty uri")
	}
	return f.s.record(filemanager.FILEMANAGER_INTERFACE, filemanager.METHOD_DISPLAY_FILE_PROPERTIES, uri, display, startupID)
}

type application struct{ s *Stub }

// Terminate records the call and stops the stub once the reply is sent.
func (a *application) Terminate() *dbus.Error {
	err := a.s.record(lunar.LUNAR_INTERFACE, lunar.METHOD_TERMINATE)
	go a.s.Close()
	return err
}

func (a *application) BulkRename(workingDir string, files []string, standalone bool, display, startupID string) *dbus.Error {
	return a.s.record(lunar.LUNAR_INTERFACE, lunar.METHOD_BULK_RENAME, workingDir, files, standalone, display, startupID)
}

type trashBin struct{ s *Stub }

func (t *trashBin) DisplayTrash(display, startupID string) *dbus.Error {
	return t.s.record(trash.TRASH_INTERFACE, trash.METHOD_DISPLAY_TRASH, display, startupID)
}

// EmptyTrash is recorded only; the stub never deletes files.
func (t *trashBin) EmptyTrash(display, startupID string) *dbus.Error {
	return t.s.record(trash.TRASH_INTERFACE, trash.METHOD_EMPTY_TRASH, display, startupID)
}

func (t *trashBin) MoveToTrash(uris []string, display, startupID string) *dbus.Error {
	if len(uris) == 0 {
		return invalidArgs("no uris")
	}
	return t.s.record(trash.TRASH_INTERFACE, trash.METHOD_MOVE_TO_TRASH, uris, display, startupID)
}

func (t *trashBin) QueryTrash() (bool, *dbus.Error) {
	if err := t.s.record(trash.TRASH_INTERFACE, trash.METHOD_QUERY_TRASH); err != nil {
		return false, err
	}
	return t.s.TrashFull(), nil
}

type freedesktop struct{ s *Stub }

func (f *freedesktop) ShowFolders(uris []string, startupID string) *dbus.Error {
	return f.show(fdo.METHOD_SHOW_FOLDERS, uris, startupID)
}

func (f *freedesktop) ShowItems(uris []string, startupID string) *dbus.Error {
	return f.show(fdo.METHOD_SHOW_ITEMS, uris, startupID)
}

func (f *freedesktop) ShowItemProperties(uris []string, startupID string) *dbus.Error {
	return f.show(fdo.METHOD_SHOW_ITEM_PROPERTIES, uris, startupID)
}

func (f *freedesktop) show(method string, uris []string, startupID string) *dbus.Error {
	if len(uris) == 0 {
		return invalidArgs("no uris")
	}
	return f.s.record(fdo.FDO_INTERFACE, method, uris, startupID)
}
