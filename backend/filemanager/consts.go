package filemanager

import idbus "github.com/expidus/lunar-remote/backend/internal/dbus"

const (
	FILEMANAGER_NAME      = "com.expidus.FileManager"
	FILEMANAGER_PATH      = "/com/expidus/FileManager"
	FILEMANAGER_INTERFACE = "com.expidus.FileManager"

	METHOD_LAUNCH                     = "Launch"
	METHOD_DISPLAY_FOLDER             = "DisplayFolder"
	METHOD_DISPLAY_FOLDER_AND_SELECT  = "DisplayFolderAndSelect"
	METHOD_DISPLAY_PREFERENCES_DIALOG = "DisplayPreferencesDialog"
	METHOD_DISPLAY_FILE_PROPERTIES    = "DisplayFileProperties"
)

// Interface is the method table of com.expidus.FileManager. Every method
// ends with the display name and the startup notification id.
var Interface = idbus.Interface{
	Name: FILEMANAGER_INTERFACE,
	Methods: []idbus.Method{
		{Name: METHOD_LAUNCH, Signature: "sss"},
		{Name: METHOD_DISPLAY_FOLDER, Signature: "sss"},
		{Name: METHOD_DISPLAY_FOLDER_AND_SELECT, Signature: "ssss"},
		{Name: METHOD_DISPLAY_PREFERENCES_DIALOG, Signature: "ss"},
		{Name: METHOD_DISPLAY_FILE_PROPERTIES, Signature: "sss"},
	},
}
