package dbus

// Standard D-Bus method names
const (
	DBUS_INTERFACE = "org.freedesktop.DBus"

	INTROSPECTABLE     = DBUS_INTERFACE + ".Introspectable"
	INTROSPECT         = INTROSPECTABLE + ".Introspect"
	BUS_NAME_HAS_OWNER = DBUS_INTERFACE + ".NameHasOwner"
)

// Standard D-Bus error names returned by the bus daemon or by services.
const (
	ERR_SERVICE_UNKNOWN    = DBUS_INTERFACE + ".Error.ServiceUnknown"
	ERR_NAME_HAS_NO_OWNER  = DBUS_INTERFACE + ".Error.NameHasNoOwner"
	ERR_UNKNOWN_METHOD     = DBUS_INTERFACE + ".Error.UnknownMethod"
	ERR_UNKNOWN_INTERFACE  = DBUS_INTERFACE + ".Error.UnknownInterface"
	ERR_UNKNOWN_OBJECT     = DBUS_INTERFACE + ".Error.UnknownObject"
	ERR_INVALID_ARGS       = DBUS_INTERFACE + ".Error.InvalidArgs"
	ERR_INVALID_SIGNATURE  = DBUS_INTERFACE + ".Error.InvalidSignature"
	ERR_NO_REPLY           = DBUS_INTERFACE + ".Error.NoReply"
	ERR_TIMEOUT            = DBUS_INTERFACE + ".Error.Timeout"
	ERR_SPAWN_EXEC_FAILED  = DBUS_INTERFACE + ".Error.Spawn.ExecFailed"
	ERR_SPAWN_CHILD_EXITED = DBUS_INTERFACE + ".Error.Spawn.ChildExited"
)
