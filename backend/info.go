package backend

import (
	"bufio"
	"context"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/expidus/lunar-remote/backend/fdo"
	"github.com/expidus/lunar-remote/backend/filemanager"
	idbus "github.com/expidus/lunar-remote/backend/internal/dbus"
	"github.com/expidus/lunar-remote/backend/lunar"
	"github.com/expidus/lunar-remote/config"
	"github.com/expidus/lunar-remote/logger"
)

const (
	UNKNOWN         = "unknown"
	OS_RELEASE_FILE = "/etc/os-release"
)

var osVersion string

type ServerInfo struct {
	Hostname   string          `json:"hostname"`
	OSPlatform string          `json:"os_platform"`
	OSVersion  string          `json:"os_version"`
	APISW      string          `json:"api_sw"`
	APIVersion string          `json:"api_version"`
	Bus        string          `json:"bus"`
	Services   map[string]bool `json:"services,omitempty"`
}

// ServiceNames lists the well-known names the clients talk to.
var ServiceNames = []string{
	filemanager.FILEMANAGER_NAME,
	lunar.LUNAR_NAME,
	fdo.FDO_NAME,
}

func init() {
	osVersion = readOSRelease()
}

func parseKeyValue(r io.Reader) (map[string]string, error) {
	out := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		out[key] = strings.Trim(value, `"`)
	}

	return out, scanner.Err()
}

func readOSRelease() string {
	file, err := os.Open(OS_RELEASE_FILE)
	if err != nil {
		return UNKNOWN
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Warn("[backend] failed to close %s: %v", OS_RELEASE_FILE, err)
		}
	}()

	content, err := parseKeyValue(file)
	if err != nil {
		logger.Debug("[backend] failed to parse %s: %v", OS_RELEASE_FILE, err)
	}

	switch {
	case content["PRETTY_NAME"] != "":
		return content["PRETTY_NAME"]
	case content["NAME"] != "":
		return content["NAME"]
	default:
		return UNKNOWN
	}
}

// Info describes the host and which file manager services currently own
// their bus name. Services is omitted when the backend has no bus object.
func (b *Backend) Info(ctx context.Context) ServerInfo {
	hostname, err := os.Hostname()
	if err != nil {
		logger.Debug("[backend] failed to get hostname: %v", err)
		hostname = UNKNOWN
	}

	info := ServerInfo{
		Hostname:   hostname,
		OSPlatform: runtime.GOOS + "/" + runtime.GOARCH,
		OSVersion:  osVersion,
		APISW:      config.AppName,
		APIVersion: config.AppVersion,
		Bus:        b.describeBus(),
	}
	if b.bus == nil {
		return info
	}

	info.Services = make(map[string]bool, len(ServiceNames))
	for _, name := range ServiceNames {
		running, err := idbus.NameHasOwner(ctx, b.bus, name)
		if err != nil {
			logger.Debug("[backend] NameHasOwner(%s) failed: %v", name, err)
		}
		info.Services[name] = running
	}
	return info
}
