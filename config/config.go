package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/expidus/lunar-remote/logger"
)

const (
	AppName    = "lunar-remote"
	AppVersion = "0.1.0"
	envPrefix  = "LUNAR_REMOTE"

	defaultTimeout = 25 * time.Second
)

type Config struct {
	Bus      *BusConfig
	Api      *ApiConfig
	Stub     *StubConfig
	LogLevel logger.Level
	// LogLevels overrides LogLevel for messages of one [component].
	LogLevels map[string]logger.Level
}

type BusConfig struct {
	// Address overrides DBUS_SESSION_BUS_ADDRESS when set.
	Address        string
	Timeout        time.Duration
	AutoStart      bool
	RequireRunning bool
	Verify         bool
	IntrospectTTL  time.Duration

	Display   string
	StartupID string
}

type ApiConfig struct {
	Enabled bool
	Listen  string
	// CORS is nil unless api.cors.origins lists at least one origin.
	CORS *CORSConfig
	// Metrics serves Prometheus metrics of the bridge on GET /metrics.
	Metrics  bool
	Zeroconf *ZeroConfig
}

// ZeroConfig describes the mDNS advertisement of the bridge.
type ZeroConfig struct {
	Enabled      bool
	InstanceName string
	ServiceType  string
	Domain       string
	Port         int
	TxtRecords   []string
}

type CORSConfig struct {
	Origins []string
}

type StubConfig struct {
	TrashDir string
}

// Flags returns the flag set shared by every command, bound to config keys
// by New.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.String("config", "", "path to a config file")
	fs.String("bus-address", "", "D-Bus address to use instead of the session bus")
	fs.Duration("timeout", defaultTimeout, "timeout of each remote call")
	fs.Bool("no-autostart", false, "do not let the bus start the file manager")
	fs.Bool("require-running", false, "fail when the file manager is not running")
	fs.Bool("verify", false, "check the remote interface by introspection before calling")
	fs.String("display", "", "display the window opens on")
	fs.String("startup-id", "", "startup notification id")
	fs.String("log-level", "", "DEBUG, INFO, WARN or ERROR")
	fs.StringToString("log-levels", nil, "per-component levels, e.g. api=DEBUG,trash=INFO")
	fs.Bool("api", false, "enable the HTTP bridge in serve mode")
	fs.String("listen", "", "address of the HTTP bridge")
	fs.String("trash-dir", "", "directory the stub service reports as trash")
	return fs
}

var flagKeys = map[string]string{
	"bus-address":     "bus.address",
	"timeout":         "bus.timeout",
	"require-running": "bus.require_running",
	"verify":          "bus.verify_interface",
	"display":         "display",
	"startup-id":      "startup_id",
	"log-level":       "LogLevel",
	"log-levels":      "log.levels",
	"api":             "api.enabled",
	"listen":          "api.listen",
	"trash-dir":       "stub.trash_dir",
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share")
	}
	return ""
}

func defaultInstanceName() string {
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		return AppName + " on " + hostname
	}
	return AppName
}

// zeroconfConfig advertises the port of listen. It fails when advertising is
// enabled for a bridge bound to loopback, which no other host could reach.
func zeroconfConfig(v *viper.Viper, listen string) (*ZeroConfig, error) {
	cfg := ZeroConfig{
		Enabled:      v.GetBool("api.enabled") && v.GetBool("api.zeroconf.enabled"),
		InstanceName: v.GetString("api.zeroconf.instance_name"),
		ServiceType:  v.GetString("api.zeroconf.service_type"),
		Domain:       v.GetString("api.zeroconf.domain"),
		TxtRecords:   []string{"version=" + AppVersion},
	}
	if !cfg.Enabled {
		return &cfg, nil
	}

	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return nil, fmt.Errorf("invalid api.listen %q: %w", listen, err)
	}
	if ip := net.ParseIP(host); host == "localhost" || (ip != nil && ip.IsLoopback()) {
		return nil, fmt.Errorf("api.zeroconf needs a non-loopback api.listen, got %q", listen)
	}
	if cfg.Port, err = strconv.Atoi(port); err != nil || cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid api.listen port %q", port)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bus.address", "")
	v.SetDefault("bus.timeout", defaultTimeout.String())
	v.SetDefault("bus.autostart", true)
	v.SetDefault("bus.require_running", false)
	v.SetDefault("bus.verify_interface", false)
	v.SetDefault("bus.introspect_ttl", "1m")

	v.SetDefault("display", "")
	v.SetDefault("startup_id", "")

	v.SetDefault("api.enabled", false)
	v.SetDefault("api.listen", "127.0.0.1:8019")
	v.SetDefault("api.cors.origins", []string{})
	v.SetDefault("api.metrics", false)

	v.SetDefault("api.zeroconf.enabled", false)
	v.SetDefault("api.zeroconf.instance_name", defaultInstanceName())
	v.SetDefault("api.zeroconf.service_type", "_lunar-remote._tcp")
	v.SetDefault("api.zeroconf.domain", "local.")

	v.SetDefault("stub.trash_dir", filepath.Join(dataHome(), "Trash", "files"))

	v.SetDefault("LogLevel", "WARN")
	v.SetDefault("log.levels", map[string]string{})
}

// New loads the configuration from defaults, the optional config file,
// LUNAR_REMOTE_* environment variables and fs, in increasing precedence.
// fs may be nil.
func New(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
		if f := fs.Lookup("no-autostart"); f != nil && f.Changed {
			noAutoStart, _ := fs.GetBool("no-autostart")
			v.Set("bus.autostart", !noAutoStart)
		}
	}

	if err := readConfigFile(v, fs); err != nil {
		return nil, err
	}

	timeout := v.GetDuration("bus.timeout")
	if timeout < 0 {
		return nil, fmt.Errorf("invalid timeout: %s", timeout)
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	apiCfg := ApiConfig{
		Enabled: v.GetBool("api.enabled"),
		Listen:  v.GetString("api.listen"),
	}
	if apiCfg.Enabled {
		if _, _, err := net.SplitHostPort(apiCfg.Listen); err != nil {
			return nil, fmt.Errorf("invalid api.listen %q: %w", apiCfg.Listen, err)
		}
	}
	if origins := v.GetStringSlice("api.cors.origins"); len(origins) > 0 {
		apiCfg.CORS = &CORSConfig{Origins: origins}
	}
	apiCfg.Metrics = v.GetBool("api.metrics")
	zcfg, err := zeroconfConfig(v, apiCfg.Listen)
	if err != nil {
		return nil, err
	}
	apiCfg.Zeroconf = zcfg

	busCfg := BusConfig{
		Address:        v.GetString("bus.address"),
		Timeout:        timeout,
		AutoStart:      v.GetBool("bus.autostart"),
		RequireRunning: v.GetBool("bus.require_running"),
		Verify:         v.GetBool("bus.verify_interface"),
		IntrospectTTL:  v.GetDuration("bus.introspect_ttl"),
		Display:        v.GetString("display"),
		StartupID:      v.GetString("startup_id"),
	}

	levels, err := componentLevels(v.GetStringMapString("log.levels"))
	if err != nil {
		return nil, err
	}

	stubCfg := StubConfig{
		TrashDir: v.GetString("stub.trash_dir"),
	}

	return &Config{
		Bus:       &busCfg,
		Api:       &apiCfg,
		Stub:      &stubCfg,
		LogLevel:  logger.ParseLevel(v.GetString("LogLevel"), logger.WARN),
		LogLevels: levels,
	}, nil
}

func componentLevels(raw map[string]string) (map[string]logger.Level, error) {
	const unknown = logger.Level(-1)
	levels := make(map[string]logger.Level, len(raw))
	for component, name := range raw {
		level := logger.ParseLevel(name, unknown)
		if level == unknown {
			return nil, fmt.Errorf("invalid level %q for log component %q", name, component)
		}
		levels[strings.Trim(component, "[] ")] = level
	}
	return levels, nil
}

func readConfigFile(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs != nil {
		if path, _ := fs.GetString("config"); path != "" {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", path, err)
			}
			return nil
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join("/etc", AppName))
	if home, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, AppName))
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional, continue with defaults if not found
		if _, isNotFound := err.(viper.ConfigFileNotFoundError); !isNotFound {
			logger.Warn("[config] failed to read config: %v", err)
		}
	}
	return nil
}
