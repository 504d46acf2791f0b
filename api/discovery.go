package api

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/grandcat/zeroconf"

	"github.com/expidus/lunar-remote/config"
	"github.com/expidus/lunar-remote/logger"
)

type shutdowner interface {
	Shutdown()
}

// register publishes an mDNS service; replaced in tests.
var register = func(instance, service, domain string, port int, text []string, ifaces []net.Interface) (shutdowner, error) {
	return zeroconf.Register(instance, service, domain, port, text, ifaces)
}

// advertiser publishes the bridge on the local network while the server runs.
type advertiser struct {
	cfg    *config.ZeroConfig
	mu     sync.Mutex
	server shutdowner
}

func newAdvertiser(cfg *config.ZeroConfig) *advertiser {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return &advertiser{cfg: cfg}
}

// Start publishes the service and withdraws it once ctx is done.
func (a *advertiser) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		return errors.New("service already published")
	}

	server, err := register(a.cfg.InstanceName, a.cfg.ServiceType, a.cfg.Domain, a.cfg.Port, a.cfg.TxtRecords, nil)
	if err != nil {
		return err
	}
	a.server = server
	logger.Info("[discovery] service '%s' published (type: %s, port: %d)", a.cfg.InstanceName, a.cfg.ServiceType, a.cfg.Port)

	go func() {
		<-ctx.Done()
		a.Shutdown()
	}()
	return nil
}

func (a *advertiser) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
		logger.Debug("[discovery] service '%s' withdrawn", a.cfg.InstanceName)
	}
}
