package api

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expidus/lunar-remote/config"
)

type fakeService struct {
	mu       sync.Mutex
	shutdown int
}

func (f *fakeService) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdown++
}

func (f *fakeService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdown
}

func stubRegister(t *testing.T, fn func(instance, service, domain string, port int, text []string) (shutdowner, error)) {
	t.Helper()
	orig := register
	register = func(instance, service, domain string, port int, text []string, _ []net.Interface) (shutdowner, error) {
		return fn(instance, service, domain, port, text)
	}
	t.Cleanup(func() { register = orig })
}

func zeroconfConfig() *config.ZeroConfig {
	return &config.ZeroConfig{
		Enabled:      true,
		InstanceName: "lunar-remote on test",
		ServiceType:  "_lunar-remote._tcp",
		Domain:       "local.",
		Port:         8020,
		TxtRecords:   []string{"version=test"},
	}
}

func TestNewAdvertiser_Disabled(t *testing.T) {
	assert.Nil(t, newAdvertiser(nil))
	assert.Nil(t, newAdvertiser(&config.ZeroConfig{Enabled: false}))
}

func TestAdvertiser_PublishesUntilCancel(t *testing.T) {
	svc := &fakeService{}
	var gotPort int
	var gotType string
	stubRegister(t, func(instance, service, domain string, port int, text []string) (shutdowner, error) {
		gotPort, gotType = port, service
		return svc, nil
	})

	a := newAdvertiser(zeroconfConfig())
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, a.Start(ctx))
	assert.Equal(t, 8020, gotPort)
	assert.Equal(t, "_lunar-remote._tcp", gotType)
	assert.Error(t, a.Start(ctx), "second publish is refused")

	cancel()
	require.Eventually(t, func() bool { return svc.count() == 1 }, time.Second, 5*time.Millisecond)

	a.Shutdown()
	assert.Equal(t, 1, svc.count(), "shutdown is idempotent")
}

func TestAdvertiser_RegisterError(t *testing.T) {
	stubRegister(t, func(string, string, string, int, []string) (shutdowner, error) {
		return nil, errors.New("no multicast interface")
	})

	a := newAdvertiser(zeroconfConfig())

	assert.Error(t, a.Start(context.Background()))
	a.Shutdown()
}

func TestServerRun_StopsOnCancel(t *testing.T) {
	svc := &fakeService{}
	stubRegister(t, func(string, string, string, int, []string) (shutdowner, error) {
		return svc, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cfg := &config.ApiConfig{Enabled: true, Listen: "127.0.0.1:0", Zeroconf: zeroconfConfig()}
	server := NewServer(ctx, cfg, nil)
	require.NotNil(t, server)

	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Eventually(t, func() bool { return svc.count() == 1 }, time.Second, 5*time.Millisecond)
}
