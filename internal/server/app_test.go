package server

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/simplog/internal/logging"
	"github.com/dmitrijs2005/simplog/internal/server/config"
	"github.com/dmitrijs2005/simplog/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.ShutdownTimeout = time.Second
	return c
}

type failingMigrations struct {
	*repomanager.MemoryRepositoryManager
	closed bool
}

func (f *failingMigrations) RunMigrations(context.Context) error { return errors.New("boom") }

func (f *failingMigrations) Close() error {
	f.closed = true
	return nil
}

func TestNewApp_InMemoryStoreWhenNoDSN(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(), logging.Nop{})
	require.NoError(t, err)

	_, ok := app.store.(*repomanager.MemoryRepositoryManager)
	assert.True(t, ok)
	assert.NotNil(t, app.opsServer)
}

func TestNewApp_MigrationFailureClosesStore(t *testing.T) {
	orig := openStore
	t.Cleanup(func() { openStore = orig })

	fake := &failingMigrations{MemoryRepositoryManager: repomanager.NewMemoryRepositoryManager()}
	openStore = func(context.Context, *config.Config, ...repomanager.Option) (repomanager.RepositoryManager, error) {
		return fake, nil
	}

	_, err := NewApp(context.Background(), testConfig(), logging.Nop{})
	assert.ErrorContains(t, err, "migrations error")
	assert.True(t, fake.closed)
}

// warnLogger records Warn messages.
type warnLogger struct {
	logging.Nop
	warnings []string
}

func (l *warnLogger) Warn(_ context.Context, msg string, _ ...any) {
	l.warnings = append(l.warnings, msg)
}

func (l *warnLogger) With(...any) logging.Logger { return l }

func TestNewApp_WarnsAboutDefaultSecret(t *testing.T) {
	orig := openStore
	t.Cleanup(func() { openStore = orig })
	openStore = func(context.Context, *config.Config, ...repomanager.Option) (repomanager.RepositoryManager, error) {
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	tests := []struct {
		name     string
		dsn      string
		secret   string
		wantWarn bool
	}{
		{"database with default secret", "postgres://db", config.DefaultSecretKey, true},
		{"database with own secret", "postgres://db", "s3cret", false},
		{"in-memory development run", "", config.DefaultSecretKey, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig()
			c.DatabaseDSN = tt.dsn
			c.SecretKey = tt.secret
			log := &warnLogger{}

			_, err := NewApp(context.Background(), c, log)
			require.NoError(t, err)

			if tt.wantWarn {
				require.Len(t, log.warnings, 1)
				assert.Contains(t, log.warnings[0], config.EnvSecretKey)
			} else {
				assert.Empty(t, log.warnings)
			}
		})
	}
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(), logging.Nop{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestApp_RunReportsListenFailure(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()

	c := testConfig()
	c.EndpointAddrGRPC = lis.Addr().String()

	app, err := NewApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "grpc")
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after listen failure")
	}
}
