package loader

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
)

// ConnectFunc dials a concrete Loader implementation for a DSN.
type ConnectFunc func(ctx context.Context, dsn string, logger *logrus.Logger) (Loader, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]ConnectFunc{}
)

// Register associates a URL scheme with a Loader constructor. Dialect
// packages call this from an init func so that importing the dialect
// package for its side effect is enough to make New recognize its scheme —
// this package never imports a concrete dialect directly, avoiding an
// import cycle between the contract and its implementations.
func Register(scheme string, fn ConnectFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[scheme] = fn
}

// New connects and returns the Loader registered for dsn's URL scheme.
// Callers must blank-import the dialect package(s) they need registered
// (e.g. internal/loader/postgres) before calling New.
func New(ctx context.Context, dsn string, logger *logrus.Logger) (Loader, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}

	registryMu.RLock()
	fn, ok := registry[u.Scheme]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnsupportedSchemeError{Scheme: u.Scheme, DSN: dsn}
	}
	return fn(ctx, dsn, logger)
}
