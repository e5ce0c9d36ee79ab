// Package logger holds the process-wide zap sugared logger shared by the API
// server, the migration CLI, and the ingest worker.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init builds the shared logger once. The "production" environment gets zap's
// JSON encoder; every other environment gets the console encoder so local
// runs stay readable.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		if env == "production" {
			base, err = zap.NewProduction()
		} else {
			base, err = zap.NewDevelopment()
		}

		if err != nil {
			// A failed build degrades to a nop logger rather than panicking.
			base = zap.NewNop()
		}

		sugar = base.Sugar()
	})
}

// Get returns the shared sugared logger, initializing a development logger
// when Init was never called (as in tests).
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes buffered entries. Deferred in every main.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
