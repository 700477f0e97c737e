package session

import (
	"fmt"
	"strings"
	"time"
)

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open returns the store named by driver.
func Open(driver, path string, ttl time.Duration) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		return NewSQLiteStore(path, ttl)
	case DriverMemory:
		return NewMemoryStore(ttl), nil
	default:
		return nil, fmt.Errorf("unsupported session store driver %q", driver)
	}
}
