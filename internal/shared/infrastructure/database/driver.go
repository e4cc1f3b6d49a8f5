package database

import "strings"

// Driver names a persistence backend for learned focus scores.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
)

// String returns the string representation of the driver.
func (d Driver) String() string {
	return string(d)
}

// ParseDriver maps a configured store name to a Driver. An empty name or
// "auto" is resolved from url via DetectDriver.
func ParseDriver(name, url string) Driver {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		return DetectDriver(url)
	}
	return Driver(name)
}

// DetectDriver guesses the backend from a connection string. An empty URL
// selects SQLite for zero-config local use.
func DetectDriver(url string) Driver {
	switch {
	case url == "":
		return DriverSQLite
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		return DriverRedis
	case strings.HasPrefix(url, "sqlite://"),
		strings.HasPrefix(url, "file:"),
		strings.HasSuffix(url, ".db"),
		strings.HasSuffix(url, ".sqlite"),
		strings.HasSuffix(url, ".sqlite3"):
		return DriverSQLite
	default:
		return DriverPostgres
	}
}

// IsValid returns true if the driver is a known type.
func (d Driver) IsValid() bool {
	switch d {
	case DriverMemory, DriverSQLite, DriverPostgres, DriverRedis:
		return true
	default:
		return false
	}
}
