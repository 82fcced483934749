package serve

import (
	"fmt"
	"strconv"
	"strings"
)

// ServiceConfig holds everything the serve command needs to bring the
// service up. It is populated from command line flags and environment
// variables before run is called.
type ServiceConfig struct {
	// DataPath is the zip archive the stores are populated from at startup
	DataPath string

	// Endpoint is the address the HTTP API listens on
	Endpoint string

	// CacheSize is the per-entity-kind capacity of the response caches
	CacheSize int

	// LoadWorkers is the number of goroutines parsing archive entries
	LoadWorkers int

	// LogLevel is the level at which logs will be output (debug, info, warn, error)
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServiceConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// HTTP settings
	addSection("HTTP Server")
	addField("Endpoint", c.Endpoint)

	// Import settings
	addSection("Import")
	addField("Data Path", c.DataPath)
	addField("Load Workers", strconv.Itoa(c.LoadWorkers))

	// Cache settings
	addSection("Caching")
	addField("Cache Size", strconv.Itoa(c.CacheSize))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
