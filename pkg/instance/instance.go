// Package instance names the running process for lock ownership and logs.
package instance

import (
	"os"
	"strings"
)

const fallbackID = "worker-0"

// ID returns SSM_INSTANCE_ID, the hostname, or a fixed fallback.
func ID() string {
	if id := strings.TrimSpace(os.Getenv("SSM_INSTANCE_ID")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
