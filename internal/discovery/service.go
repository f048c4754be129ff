package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Service is a customers API found on the local network
type Service struct {
	// Name is the mDNS instance name (e.g., "customers-mock on devbox")
	Name string `json:"name"`

	// Host is the advertised hostname (e.g., "devbox.local.")
	Host string `json:"host"`

	// IP is the first advertised address, IPv4 preferred
	IP string `json:"ip"`

	// Port is the HTTP port
	Port int `json:"port"`

	// Metadata contains the TXT record data
	// Common fields: "path=/api/customers", "version=1.2.0"
	Metadata map[string]string `json:"metadata,omitempty"`

	// DiscoveredAt is when the service was seen
	DiscoveredAt time.Time `json:"discoveredAt"`
}

// String returns a human-readable string representation of the service
func (s Service) String() string {
	return fmt.Sprintf("%s (%s) at %s", s.Name, s.Host, s.URL())
}

// URL returns the HTTP base URL of the API
func (s Service) URL() string {
	host := s.IP
	if host == "" {
		host = s.Host
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(s.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s Service) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
