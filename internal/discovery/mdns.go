package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/customers/internal/logging"
)

const (
	// ServiceType is the mDNS service type customers APIs advertise
	ServiceType = "_customers._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for service discovery
	DefaultScanTimeout = 3 * time.Second
)

var (
	// ErrNoServices is returned by PickOne when nothing was found
	ErrNoServices = errors.New("no customers API found on the local network")

	// ErrMultipleServices is returned by PickOne when the choice is ambiguous
	ErrMultipleServices = errors.New("more than one customers API found")
)

// Scanner handles mDNS service discovery
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Browse collects every service that answers before the timeout or ctx
// ends. Services seen more than once are reported once.
func (s *Scanner) Browse(ctx context.Context) ([]Service, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	services := make([]Service, 0)
	seen := make(map[string]bool)
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return services, nil
			}
			svc, ok := parseServiceEntry(entry)
			if !ok || seen[svc.Name] {
				continue
			}
			seen[svc.Name] = true
			logging.Debug("Discovered customers API",
				zap.String("name", svc.Name),
				zap.String("url", svc.URL()),
			)
			services = append(services, svc)

		case <-ctx.Done():
			return services, nil
		}
	}
}

// Browse is a convenience function to scan with a custom timeout
func Browse(ctx context.Context, timeout time.Duration) ([]Service, error) {
	scanner := NewScanner()
	if timeout > 0 {
		scanner.Timeout = timeout
	}
	return scanner.Browse(ctx)
}

// PickOne returns the only service in services
func PickOne(services []Service) (Service, error) {
	switch len(services) {
	case 0:
		return Service{}, ErrNoServices
	case 1:
		return services[0], nil
	default:
		names := make([]string, len(services))
		for i, svc := range services {
			names[i] = svc.String()
		}
		return Service{}, fmt.Errorf("%w: %s", ErrMultipleServices, strings.Join(names, "; "))
	}
}

// Advertise announces a customers API on port under the instance name and
// keeps the announcement up until ctx ends.
func Advertise(ctx context.Context, name string, port int, metadata map[string]string) error {
	text := make([]string, 0, len(metadata))
	for k, v := range metadata {
		text = append(text, k+"="+v)
	}

	server, err := zeroconf.Register(name, ServiceType, ServiceDomain, port, text, nil)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}
	defer server.Shutdown()

	logging.Info("Advertising via mDNS",
		zap.String("name", name),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)

	<-ctx.Done()
	return nil
}

// parseServiceEntry converts a zeroconf service entry to a Service.
// Entries without an address or port are skipped.
func parseServiceEntry(entry *zeroconf.ServiceEntry) (Service, bool) {
	if entry == nil || entry.Instance == "" || entry.Port == 0 {
		return Service{}, false
	}

	// Get IP address (prefer IPv4)
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" && entry.HostName == "" {
		return Service{}, false
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return Service{
		Name:         unescapeInstance(entry.Instance),
		Host:         entry.HostName,
		IP:           ip,
		Port:         entry.Port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}, true
}

// unescapeInstance undoes the DNS escaping zeroconf leaves in instance names
func unescapeInstance(name string) string {
	return strings.ReplaceAll(name, `\ `, " ")
}
