package cache

import (
	"fmt"
	"net"
	"os"
	"sync"

	gocache "github.com/patrickmn/go-cache"
)

// Well-known keys populated at agent bootstrap
const (
	KeyHostname = "HOSTNAME"
	KeyIP       = "IP"
)

// Cache is the process-wide key/value state shared by role handlers
type Cache interface {
	// GetString returns the value for key, or "" when absent
	GetString(key string) string

	// Set stores value under key
	Set(key, value string) error
}

// MemoryCache keeps values for the lifetime of the process
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache creates an in-memory cache without expiry
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{c: gocache.New(gocache.NoExpiration, 0)}
}

func (m *MemoryCache) GetString(key string) string {
	v, found := m.c.Get(key)
	if !found {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (m *MemoryCache) Set(key, value string) error {
	m.c.Set(key, value, gocache.NoExpiration)
	return nil
}

var (
	defaultOnce  sync.Once
	defaultCache *MemoryCache
)

// Default returns the process-wide memory cache
func Default() *MemoryCache {
	defaultOnce.Do(func() {
		defaultCache = NewMemoryCache()
	})
	return defaultCache
}

// Bootstrap records the node hostname and IP in c when they are not set yet
func Bootstrap(c Cache) error {
	if c.GetString(KeyHostname) == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("failed to read hostname: %w", err)
		}
		if err := c.Set(KeyHostname, hostname); err != nil {
			return err
		}
	}

	if c.GetString(KeyIP) == "" {
		ip, err := LocalIP()
		if err != nil {
			return err
		}
		if err := c.Set(KeyIP, ip); err != nil {
			return err
		}
	}
	return nil
}

// LocalIP returns the first non-loopback IPv4 address of the node
func LocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("failed to list interface addresses: %w", err)
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}
	return "127.0.0.1", nil
}
