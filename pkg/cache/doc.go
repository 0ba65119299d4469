/*
Package cache holds process-wide node state for rolecfg, such as the
HOSTNAME and IP recorded when the agent starts.

Configuration runs read these values to fill the ${host} and ${ip}
placeholders, and the Ranger Admin strategy uses HOSTNAME to build keytab
principals. The cache is filled once by Bootstrap and read by every
command after that.

# Architecture

	┌──────────────────── NODE STATE CACHE ─────────────────────┐
	│                                                             │
	│  cache.Bootstrap(c)                                         │
	│    - HOSTNAME  <- os.Hostname()      (only when unset)      │
	│    - IP        <- first non-loopback IPv4 (only when unset) │
	│                     │                                       │
	│          ┌──────────▼──────────┐                            │
	│          │    Cache interface   │                            │
	│          │  GetString / Set     │                            │
	│          └─────┬──────────┬─────┘                            │
	│                │          │                                  │
	│   ┌────────────▼───┐  ┌───▼─────────────────────┐           │
	│   │  MemoryCache   │  │  BoltCache              │           │
	│   │  go-cache      │  │  bbolt file             │           │
	│   │  no expiry     │  │  bucket "node"          │           │
	│   │  process only  │  │  survives restarts      │           │
	│   └────────────────┘  └─────────────────────────┘           │
	└─────────────────────────────────────────────────────────────┘

# Core Components

MemoryCache:
  - Wraps a go-cache instance created with NoExpiration
  - Default() returns a single shared instance for the process
  - Used when no state database is configured

BoltCache:
  - Stores keys in the "node" bucket of a bbolt database
  - The bucket is created on open
  - Keys() lists everything stored, for `rolecfg cache get`

# Usage

	c, err := cache.NewBoltCache("/var/lib/rolecfg/state.db")
	if err != nil {
		return err
	}
	defer c.Close()

	if err := cache.Bootstrap(c); err != nil {
		return err
	}
	host := c.GetString(cache.KeyHostname)

Values an operator sets with `rolecfg cache set HOSTNAME node1.example.com`
win over what Bootstrap would detect, because Bootstrap only fills keys
that are empty.

# Integration Points

  - pkg/configure: node context for placeholder substitution
  - pkg/strategy: hostname for keytab principals
  - cmd/rolecfg: opens the cache selected by stateDB / --state-db

# Troubleshooting

Wrong hostname in rendered files:
  - Check `rolecfg cache get` for a stale HOSTNAME left in the state database
  - Overwrite it with `rolecfg cache set HOSTNAME <name>`

Database is locked:
  - bbolt takes an exclusive file lock; only one rolecfg command at a
    time can use a given state database

# See Also

  - pkg/configure for the placeholder keys
  - go.etcd.io/bbolt for the storage engine
*/
package cache
