package config

import (
	"time"

	"github.com/multiformats/go-multiaddr"
)

// Config represents the main configuration for a kameo-ping process
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Ping      PingConfig      `yaml:"ping"`
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// NodeConfig contains node-specific configuration
type NodeConfig struct {
	ListenAddresses []string `yaml:"listen_addresses"` // LibP2P listen addresses
	DataDir         string   `yaml:"data_dir"`         // Identity and state directory
	MaxConnections  int      `yaml:"max_connections"`  // Maximum peer connections
}

// DiscoveryConfig contains peer discovery configuration
type DiscoveryConfig struct {
	BootstrapPeers   []string      `yaml:"bootstrap_peers"`   // Peer multiaddrs to connect to at startup
	MDNSServiceTag   string        `yaml:"mdns_service_tag"`  // mDNS service tag for LAN discovery
	PresenceTopic    string        `yaml:"presence_topic"`    // GossipSub topic for presence announcements
	PresenceInterval time.Duration `yaml:"presence_interval"` // Interval between presence announcements
	ResolveAttempts  int           `yaml:"resolve_attempts"`  // Max attempts to resolve a registered actor
	ResolveInterval  time.Duration `yaml:"resolve_interval"`  // Delay between resolution attempts
}

// PingConfig contains ping exchange configuration
type PingConfig struct {
	ActorName    string        `yaml:"actor_name"`    // Registered name of the ping actor
	Count        int           `yaml:"count"`         // Number of pings the client sends
	Interval     time.Duration `yaml:"interval"`      // Delay between consecutive pings
	AskTimeout   time.Duration `yaml:"ask_timeout"`   // Per-request timeout
	ServerAddr   string        `yaml:"server_addr"`   // Explicit server multiaddr (empty = discover)
	ClientPrefix string        `yaml:"client_prefix"` // Message prefix sent with each ping
}

// HTTPConfig contains the optional status endpoint configuration
type HTTPConfig struct {
	Enabled    bool   `yaml:"enabled"`     // Enable the HTTP status endpoint
	ListenAddr string `yaml:"listen_addr"` // Address to listen on (e.g., ":8080")
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // json, console
	OutputFile string `yaml:"output_file"` // Empty for stdout
}

// ParseMultiaddrs converts the configured listen addresses to multiaddr objects
func (c *Config) ParseMultiaddrs() ([]multiaddr.Multiaddr, error) {
	var addrs []multiaddr.Multiaddr
	for _, addr := range c.Node.ListenAddresses {
		ma, err := multiaddr.NewMultiaddr(addr)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, ma)
	}
	return addrs, nil
}

// DefaultServerConfig returns the default configuration for the responder process
func DefaultServerConfig() *Config {
	return &Config{
		Node: NodeConfig{
			ListenAddresses: []string{
				"/ip4/0.0.0.0/tcp/36341",
				"/ip4/0.0.0.0/udp/36341/quic-v1",
			},
			DataDir:        "./data/ping-server",
			MaxConnections: 50,
		},
		Discovery: defaultDiscovery(),
		Ping: PingConfig{
			ActorName:  "ping-actor",
			AskTimeout: 120 * time.Second,
		},
		HTTP: HTTPConfig{
			Enabled:    false,
			ListenAddr: ":8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultClientConfig returns the default configuration for the initiator process
func DefaultClientConfig() *Config {
	return &Config{
		Node: NodeConfig{
			ListenAddresses: []string{
				"/ip4/0.0.0.0/tcp/0",
			},
			DataDir:        "./data/ping-client",
			MaxConnections: 50,
		},
		Discovery: defaultDiscovery(),
		Ping: PingConfig{
			ActorName:    "ping-actor",
			Count:        100,
			Interval:     2 * time.Second,
			AskTimeout:   120 * time.Second,
			ClientPrefix: "Hello from client",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func defaultDiscovery() DiscoveryConfig {
	return DiscoveryConfig{
		BootstrapPeers:   []string{},
		MDNSServiceTag:   "kameo-ping",
		PresenceTopic:    "kameo-ping/presence/v1",
		PresenceInterval: 10 * time.Second,
		ResolveAttempts:  10,
		ResolveInterval:  3 * time.Second,
	}
}
