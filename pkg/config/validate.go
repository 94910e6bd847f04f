package config

import (
	"fmt"
	"strings"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	Path    string // e.g., "discovery.bootstrap_peers[0]"
	Message string // e.g., "invalid multiaddr"
	Hint    string // e.g., "expected /ip{4,6}/.../tcp/<port>/p2p/<peerID>"
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", e.Path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate performs validation of the entire config. It aggregates all errors
// and returns them, allowing the caller to print all issues at once.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateNode()...)
	errs = append(errs, c.validateDiscovery()...)
	errs = append(errs, c.validatePing()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func (c *Config) validateNode() []error {
	var errs []error

	if len(c.Node.ListenAddresses) == 0 {
		errs = append(errs, ValidationError{
			Path:    "node.listen_addresses",
			Message: "must not be empty",
		})
	}

	for i, addr := range c.Node.ListenAddresses {
		if _, err := multiaddr.NewMultiaddr(addr); err != nil {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("node.listen_addresses[%d]", i),
				Message: "invalid multiaddr",
				Hint:    err.Error(),
			})
		}
	}

	if c.Node.DataDir == "" {
		errs = append(errs, ValidationError{
			Path:    "node.data_dir",
			Message: "must not be empty",
		})
	}

	return errs
}

func (c *Config) validateDiscovery() []error {
	var errs []error

	for i, addr := range c.Discovery.BootstrapPeers {
		path := fmt.Sprintf("discovery.bootstrap_peers[%d]", i)
		ma, err := multiaddr.NewMultiaddr(addr)
		if err != nil {
			errs = append(errs, ValidationError{
				Path:    path,
				Message: "invalid multiaddr",
				Hint:    "expected /ip{4,6}/.../tcp/<port>/p2p/<peerID>",
			})
			continue
		}
		if _, err := peer.AddrInfoFromP2pAddr(ma); err != nil {
			errs = append(errs, ValidationError{
				Path:    path,
				Message: "multiaddr does not include a peer identity",
				Hint:    "append /p2p/<peerID>",
			})
		}
	}

	if c.Discovery.ResolveAttempts < 0 {
		errs = append(errs, ValidationError{
			Path:    "discovery.resolve_attempts",
			Message: "must not be negative (0 means retry until canceled)",
		})
	}

	return errs
}

func (c *Config) validatePing() []error {
	var errs []error

	if c.Ping.ActorName == "" {
		errs = append(errs, ValidationError{
			Path:    "ping.actor_name",
			Message: "must not be empty",
		})
	}

	if c.Ping.Count < 0 {
		errs = append(errs, ValidationError{
			Path:    "ping.count",
			Message: "must not be negative",
		})
	}

	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Path:    "logging.level",
			Message: fmt.Sprintf("unknown level %q", c.Logging.Level),
			Hint:    "one of: debug, info, warn, error",
		})
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console":
	default:
		errs = append(errs, ValidationError{
			Path:    "logging.format",
			Message: fmt.Sprintf("unknown format %q", c.Logging.Format),
			Hint:    "one of: json, console",
		})
	}

	return errs
}
