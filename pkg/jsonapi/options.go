package jsonapi

import (
	"fmt"
	"net/http"
	"strings"
)

// Mode is a named encoding preset
type Mode uint8

const (
	// ClientCreate encodes a new resource for a POST request
	ClientCreate Mode = iota
	// ClientUpdate encodes a resource for a PATCH or PUT request
	ClientUpdate
	// ClientDelete encodes a resource for a DELETE request
	ClientDelete
	// ServerRead encodes a read response with side-loaded resources
	ServerRead
)

// Modes returns every preset in declaration order
func Modes() []Mode {
	return []Mode{ClientCreate, ClientUpdate, ClientDelete, ServerRead}
}

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ClientCreate:
		return "client-create"
	case ClientUpdate:
		return "client-update"
	case ClientDelete:
		return "client-delete"
	case ServerRead:
		return "server-read"
	default:
		return "unknown"
	}
}

// ParseMode converts a preset name to a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client-create", "create":
		return ClientCreate, nil
	case "client-update", "update":
		return ClientUpdate, nil
	case "client-delete", "delete":
		return ClientDelete, nil
	case "server-read", "read":
		return ServerRead, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	if m > ServerRead {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MustHaveEmptyID reports whether the id is omitted
func (m Mode) MustHaveEmptyID() bool {
	return m == ClientCreate
}

// MustHaveEmptyTimestamps reports whether the timestamps attribute is stripped
func (m Mode) MustHaveEmptyTimestamps() bool {
	switch m {
	case ClientCreate, ClientUpdate, ClientDelete:
		return true
	default:
		return false
	}
}

// MapIncluded reports whether related resources are side-loaded
func (m Mode) MapIncluded() bool {
	return m == ServerRead
}

// ModeForMethod returns the preset a client or server uses for an HTTP method
func ModeForMethod(method string) (Mode, error) {
	switch strings.ToUpper(method) {
	case http.MethodPost:
		return ClientCreate, nil
	case http.MethodPatch, http.MethodPut:
		return ClientUpdate, nil
	case http.MethodDelete:
		return ClientDelete, nil
	case http.MethodGet, http.MethodHead:
		return ServerRead, nil
	default:
		return 0, fmt.Errorf("%w: no preset for method %s", ErrUnknownMode, method)
	}
}

// Config holds the flags derived for one encode call
type Config struct {
	Mode            Mode
	EmptyID         bool
	EmptyTimestamps bool
	MapIncluded     bool
	// Meta is attached as the document's root meta when non-nil
	Meta map[string]any
}

// Option configures one encode call
type Option func(*Config)

// NewConfig derives a fresh configuration; ClientCreate applies when no mode,
// or a mode outside the presets, is given
func NewConfig(opts ...Option) Config {
	cfg := Config{Mode: ClientCreate}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Mode > ServerRead {
		cfg.Mode = ClientCreate
	}
	cfg.EmptyID = cfg.Mode.MustHaveEmptyID()
	cfg.EmptyTimestamps = cfg.Mode.MustHaveEmptyTimestamps()
	cfg.MapIncluded = cfg.Mode.MapIncluded()
	return cfg
}

// WithMode selects a preset
func WithMode(m Mode) Option {
	return func(c *Config) {
		c.Mode = m
	}
}

// ForCreate selects the client-create preset
func ForCreate() Option { return WithMode(ClientCreate) }

// ForUpdate selects the client-update preset
func ForUpdate() Option { return WithMode(ClientUpdate) }

// ForDelete selects the client-delete preset
func ForDelete() Option { return WithMode(ClientDelete) }

// ForRead selects the server-read preset
func ForRead() Option { return WithMode(ServerRead) }

// WithMeta attaches a root-level meta object; it combines with any preset
func WithMeta(meta map[string]any) Option {
	return func(c *Config) {
		if meta == nil {
			c.Meta = nil
			return
		}
		c.Meta = make(map[string]any, len(meta))
		for k, v := range meta {
			c.Meta[k] = v
		}
	}
}
