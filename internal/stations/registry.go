package stations

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnknownStopName is shown for stops that are not registered
const UnknownStopName = "Unknown Stop"

// StationRule configures a single stop on the board
type StationRule struct {
	StopID       string   `yaml:"id"`
	DisplayName  string   `yaml:"name"`
	AllowedTypes []string `yaml:"types,omitempty"` // empty means every type
}

// Registry maps stop ids to display names and transport-type allow-lists.
// It is built once and never mutated afterwards, so it can be shared
// between goroutines without locking.
type Registry struct {
	order []string
	rules map[string]rule
}

type rule struct {
	name    string
	allowed map[string]struct{} // nil means unrestricted
}

// fileFormat is the on-disk YAML layout
type fileFormat struct {
	Stations []StationRule `yaml:"stations"`
}

// DefaultRules is the reference deployment: two platforms served only by
// the U-Bahn and one mixed stop.
func DefaultRules() []StationRule {
	return []StationRule{
		{StopID: "900007105", DisplayName: "Wolliner Str. (Berlin)"},
		{StopID: "900007110", DisplayName: "U-Bernauer Str.", AllowedTypes: []string{"subway"}},
		{StopID: "900110006", DisplayName: "U-Eberswalder Str.", AllowedTypes: []string{"subway"}},
	}
}

// Default returns the registry for the reference deployment
func Default() *Registry {
	r, err := New(DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("stations: invalid default rules: %v", err))
	}
	return r
}

// New builds a registry, preserving rule order as the board's stop order
func New(rules []StationRule) (*Registry, error) {
	r := &Registry{
		order: make([]string, 0, len(rules)),
		rules: make(map[string]rule, len(rules)),
	}

	for i, sr := range rules {
		id := strings.TrimSpace(sr.StopID)
		if id == "" {
			return nil, fmt.Errorf("station %d: missing id", i)
		}
		if _, dup := r.rules[id]; dup {
			return nil, fmt.Errorf("station %s: duplicate id", id)
		}

		name := strings.TrimSpace(sr.DisplayName)
		if name == "" {
			name = UnknownStopName
		}

		var allowed map[string]struct{}
		if len(sr.AllowedTypes) > 0 {
			allowed = make(map[string]struct{}, len(sr.AllowedTypes))
			for _, t := range sr.AllowedTypes {
				allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
			}
		}

		r.order = append(r.order, id)
		r.rules[id] = rule{name: name, allowed: allowed}
	}

	return r, nil
}

// Load reads a YAML station file
func Load(path string) (*Registry, error) {
	// #nosec G304 -- path comes from operator configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stations file: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML
func Parse(data []byte) (*Registry, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing stations file: %w", err)
	}
	if len(f.Stations) == 0 {
		return nil, errors.New("no stations defined")
	}
	return New(f.Stations)
}

// LookupName returns the display name for a stop
func (r *Registry) LookupName(stopID string) string {
	if rl, ok := r.rules[stopID]; ok {
		return rl.name
	}
	return UnknownStopName
}

// IsTypeAllowed reports whether departures of transportType may be shown
// for stopID. Unregistered stops and stops without an allow-list accept
// every type.
func (r *Registry) IsTypeAllowed(stopID, transportType string) bool {
	rl, ok := r.rules[stopID]
	if !ok || rl.allowed == nil {
		return true
	}
	_, allowed := rl.allowed[transportType]
	return allowed
}

// IsRestricted reports whether a stop has an allow-list
func (r *Registry) IsRestricted(stopID string) bool {
	rl, ok := r.rules[stopID]
	return ok && rl.allowed != nil
}

// StopIDs returns the configured stops in board order
func (r *Registry) StopIDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Len returns the number of configured stops
func (r *Registry) Len() int {
	return len(r.order)
}
