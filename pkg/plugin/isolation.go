package plugin

import (
	"fmt"
	"slices"
)

// IsolationPolicy governs which capabilities registered actions may request.
type IsolationPolicy struct {
	AllowedCapabilities []Capability `yaml:"allowedCapabilities"`
	DeniedCapabilities  []Capability `yaml:"deniedCapabilities"`
}

// Permits returns an error when the requested capabilities violate the policy.
// An empty allow list permits everything that is not explicitly denied.
func (p IsolationPolicy) Permits(requested []Capability) error {
	for _, denied := range p.DeniedCapabilities {
		if slices.Contains(requested, denied) {
			return fmt.Errorf("capability %s is explicitly denied", denied)
		}
	}
	if len(p.AllowedCapabilities) == 0 {
		return nil
	}
	for _, capability := range requested {
		if !slices.Contains(p.AllowedCapabilities, capability) {
			return fmt.Errorf("capability %s not permitted", capability)
		}
	}
	return nil
}
