// Package config holds simulation-wide configuration: platform, scale
// factors, the virtual network pool, and clock accuracy (§6).
package config

import (
	"fmt"
	"net/netip"
)

// Platform affects only the instruction-byte-length distribution used when
// synthesizing packet payloads.
type Platform string

const (
	PlatformX86 Platform = "x86-64"
	PlatformARM Platform = "ARM"
)

// PowerFormula selects the host power-usage model (§6).
type PowerFormula string

const (
	PowerFormulaLog    PowerFormula = "log"
	PowerFormulaLinear PowerFormula = "linear"
)

// Simulation groups the scalar knobs that turn physical units into
// simulated ones and the virtual IP pool used for Service addresses.
type Simulation struct {
	Platform            Platform
	CPUAcceleration     int
	RAMAmplifier        int
	PacketSizeAmplifier int
	Accuracy            int
	PowerFormula         PowerFormula

	VirtualNetwork netip.Prefix

	pool   netip.Addr
	poolOK bool
}

// Default returns a Simulation config with conservative defaults: no
// acceleration/amplification, 4 digits of clock accuracy, x86-64
// platform, logarithmic power formula.
func Default() *Simulation {
	return &Simulation{
		Platform:            PlatformX86,
		CPUAcceleration:     1,
		RAMAmplifier:        1,
		PacketSizeAmplifier: 1,
		Accuracy:            4,
		PowerFormula:        PowerFormulaLog,
	}
}

// SetVirtualNetwork parses cidr and resets the service-IP allocation
// cursor to the first usable address. Returns an error for a malformed
// CIDR (a configuration error, fatal at setup per §7).
func (s *Simulation) SetVirtualNetwork(cidr string) error {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return fmt.Errorf("config: invalid virtual_network CIDR %q: %w", cidr, err)
	}
	s.VirtualNetwork = p.Masked()
	s.pool = s.VirtualNetwork.Addr()
	s.poolOK = true
	return nil
}

// NextServiceIP draws the next unused address from the virtual network
// pool. Panics if SetVirtualNetwork was never called — a configuration
// error that should be caught at setup.
func (s *Simulation) NextServiceIP() netip.Addr {
	if !s.poolOK {
		panic("config: virtual_network not configured")
	}
	ip := s.pool
	s.pool = s.pool.Next()
	if !s.VirtualNetwork.Contains(s.pool) {
		panic("config: virtual_network pool exhausted")
	}
	return ip
}
