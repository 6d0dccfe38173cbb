package physics

import (
	"errors"
	"strings"
)

var ErrUnsupported = errors.New("capability not supported by vehicle controller")

// Capability is a control primitive that a vehicle controller may or may not
// provide.
type Capability uint32

const (
	CapEngineForce Capability = 1 << iota
	CapBrake
	CapSteering
	CapSuspensionStiffness
	CapSuspensionCompression
	CapSuspensionRelaxation
	CapMaxSuspensionTravel
	CapMaxSuspensionForce
	CapFrictionSlip
	CapImpulse
)

// AllCapabilities is a fully featured controller.
const AllCapabilities = CapEngineForce | CapBrake | CapSteering | CapSuspensionStiffness |
	CapSuspensionCompression | CapSuspensionRelaxation | CapMaxSuspensionTravel |
	CapMaxSuspensionForce | CapFrictionSlip | CapImpulse

var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{CapEngineForce, "engine_force"},
	{CapBrake, "brake"},
	{CapSteering, "steering"},
	{CapSuspensionStiffness, "suspension_stiffness"},
	{CapSuspensionCompression, "suspension_compression"},
	{CapSuspensionRelaxation, "suspension_relaxation"},
	{CapMaxSuspensionTravel, "max_suspension_travel"},
	{CapMaxSuspensionForce, "max_suspension_force"},
	{CapFrictionSlip, "friction_slip"},
	{CapImpulse, "impulse"},
}

// Has reports whether every bit of other is present.
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

func (c Capability) String() string {
	names := []string{}

	for _, entry := range capabilityNames {
		if c.Has(entry.cap) {
			names = append(names, entry.name)
		}
	}

	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, "|")
}

// ParseCapabilities converts a list of capability names into a set.
// Unknown names are returned separately.
func ParseCapabilities(names []string) (Capability, []string) {
	var (
		set     Capability
		unknown []string
	)

	for _, name := range names {
		found := false

		for _, entry := range capabilityNames {
			if entry.name == name {
				set |= entry.cap
				found = true

				break
			}
		}

		if !found {
			unknown = append(unknown, name)
		}
	}

	return set, unknown
}
