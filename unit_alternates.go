package drivesim

import (
	"github.com/wandip/drivesim/internal/units"
	"github.com/wandip/drivesim/pkg/models"
)

func (s Snapshot) SpeedKPH() models.Reading {
	return s.Speed.Map(units.MetersPerSecondToKilometersPerHour)
}

func (s Snapshot) SpeedMPH() models.Reading {
	return s.Speed.Map(units.MetersPerSecondToMilesPerHour)
}

func (s Snapshot) HeadingDegrees() models.Reading {
	return s.Heading.Map(units.RadiansToDegrees)
}

func (s Snapshot) SteeringAngleDegrees() models.Reading {
	return s.SteeringAngle.Map(units.RadiansToDegrees)
}

func (s Snapshot) EngineForceKilonewtons() models.Reading {
	return s.EngineForce.Map(units.NewtonsToKilonewtons)
}

func (s Snapshot) BrakeForceKilonewtons() models.Reading {
	return s.BrakeForce.Map(units.NewtonsToKilonewtons)
}

func (s Snapshot) WheelForcesKilonewtons() models.CornerReading {
	return s.WheelForces.Map(units.NewtonsToKilonewtons)
}

func (s Snapshot) SuspensionLengthsMillimeters() models.CornerReading {
	return s.SuspensionLengths.Map(units.MetersToMillimeters)
}

func (s Snapshot) SuspensionLengthsInches() models.CornerReading {
	return s.SuspensionLengths.Map(units.MetersToInches)
}

// AltitudeFeet is the chassis height above the world origin
func (s Snapshot) AltitudeFeet() models.Reading {
	return s.Position.Y.Map(units.MetersToFeet)
}
