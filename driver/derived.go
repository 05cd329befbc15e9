package driver

import "math"

// Properties of the medium the driver radiates into, used by the derived
// quantities below and by the sound pressure calculation of the auralization
// kernel. The defaults describe air at room temperature.
const (
	DefaultMediumDensity = 1.2041 // kg/m³
	DefaultSpeedOfSound  = 343.21 // m/s
)

// ResonanceFrequency returns the free-air resonance frequency in Hz.
func (p Parameters) ResonanceFrequency() float64 {
	return math.Sqrt(p.Stiffness/p.Mass) / (2.0 * math.Pi)
}

// Compliance returns the suspension compliance in meters per Newton, the
// reciprocal of the stiffness.
func (p Parameters) Compliance() float64 {
	return 1.0 / p.Stiffness
}

// DiaphragmRadius returns the radius of a circular diaphragm with the
// driver's effective area, in meters.
func (p Parameters) DiaphragmRadius() float64 {
	return math.Sqrt(p.Area / math.Pi)
}

// ElectricalQ returns the electrical quality factor at resonance.
func (p Parameters) ElectricalQ() float64 {
	fr := p.ResonanceFrequency()
	return 2.0 * math.Pi * fr * p.Mass * p.Resistance / (p.ForceFactor * p.ForceFactor)
}

// MechanicalQ returns the mechanical quality factor at resonance.
func (p Parameters) MechanicalQ() float64 {
	fr := p.ResonanceFrequency()
	return 2.0 * math.Pi * fr * p.Mass / p.Damping
}

// TotalQ returns the total quality factor at resonance.
func (p Parameters) TotalQ() float64 {
	qe := p.ElectricalQ()
	qm := p.MechanicalQ()

	return qe * qm / (qe + qm)
}

// ResonanceImpedance returns the electrical input impedance at the resonance
// frequency in Ohm.
func (p Parameters) ResonanceImpedance() float64 {
	return p.Resistance * (1.0 + p.MechanicalQ()/p.ElectricalQ())
}

// EfficiencyBandwidthProduct returns fs/Qes in Hz, a common vented-box
// alignment figure.
func (p Parameters) EfficiencyBandwidthProduct() float64 {
	return p.ResonanceFrequency() / p.ElectricalQ()
}

// EquivalentVolume returns the equivalent compliance volume (Vas) in cubic
// meters for the given medium density in kg/m³ and speed of sound in m/s.
func (p Parameters) EquivalentVolume(mediumDensity, speedOfSound float64) float64 {
	cs := speedOfSound * p.Area
	return mediumDensity * cs * cs / p.Stiffness
}
