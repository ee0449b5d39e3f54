package boardctx

import (
	"math"
	"sync/atomic"
)

// Static is a fixed-value axis.BoardContext for configurations that
// have no MCU telemetry link at all: the bus voltage and brake-resistor
// flag change only through their setters, ADC readings are always
// zero, and the trip levels exist only to keep SafetyMonitor's
// comparisons well-defined. Distinct from axis/axistest's fakes,
// which are for tests; Static is a real, if degenerate, production
// implementation a deployment can select when it has no board voltage
// sensing to report.
type Static struct {
	vbus               atomic.Uint64 // float64 bits
	brakeResistorArmed atomic.Bool
	underVoltage       float64
	overVoltage        float64
	adcFullScale       float64
}

// NewStatic returns a Static board context reporting vbus until
// SetVBusVoltage changes it, with the brake resistor armed until
// SetBrakeResistorArmed changes it.
func NewStatic(vbus, underVoltage, overVoltage, adcFullScale float64) *Static {
	s := &Static{
		underVoltage: underVoltage,
		overVoltage:  overVoltage,
		adcFullScale: adcFullScale,
	}
	s.SetVBusVoltage(vbus)
	s.brakeResistorArmed.Store(true)
	return s
}

func (s *Static) VBusVoltage() float64 {
	return math.Float64frombits(s.vbus.Load())
}

func (s *Static) SetVBusVoltage(v float64) {
	s.vbus.Store(math.Float64bits(v))
}

func (s *Static) BrakeResistorArmed() bool { return s.brakeResistorArmed.Load() }

func (s *Static) SetBrakeResistorArmed(v bool) { s.brakeResistorArmed.Store(v) }

// ADCMeasurement always reports zero; Static carries no ADC channels.
func (s *Static) ADCMeasurement(channel int) float64 { return 0 }

func (s *Static) UnderVoltageTripLevel() float64 { return s.underVoltage }
func (s *Static) OverVoltageTripLevel() float64  { return s.overVoltage }
func (s *Static) ADCFullScale() float64          { return s.adcFullScale }
