package axis

// BoardContext is the handle Design Notes §9 recommends in place of
// reading brake_resistor_armed, vbus_voltage, board_config, and
// adc_measurements as process-wide globals. SafetyMonitor and the
// thermistor reader take one of these rather than reaching for global
// state. boardctx provides concrete implementations; nothing in this
// package needs to import that package, since Go interfaces satisfy
// structurally.
type BoardContext interface {
	VBusVoltage() float64
	BrakeResistorArmed() bool
	ADCMeasurement(channel int) float64

	UnderVoltageTripLevel() float64
	OverVoltageTripLevel() float64
	ADCFullScale() float64
}
