package boardctx

import (
	"bufio"
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/tarm/serial"
	"go.viam.com/rdk/logging"
)

// SerialBoard is an axis.BoardContext backed by a line-oriented
// telemetry link to the controller board's own MCU, the Go analogue
// of the original firmware reading vbus_voltage/adc_measurements off
// its own ADC peripheral directly. Each line is a CSV frame:
//
//	<vbus_volts>,<brake_armed 0|1>,<adc0>,<adc1>,...
//
// polled continuously by a background reader goroutine; axis.BoardContext
// getters return the most recently parsed frame.
type SerialBoard struct {
	logger logging.Logger
	port   *serial.Port

	underVoltage float64
	overVoltage  float64
	adcFullScale float64

	vbus               atomic.Uint64 // float64 bits
	brakeResistorArmed atomic.Bool

	mu  sync.RWMutex
	adc []float64
}

// SerialConfig names the serial port and its link parameters.
type SerialConfig struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
}

// OpenSerialBoard opens the serial link and starts the background
// telemetry reader. Callers should cancel ctx to stop the reader and
// should Close the returned board when done with it.
func OpenSerialBoard(
	ctx context.Context,
	cfg SerialConfig,
	underVoltage, overVoltage, adcFullScale float64,
	logger logging.Logger,
) (*SerialBoard, error) {
	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 500 * time.Millisecond
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.BaudRate,
		ReadTimeout: readTimeout,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "opening serial board telemetry link %q", cfg.Port)
	}

	b := &SerialBoard{
		logger:       logger,
		port:         port,
		underVoltage: underVoltage,
		overVoltage:  overVoltage,
		adcFullScale: adcFullScale,
	}
	b.brakeResistorArmed.Store(true)

	go b.readLoop(ctx)
	return b, nil
}

func (b *SerialBoard) readLoop(ctx context.Context) {
	scanner := bufio.NewScanner(b.port)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if err := b.parseFrame(scanner.Text()); err != nil {
			b.logger.Debugw("discarding malformed telemetry frame", "error", err)
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		b.logger.Errorw("serial board telemetry link read failed", "error", err)
	}
}

func (b *SerialBoard) parseFrame(line string) error {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) < 2 {
		return errors.Errorf("telemetry frame has %d fields, want at least 2", len(fields))
	}
	vbus, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return errors.Wrap(err, "parsing vbus field")
	}
	armed := fields[1] == "1"

	adc := make([]float64, 0, len(fields)-2)
	for _, f := range fields[2:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return errors.Wrap(err, "parsing adc field")
		}
		adc = append(adc, v)
	}

	b.vbus.Store(math.Float64bits(vbus))
	b.brakeResistorArmed.Store(armed)
	b.mu.Lock()
	b.adc = adc
	b.mu.Unlock()
	return nil
}

// Close releases the underlying serial port.
func (b *SerialBoard) Close() error {
	return b.port.Close()
}

func (b *SerialBoard) VBusVoltage() float64 {
	return math.Float64frombits(b.vbus.Load())
}

func (b *SerialBoard) BrakeResistorArmed() bool { return b.brakeResistorArmed.Load() }

func (b *SerialBoard) ADCMeasurement(channel int) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if channel < 0 || channel >= len(b.adc) {
		return 0
	}
	return b.adc[channel]
}

func (b *SerialBoard) UnderVoltageTripLevel() float64 { return b.underVoltage }
func (b *SerialBoard) OverVoltageTripLevel() float64  { return b.overVoltage }
func (b *SerialBoard) ADCFullScale() float64          { return b.adcFullScale }
