package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	test.That(t, os.WriteFile(path, []byte(body), 0o600), test.ShouldBeNil)
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeScenario(t, `
encoder_cpr: 8192
steps:
  - request_state: idle
    duration_ms: 10
`)
	s, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.HomingSpeed, test.ShouldEqual, 1.0)
	test.That(t, s.TickRateHz, test.ShouldEqual, 1000.0)
}

func TestLoadRejectsMissingEncoderCPR(t *testing.T) {
	path := writeScenario(t, `
steps:
  - request_state: idle
    duration_ms: 10
`)
	_, err := Load(path)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLoadRejectsEmptySteps(t *testing.T) {
	path := writeScenario(t, `
encoder_cpr: 8192
`)
	_, err := Load(path)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLoadRejectsStepMissingRequestState(t *testing.T) {
	path := writeScenario(t, `
encoder_cpr: 8192
steps:
  - duration_ms: 10
`)
	_, err := Load(path)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLoadRejectsStepMissingDuration(t *testing.T) {
	path := writeScenario(t, `
encoder_cpr: 8192
steps:
  - request_state: idle
`)
	_, err := Load(path)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestTickPeriodFromTickRateHz(t *testing.T) {
	s := &Scenario{TickRateHz: 1000}
	test.That(t, s.tickPeriod().Milliseconds(), test.ShouldEqual, int64(1))
}
