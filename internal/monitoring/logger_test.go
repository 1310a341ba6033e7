package monitoring

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/wispify/internal/timeutil"
)

// The package logger is global, so these tests do not run in parallel.

func captureLogger(t *testing.T, level log.Level) *bytes.Buffer {
	t.Helper()
	original := Logger()
	t.Cleanup(func() { SetLogger(original) })

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, level))
	return &buf
}

func TestSetLogger(t *testing.T) {
	buf := captureLogger(t, log.InfoLevel)

	Logf("clumped %d points", 12)
	assert.Contains(t, buf.String(), "clumped 12 points")

	Debugf("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	Warnf("careful")
	assert.Contains(t, buf.String(), "careful")
}

func TestSetLoggerNilDiscards(t *testing.T) {
	original := Logger()
	t.Cleanup(func() { SetLogger(original) })

	SetLogger(nil)
	assert.NotNil(t, Logger())
	assert.NotPanics(t, func() { Logf("test message") })
}

func TestDebugLevel(t *testing.T) {
	buf := captureLogger(t, log.DebugLevel)
	Debugf("frame %d", 3)
	assert.Contains(t, buf.String(), "frame 3")
}

func TestProgressLogsEveryTenth(t *testing.T) {
	buf := captureLogger(t, log.InfoLevel)

	p := NewProgress("synthesize", 20)
	for range 20 {
		p.Add(1)
	}
	assert.Equal(t, 20, p.Done("finished"))

	out := buf.String()
	for _, pct := range []string{"reached 10%", "reached 50%", "reached 100%"} {
		assert.Contains(t, out, pct)
	}
	// One line per tenth plus the completion line.
	assert.Equal(t, 11, strings.Count(out, "synthesize:"))
	assert.Contains(t, out, "finished")
}

func TestProgressConcurrent(t *testing.T) {
	captureLogger(t, log.InfoLevel)

	p := NewProgress("clump", 1000)
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				p.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, p.Done("done"))
}

func TestProgressZeroTotal(t *testing.T) {
	buf := captureLogger(t, log.InfoLevel)

	p := NewProgress("empty", 0)
	p.Add(3)
	assert.NotContains(t, buf.String(), "reached")
}

func TestProgressElapsedUsesClock(t *testing.T) {
	buf := captureLogger(t, log.InfoLevel)

	clock := timeutil.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	p := NewProgressWithClock("analyze", 4, clock)
	p.Add(4)
	clock.Advance(1500 * time.Millisecond)
	p.Done("finished")
	assert.Contains(t, buf.String(), "analyze: finished (1.5s)")
}
