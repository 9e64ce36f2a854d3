package treemorph

import (
	"bytes"
	"testing"

	"github.com/gekko3d/treemorph/treert/rt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogger(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewDefaultLoggerTo(&out, &errOut, "tree", false, 0)

	l.Debugf("hidden %d", 1)
	l.Infof("frame %d", 2)
	l.Warnf("slow")
	l.Errorf("broken: %v", "gpu")

	assert.Equal(t, "[tree] INFO: frame 2\n", out.String())
	assert.Equal(t, "[tree] WARN: slow\n[tree] ERROR: broken: gpu\n", errOut.String())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown")
	assert.Contains(t, out.String(), "[tree] DEBUG: shown")
}

func TestDefaultLogger_NoPrefix(t *testing.T) {
	var out bytes.Buffer
	l := NewDefaultLoggerTo(&out, &out, "", false, 0)
	l.Infof("hi")
	assert.Equal(t, "INFO: hi\n", out.String())
}

func TestApp_Logger(t *testing.T) {
	var nilApp *App
	require.NotNil(t, nilApp.Logger())

	app := NewAppBuilder().Build()
	_, isNop := app.Logger().(*nopLogger)
	assert.True(t, isNop)

	var out bytes.Buffer
	logger := NewDefaultLoggerTo(&out, &out, "x", false, 0)
	app = NewAppBuilder().UseModule(LoggingModule{Logger: logger}).Build()
	assert.Same(t, logger, app.Logger())

	app = NewAppBuilder().UseModule(LoggingModule{Prefix: "p"}).Build()
	_, isDefault := app.Logger().(*DefaultLogger)
	assert.True(t, isDefault)
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(9).String())
}

func TestLogReport(t *testing.T) {
	var out bytes.Buffer
	l := NewDefaultLoggerTo(&out, &out, "treert", false, 0)
	r := &Report{Frames: 120, State: core.StateFormed, Progress: 0.5, FoliageError: 1.25, OrnamentError: 0.125, Sparkling: 7}

	LogReport(l, r)
	assert.Equal(t, "[treert] INFO: frame 120: FORMED progress=0.500 foliage=1.250 ornaments=0.125\n", out.String())

	out.Reset()
	l.SetDebug(true)
	LogReport(l, r)
	assert.Contains(t, out.String(), "[treert] DEBUG: frame 120: 7 foliage particles sparkling\n")
}
