package presenter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOptions(t *testing.T) {
	var output, errorOutput bytes.Buffer
	presenter := NewWithOptions(&output, &errorOutput, ColorNever)

	assert.Equal(t, &output, presenter.output)
	assert.Equal(t, &errorOutput, presenter.errorOutput)
	assert.Equal(t, ColorNever, presenter.colorMode)
	assert.False(t, presenter.quiet)
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name          string
		noColor       string
		plugmarkColor string
		expected      ColorMode
	}{
		{"NO_COLOR set", "1", "", ColorNever},
		{"PLUGMARK_COLOR always", "", "always", ColorAlways},
		{"PLUGMARK_COLOR force", "", "force", ColorAlways},
		{"PLUGMARK_COLOR never", "", "never", ColorNever},
		{"PLUGMARK_COLOR off", "", "off", ColorNever},
		{"default", "", "", ColorAuto},
		{"invalid value", "", "invalid", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("PLUGMARK_COLOR", tt.plugmarkColor)

			assert.Equal(t, tt.expected, detectColorMode())
		})
	}
}

func TestError(t *testing.T) {
	var errorOutput bytes.Buffer
	presenter := NewWithOptions(nil, &errorOutput, ColorNever)

	err := errors.New("test error")
	presenter.Error(err, "test context")

	output := errorOutput.String()
	assert.Contains(t, output, "[ERROR]")
	assert.Contains(t, output, "test context")
	assert.Contains(t, output, "test error")

	errorOutput.Reset()
	presenter.Error(err, "")
	assert.NotContains(t, errorOutput.String(), "test context")

	errorOutput.Reset()
	presenter.Error(nil, "context")
	assert.Empty(t, errorOutput.String())
}

func TestSuccess(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)

	presenter.Success("Operation completed")

	result := output.String()
	assert.Contains(t, result, "✓")
	assert.Contains(t, result, "Operation completed")
}

func TestWarning(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)

	presenter.Warning("This is a warning")

	result := output.String()
	assert.Contains(t, result, "⚠")
	assert.Contains(t, result, "This is a warning")
}

func TestInfo(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)

	presenter.Info("Information message")

	assert.Contains(t, output.String(), "Information message")
}

func TestSection(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)

	presenter.Section("Test Section")

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Test Section", lines[0])
	assert.Equal(t, strings.Repeat("-", len("Test Section")), lines[1])
}

func TestSeparator(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)

	presenter.Separator()

	assert.Contains(t, output.String(), strings.Repeat("-", 60))
}

func TestQuietModeSuppressesOutput(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)
	presenter.SetQuiet(true)

	presenter.Success("hidden")
	presenter.Warning("hidden")
	presenter.Info("hidden")
	presenter.Section("hidden")
	presenter.Separator()

	assert.Empty(t, output.String())
	assert.True(t, presenter.IsQuiet())
}

func TestGlobalFunctions(t *testing.T) {
	originalPresenter := defaultPresenter
	defer func() { defaultPresenter = originalPresenter }()

	var output, errorOutput bytes.Buffer
	defaultPresenter = NewWithOptions(&output, &errorOutput, ColorNever)

	Error(errors.New("test error"), "error context")
	assert.Contains(t, errorOutput.String(), "[ERROR]")
	assert.Contains(t, errorOutput.String(), "error context")

	output.Reset()
	Success("success message")
	assert.Contains(t, output.String(), "success message")

	output.Reset()
	Warning("warning message")
	assert.Contains(t, output.String(), "warning message")

	output.Reset()
	Info("info message")
	assert.Contains(t, output.String(), "info message")

	output.Reset()
	Section("Test Section")
	assert.Contains(t, output.String(), "Test Section")

	output.Reset()
	Separator()
	assert.Contains(t, output.String(), "----")

	SetQuiet(true)
	assert.True(t, IsQuiet())
	output.Reset()
	Info("should not appear")
	assert.Empty(t, output.String())
	SetQuiet(false)
}
