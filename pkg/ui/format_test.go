package ui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duperknight/ashell-install/pkg/ui"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    ui.Format
		wantErr bool
	}{
		{input: "auto", want: ui.FormatAuto},
		{input: "", want: ui.FormatAuto},
		{input: "term", want: ui.FormatTerminal},
		{input: "terminal", want: ui.FormatTerminal},
		{input: "TEXT", want: ui.FormatText},
		{input: "plain", want: ui.FormatText},
		{input: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ui.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "auto", ui.FormatAuto.String())
	assert.Equal(t, "term", ui.FormatTerminal.String())
	assert.Equal(t, "text", ui.FormatText.String())
}

func TestPrinterPlainText(t *testing.T) {
	var buf bytes.Buffer
	p := ui.NewPrinter(&buf, ui.FormatText)

	p.Step("resolving %s", "version")
	p.Success("done")
	p.Warning("careful")
	p.Error("broken")

	out := buf.String()
	assert.Contains(t, out, "--> resolving version")
	assert.Contains(t, out, "OK  done")
	assert.Contains(t, out, "WARN careful")
	assert.Contains(t, out, "ERROR broken")
}

func TestPrinterAutoOnBufferDegradesToText(t *testing.T) {
	var buf bytes.Buffer
	p := ui.NewPrinter(&buf, ui.FormatAuto)
	p.Banner("AShell installer", "v1.0.0")

	assert.Equal(t, "AShell installer\nv1.0.0\n", buf.String())
}
