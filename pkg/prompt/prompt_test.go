package prompt_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duperknight/ashell-install/pkg/prompt"
)

func TestYesNo(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{name: "explicit yes", input: "y\n", def: false, want: true},
		{name: "explicit no", input: "no\n", def: true, want: false},
		{name: "empty accepts default true", input: "\n", def: true, want: true},
		{name: "empty accepts default false", input: "\n", def: false, want: false},
		{name: "eof accepts default", input: "", def: true, want: true},
		{name: "garbage then answer", input: "maybe\nn\n", def: true, want: false},
		{name: "case insensitive", input: "YES\n", def: false, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := prompt.New(strings.NewReader(tt.input), &out)
			assert.Equal(t, tt.want, p.YesNo("Continue?", tt.def))
		})
	}
}

func TestText(t *testing.T) {
	var out bytes.Buffer
	p := prompt.New(strings.NewReader("> \n"), &out)
	assert.Equal(t, ">", p.Text("Symbol?", "$"))

	p = prompt.New(strings.NewReader("\n"), &out)
	assert.Equal(t, "$", p.Text("Symbol?", "$"))

	p = prompt.New(strings.NewReader(""), &out)
	assert.Equal(t, "$", p.Text("Symbol?", "$"))
}

func TestChoice(t *testing.T) {
	options := []string{"reinstall", "delete", "abort"}

	var out bytes.Buffer
	p := prompt.New(strings.NewReader("DELETE\n"), &out)
	assert.Equal(t, "delete", p.Choice("Action?", options, "abort"))

	p = prompt.New(strings.NewReader("nonsense\nreinstall\n"), &out)
	assert.Equal(t, "reinstall", p.Choice("Action?", options, "abort"))
	assert.Contains(t, out.String(), "Please answer one of")

	p = prompt.New(strings.NewReader(""), &out)
	assert.Equal(t, "abort", p.Choice("Action?", options, "abort"))
}
