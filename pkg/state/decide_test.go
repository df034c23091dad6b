package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duperknight/ashell-install/pkg/errors"
	"github.com/duperknight/ashell-install/pkg/state"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		input string
		want  state.Action
		ok    bool
	}{
		{input: "reinstall", want: state.Reinstall, ok: true},
		{input: "DELETE", want: state.Delete, ok: true},
		{input: "uninstall", want: state.Delete, ok: true},
		{input: "abort", want: state.Abort, ok: true},
		{input: "cancel", want: state.Abort, ok: true},
		{input: "proceed", want: state.Proceed, ok: true},
		{input: " install ", want: state.Proceed, ok: true},
		{input: "purge", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := state.ParseAction(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDecide(t *testing.T) {
	neverAsk := func() state.Action {
		t.Fatal("prompt should not run")
		return state.Abort
	}

	t.Run("fresh host proceeds without asking", func(t *testing.T) {
		action, err := state.Decide(false, "", "", false, neverAsk)
		require.NoError(t, err)
		assert.Equal(t, state.Proceed, action)
	})

	t.Run("delete without an installation is an error", func(t *testing.T) {
		_, err := state.Decide(false, "delete", "", true, neverAsk)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrActionInvalid))
	})

	t.Run("reinstall without an installation is an error", func(t *testing.T) {
		_, err := state.Decide(false, "", "reinstall", true, neverAsk)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrActionInvalid))
	})

	t.Run("flag directive wins over environment", func(t *testing.T) {
		action, err := state.Decide(true, "delete", "reinstall", true, neverAsk)
		require.NoError(t, err)
		assert.Equal(t, state.Delete, action)
	})

	t.Run("environment directive used when no flag", func(t *testing.T) {
		action, err := state.Decide(true, "", "reinstall", false, neverAsk)
		require.NoError(t, err)
		assert.Equal(t, state.Reinstall, action)
	})

	t.Run("unrecognized directive is an error", func(t *testing.T) {
		_, err := state.Decide(true, "purge", "", true, neverAsk)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrActionInvalid))
	})

	t.Run("prior install without directive prompts", func(t *testing.T) {
		asked := false
		action, err := state.Decide(true, "", "", true, func() state.Action {
			asked = true
			return state.Reinstall
		})
		require.NoError(t, err)
		assert.True(t, asked)
		assert.Equal(t, state.Reinstall, action)
	})

	t.Run("prior install without directive or terminal fails", func(t *testing.T) {
		_, err := state.Decide(true, "", "", false, neverAsk)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrActionRequired))
	})
}
