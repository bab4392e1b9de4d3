package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunWithSpinner(t *testing.T) {
	t.Run("quiet runs function without output", func(t *testing.T) {
		var buf bytes.Buffer
		called := false
		err := RunWithSpinner(&buf, true, "Loading books", func() error {
			called = true
			return nil
		})
		assert.NoError(t, err)
		assert.True(t, called)
		assert.Empty(t, buf.String())
	})

	t.Run("failure is reported", func(t *testing.T) {
		var buf bytes.Buffer
		boom := errors.New("boom")
		err := RunWithSpinner(&buf, false, "Loading books", func() error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, buf.String(), "Loading books failed")
	})

	t.Run("success returns nil", func(t *testing.T) {
		var buf bytes.Buffer
		err := RunWithSpinner(&buf, false, "Loading books", func() error { return nil })
		assert.NoError(t, err)
		assert.NotContains(t, buf.String(), "failed")
	})
}
