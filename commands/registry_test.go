package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	assert.NoError(t, reg.Register("roll", stubHandler{"roll"}))
	assert.NoError(t, reg.Register("lock", stubHandler{"lock"}))
	assert.Error(t, reg.Register("roll", stubHandler{"again"}))
	assert.Error(t, reg.Register("Bad Name", stubHandler{"bad"}))
	assert.Error(t, reg.Register("nil", nil))

	h, ok := reg.Handler("roll")
	assert.True(t, ok)
	assert.Equal(t, stubHandler{"roll"}, h)

	_, ok = reg.Handler("unlock")
	assert.False(t, ok)

	assert.Equal(t, []string{"lock", "roll"}, reg.Names())
	assert.Panics(t, func() { reg.MustRegister("lock", stubHandler{"lock"}) })
}
