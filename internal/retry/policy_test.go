package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDelay_Fixed(t *testing.T) {
	p := NewPolicy(BackoffFixed, 2*time.Second, 30*time.Second, 5)
	require.Equal(t, 2*time.Second, p.Delay(1))
	require.Equal(t, 2*time.Second, p.Delay(4))
}

func TestDelay_Linear(t *testing.T) {
	p := NewPolicy(BackoffLinear, time.Second, 30*time.Second, 5)
	require.Equal(t, time.Second, p.Delay(1))
	require.Equal(t, 2*time.Second, p.Delay(2))
	require.Equal(t, 3*time.Second, p.Delay(3))
}

func TestDelay_Exponential(t *testing.T) {
	p := NewPolicy(BackoffExponential, time.Second, 30*time.Second, 8)
	require.Equal(t, time.Second, p.Delay(1))
	require.Equal(t, 2*time.Second, p.Delay(2))
	require.Equal(t, 4*time.Second, p.Delay(3))
	require.Equal(t, 8*time.Second, p.Delay(4))
}

func TestDelay_CappedAtMax(t *testing.T) {
	p := NewPolicy(BackoffExponential, time.Second, 5*time.Second, 10)
	require.Equal(t, 5*time.Second, p.Delay(9))
}

func TestDelay_NonPositiveRetryCount(t *testing.T) {
	p := DefaultPolicy()
	require.Zero(t, p.Delay(0))
	require.Zero(t, p.Delay(-1))
}

func TestNewPolicy_FallsBackOnInvalidValues(t *testing.T) {
	p := NewPolicy("warp", 0, 0, -1)
	def := DefaultPolicy()
	require.Equal(t, def.Mode, p.Mode)
	require.Equal(t, def.Initial, p.Initial)
	require.Equal(t, def.Max, p.Max)
	require.Equal(t, def.MaxRetries, p.MaxRetries)
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	bad := Policy{Mode: "warp", Initial: time.Second, Max: time.Minute, MaxRetries: 1}
	require.Error(t, bad.Validate())
}
