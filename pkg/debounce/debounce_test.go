package debounce_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/mdnote/pkg/clock"
	"github.com/yaklabco/mdnote/pkg/debounce"
)

func TestDebouncer_RunsLastTriggerAfterQuietPeriod(t *testing.T) {
	t.Parallel()

	clk := clock.NewTestClock()
	deb := debounce.New(clk, 200*time.Millisecond)

	var got []string
	deb.Trigger(func() { got = append(got, "first") })
	clk.FastForward(150 * time.Millisecond)
	deb.Trigger(func() { got = append(got, "second") })
	clk.FastForward(150 * time.Millisecond)

	assert.Empty(t, got, "timer must restart on each trigger")
	assert.True(t, deb.Pending())

	clk.FastForward(50 * time.Millisecond)
	assert.Equal(t, []string{"second"}, got)
	assert.False(t, deb.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	t.Parallel()

	clk := clock.NewTestClock()
	deb := debounce.New(clk, time.Second)

	called := false
	deb.Trigger(func() { called = true })
	deb.Cancel()
	clk.FastForward(2 * time.Second)

	assert.False(t, called)
}

func TestDebouncer_Flush(t *testing.T) {
	t.Parallel()

	clk := clock.NewTestClock()
	deb := debounce.New(clk, time.Second)

	calls := 0
	deb.Trigger(func() { calls++ })

	assert.True(t, deb.Flush())
	assert.Equal(t, 1, calls)
	assert.False(t, deb.Flush())

	clk.FastForward(2 * time.Second)
	assert.Equal(t, 1, calls)
}
