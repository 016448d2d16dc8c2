package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReporter_EmitAndSubscribe(t *testing.T) {
	pr := NewProgressReporter()
	defer pr.Close()

	ch := pr.Subscribe()
	want := ProgressEvent{
		RequestID: "r-1",
		State:     StateParsed,
		Status:    ProgressComplete,
		Message:   "3 questions",
	}

	pr.Emit(want)

	select {
	case got := <-ch:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for progress event")
	}
}

func TestProgressReporter_EmitWhenFull_DoesNotBlock(t *testing.T) {
	pr := NewProgressReporter()
	defer pr.Close()

	// The internal channel buffer is 64. Emitting 100 events must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			pr.Emit(ProgressEvent{State: StateMerged, Status: ProgressWorking})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked when the channel was full")
	}
}

func TestProgressReporter_Close_ChannelClosed(t *testing.T) {
	pr := NewProgressReporter()
	ch := pr.Subscribe()

	pr.Emit(ProgressEvent{State: StateRendered, Status: ProgressComplete})
	pr.Close()

	// Range over the channel; it must terminate because Close was called.
	var received []ProgressEvent
	for ev := range ch {
		received = append(received, ev)
	}
	require.Len(t, received, 1)
	assert.Equal(t, ProgressComplete, received[0].Status)
}

func TestFormatProgress_AllStatuses(t *testing.T) {
	tests := []struct {
		name   string
		event  ProgressEvent
		expect string
	}{
		{
			name:   "working",
			event:  ProgressEvent{State: StateParsed, Status: ProgressWorking},
			expect: "  ● parse...",
		},
		{
			name:   "complete",
			event:  ProgressEvent{State: StateMerged, Status: ProgressComplete},
			expect: "  ✓ merge complete",
		},
		{
			name:   "complete with message",
			event:  ProgressEvent{State: StateParsed, Status: ProgressComplete, Message: "2 questions, 1 warning"},
			expect: "  ✓ parse complete: 2 questions, 1 warning",
		},
		{
			name:   "failed",
			event:  ProgressEvent{State: StateRendered, Status: ProgressFailed, Message: "timeout"},
			expect: "  ✗ render failed: timeout",
		},
		{
			name:   "unknown",
			event:  ProgressEvent{State: StateResolved, Status: "paused"},
			expect: "  ? resolve (unknown status)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatProgress(tt.event)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestFormatRequestHeader(t *testing.T) {
	got := FormatRequestHeader("abc", 50)
	assert.Equal(t, "[abc] template-50", got)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "received", StateReceived.String())
	assert.Equal(t, "rendered", StateRendered.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.Equal(t, "assemble", StateAssembled.Activity())
}
