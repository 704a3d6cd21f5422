package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowedTransition(t *testing.T) {
	allowed := map[State][]State{
		StatePending:    {StateReading},
		StateReading:    {StateRequesting, StateFailed},
		StateRequesting: {StateUnchanged, StateApplying, StateFailed},
		StateApplying:   {StateDone, StateFailed},
		StateUnchanged:  {StateDone},
		StateFailed:     {StateDone},
		StateDone:       nil,
	}
	all := []State{StatePending, StateReading, StateRequesting, StateUnchanged, StateApplying, StateFailed, StateDone}

	for from, tos := range allowed {
		for _, to := range all {
			want := false
			for _, ok := range tos {
				if ok == to {
					want = true
				}
			}
			assert.Equal(t, want, IsAllowedTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestFileState_Paths(t *testing.T) {
	tests := []struct {
		name    string
		path    []State
		outcome Outcome
	}{
		{"unchanged", []State{StateReading, StateRequesting, StateUnchanged, StateDone}, OutcomeUnchanged},
		{"fixed", []State{StateReading, StateRequesting, StateApplying, StateDone}, OutcomeFixed},
		{"read failure", []State{StateReading, StateFailed, StateDone}, OutcomeFailed},
		{"request failure", []State{StateReading, StateRequesting, StateFailed, StateDone}, OutcomeFailed},
		{"write failure", []State{StateReading, StateRequesting, StateApplying, StateFailed, StateDone}, OutcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen []State
			st := newFileState("a.js", func(_ string, _, to State) { seen = append(seen, to) })
			for _, s := range tt.path {
				require.NoError(t, st.to(s))
			}
			assert.Equal(t, tt.path, seen)
			assert.Equal(t, StateDone, st.current)
			assert.Equal(t, tt.outcome, st.outcome)
		})
	}
}

func TestFileState_RejectsIllegalMove(t *testing.T) {
	st := newFileState("a.js", nil)
	err := st.to(StateApplying)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending -> applying")
	assert.Equal(t, StatePending, st.current, "state must not change on a refused move")

	require.NoError(t, st.to(StateReading))
	require.NoError(t, st.to(StateFailed))
	require.NoError(t, st.to(StateDone))
	assert.Error(t, st.to(StateReading), "done is terminal")
}

func TestSummary_Add(t *testing.T) {
	var s Summary
	for _, o := range []Outcome{OutcomeFixed, OutcomeUnchanged, OutcomeFailed, OutcomeFixed, OutcomeUnchanged} {
		s.Add(o)
		assert.True(t, s.Balanced())
	}
	assert.Equal(t, Summary{Total: 5, Fixed: 2, NoChanges: 2, Errors: 1}, s)
}
