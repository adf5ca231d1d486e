package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchIntent(t *testing.T) {
	cases := []struct {
		message string
		matched bool
	}{
		{"hello there", true},
		{"HELLO!", true},
		{"I want to book stall for a wedding", true},
		{"what is the price of the gold package", true},
		{"how do I contact you", true},
		{"where is your location", true},
		{"can you do balloon arches", false},
		{"", false},
	}
	for _, tc := range cases {
		reply, ok := MatchIntent(tc.message)
		assert.Equal(t, tc.matched, ok, tc.message)
		if tc.matched {
			assert.NotEmpty(t, reply)
		}
	}
}

type stubCompleter struct {
	calls       int
	lastLen     int
	lastHistory []Message
	fail        bool
}

func (s *stubCompleter) Complete(_ context.Context, history []Message, message string) (string, error) {
	s.calls++
	s.lastLen = len(history)
	s.lastHistory = history
	if s.fail {
		return "", fmt.Errorf("provider down")
	}
	return "stub answer to: " + message, nil
}

func TestResponderQuickReplySkipsProvider(t *testing.T) {
	stub := &stubCompleter{}
	r := NewResponder(stub)

	reply, err := r.Reply(context.Background(), "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
	assert.Zero(t, stub.calls)
}

func TestResponderQuickReplyKeepsTranscriptAlternating(t *testing.T) {
	stub := &stubCompleter{}
	r := NewResponder(stub)

	// quick-reply turn first, then a provider turn
	_, err := r.Reply(context.Background(), "hello")
	require.NoError(t, err)

	_, err = r.Reply(context.Background(), "do you do haldi ceremonies?")
	require.NoError(t, err)

	require.Len(t, stub.lastHistory, 2)
	assert.Equal(t, "user", stub.lastHistory[0].Role)
	assert.Equal(t, "hello", stub.lastHistory[0].Text)
	assert.Equal(t, "model", stub.lastHistory[1].Role)
}

func TestResponderFallsBackWithHistory(t *testing.T) {
	stub := &stubCompleter{}
	r := NewResponder(stub)

	_, err := r.Reply(context.Background(), "do you decorate temples?")
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.Zero(t, stub.lastLen)

	// second turn replays the first exchange
	_, err = r.Reply(context.Background(), "and birthday parties?")
	require.NoError(t, err)
	assert.Equal(t, 2, stub.lastLen)
}

func TestResponderProviderErrorIsNotRemembered(t *testing.T) {
	stub := &stubCompleter{fail: true}
	r := NewResponder(stub)

	_, err := r.Reply(context.Background(), "anything custom?")
	require.Error(t, err)

	stub.fail = false
	_, err = r.Reply(context.Background(), "anything custom?")
	require.NoError(t, err)
	assert.Zero(t, stub.lastLen) // failed turn left no history behind
}

func TestResponderHistoryIsBounded(t *testing.T) {
	stub := &stubCompleter{}
	r := NewResponder(stub)

	for i := 0; i < 30; i++ {
		_, err := r.Reply(context.Background(), fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, stub.lastLen, maxHistory)
}
