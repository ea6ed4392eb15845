package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orderfood/api/internal/status"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to status.Status
		want     bool
	}{
		{status.Pending, status.Confirmed, true},
		{status.Confirmed, status.Preparing, true},
		{status.Preparing, status.Ready, true},
		{status.Ready, status.Delivered, true},
		{status.Confirmed, status.Cancelled, true},
		{status.Preparing, status.Cancelled, true},
		{status.Ready, status.Cancelled, true},

		{status.Pending, status.Cancelled, false},
		{status.Pending, status.Preparing, false},
		{status.Confirmed, status.Ready, false},
		{status.Confirmed, status.Delivered, false},
		{status.Ready, status.Confirmed, false},
		{status.Delivered, status.Cancelled, false},
		{status.Delivered, status.Ready, false},
		{status.Cancelled, status.Confirmed, false},
		{status.Cancelled, status.Pending, false},
	}
	for _, tc := range cases {
		got := status.CanTransition(tc.from, tc.to)
		assert.Equalf(t, tc.want, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestIsValid(t *testing.T) {
	for _, s := range []status.Status{
		status.Pending, status.Confirmed, status.Preparing,
		status.Ready, status.Delivered, status.Cancelled,
	} {
		assert.Truef(t, status.IsValid(s), "%s should be valid", s)
	}
	assert.False(t, status.IsValid("done"))
	assert.False(t, status.IsValid(""))
	assert.False(t, status.IsValid("PENDING"))
}

func TestNextReturnsCopy(t *testing.T) {
	next := status.Next(status.Confirmed)
	assert.Equal(t, []status.Status{status.Preparing, status.Cancelled}, next)

	next[0] = status.Delivered
	assert.Equal(t, []status.Status{status.Preparing, status.Cancelled}, status.Next(status.Confirmed))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, status.IsTerminal(status.Delivered))
	assert.True(t, status.IsTerminal(status.Cancelled))
	assert.False(t, status.IsTerminal(status.Pending))
	assert.False(t, status.IsTerminal(status.Ready))
	assert.False(t, status.IsTerminal("done"))
}

func TestAdvance(t *testing.T) {
	next, ok := status.Advance(status.Confirmed)
	assert.True(t, ok)
	assert.Equal(t, status.Preparing, next)

	next, ok = status.Advance(status.Ready)
	assert.True(t, ok)
	assert.Equal(t, status.Delivered, next)

	_, ok = status.Advance(status.Delivered)
	assert.False(t, ok)
	_, ok = status.Advance(status.Cancelled)
	assert.False(t, ok)
}

func TestCanCancel(t *testing.T) {
	assert.True(t, status.CanCancel(status.Confirmed))
	assert.True(t, status.CanCancel(status.Preparing))
	assert.True(t, status.CanCancel(status.Ready))
	assert.False(t, status.CanCancel(status.Pending))
	assert.False(t, status.CanCancel(status.Delivered))
	assert.False(t, status.CanCancel(status.Cancelled))
}
