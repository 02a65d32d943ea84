package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestEffectiveInterval(t *testing.T) {
	require.Equal(t, 7, EffectiveInterval(nil, 7), "no override falls back to default")
	require.Equal(t, 3, EffectiveInterval(intp(3), 7), "positive override wins")
	require.Equal(t, 7, EffectiveInterval(intp(0), 7), "zero override is ignored")
	require.Equal(t, 7, EffectiveInterval(intp(-2), 7), "negative override is ignored")
}

func TestConfirmAdvancesFromNowNotFromDueDate(t *testing.T) {
	// Plant was due five days ago; confirming today must schedule a full
	// interval ahead, not try to catch up missed cycles.
	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	last, next := Confirm(now, 7)
	require.Equal(t, now, last)
	require.Equal(t, now.Add(7*Day), next)
}

func TestApplyReminderResetsCountdown(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	next := ApplyReminder(now, 3)
	require.Equal(t, now.Add(3*Day), next)

	// Shrinking the interval below the remaining countdown pulls the due
	// date earlier; growing it pushes the date out. Either way the new
	// countdown starts from now.
	require.True(t, ApplyReminder(now, 1).Before(ApplyReminder(now, 10)))
}

func TestDaysUntilUsesCalendarDays(t *testing.T) {
	// 23:50 today vs 00:10 tomorrow is twenty minutes of clock time but a
	// full calendar day apart.
	now := time.Date(2026, 3, 10, 23, 50, 0, 0, time.UTC)
	next := time.Date(2026, 3, 11, 0, 10, 0, 0, time.UTC)
	require.Equal(t, 1, DaysUntil(next, now))

	// Same calendar day, hours apart.
	require.Equal(t, 0, DaysUntil(
		time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)))

	// Overdue by two days.
	require.Equal(t, -2, DaysUntil(
		time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)))
}

func TestDaysUntilAcrossDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	// The clocks spring forward on 2026-03-29: that calendar day is 23h
	// long, but it still counts as exactly one day.
	now := time.Date(2026, 3, 28, 12, 0, 0, 0, loc)
	next := time.Date(2026, 3, 30, 12, 0, 0, 0, loc)
	require.Equal(t, 2, DaysUntil(next, now))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		days int
		want Urgency
	}{
		{-5, UrgencyOverdue},
		{-1, UrgencyOverdue},
		{0, UrgencyToday},
		{1, UrgencyUrgent},
		{2, UrgencyUrgent},
		{3, UrgencyUpcoming},
		{30, UrgencyUpcoming},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Classify(c.days), "days=%d", c.days)
	}
}

func TestConfirmAllowed(t *testing.T) {
	require.True(t, ConfirmAllowed(-3))
	require.True(t, ConfirmAllowed(0))
	require.True(t, ConfirmAllowed(1))
	require.False(t, ConfirmAllowed(2))
	require.False(t, ConfirmAllowed(10))
}
