package internship_test

import (
	"testing"
	"time"

	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/stretchr/testify/require"
)

func TestNextStatus_Table(t *testing.T) {
	cases := []struct {
		current internship.Status
		action  internship.Action
		want    internship.Status
		wantErr error
	}{
		{internship.StatusNew, internship.ActionApply, internship.StatusApplied, nil},
		{internship.StatusNew, internship.ActionReject, internship.StatusRejected, nil},
		{internship.StatusApplied, internship.ActionReject, internship.StatusRejected, nil},
		{internship.StatusApplied, internship.ActionApply, internship.StatusApplied, internship.ErrInvalidTransition},
		{internship.StatusRejected, internship.ActionApply, internship.StatusRejected, internship.ErrInvalidTransition},
		{internship.StatusRejected, internship.ActionReject, internship.StatusRejected, nil},
		{internship.StatusNew, internship.ActionDelete, internship.StatusRejected, nil},
		{internship.StatusApplied, internship.ActionDelete, internship.StatusRejected, nil},
		{internship.StatusRejected, internship.ActionDelete, internship.StatusRejected, nil},
		{"Applied", internship.ActionReject, internship.StatusRejected, nil},
		{"pending_review", internship.ActionApply, "pending_review", internship.ErrInvalidTransition},
		{"pending_review", internship.ActionReject, "pending_review", internship.ErrInvalidTransition},
		{"pending_review", internship.ActionDelete, internship.StatusRejected, nil},
	}

	for _, tc := range cases {
		t.Run(string(tc.current)+"/"+string(tc.action), func(t *testing.T) {
			got, err := internship.NextStatus(tc.current, tc.action)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseStatus(t *testing.T) {
	require.Equal(t, internship.StatusNew, internship.ParseStatus(""))
	require.Equal(t, internship.StatusApplied, internship.ParseStatus(" Applied "))
	require.Equal(t, internship.StatusRejected, internship.ParseStatus("REJECTED"))
	require.Equal(t, internship.Status("interviewing"), internship.ParseStatus("Interviewing"))
}

func TestStatus_PriorityAndTitle(t *testing.T) {
	require.Equal(t, 0, internship.StatusNew.Priority())
	require.Equal(t, 1, internship.Status("APPLIED").Priority())
	require.Equal(t, 2, internship.StatusRejected.Priority())
	require.Equal(t, 3, internship.Status("offer").Priority())

	require.Equal(t, "New", internship.StatusNew.Title())
	require.Equal(t, "Applied", internship.Status("applied").Title())
	require.Equal(t, "Offer", internship.Status("OFFER").Title())

	require.True(t, internship.Status("Rejected").Known())
	require.False(t, internship.Status("offer").Known())
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{
		"2024-01-01",
		"2024-01-01 10:30:00",
		"2024-01-01T10:30:00",
		"2024-01-01T10:30:00.123456",
		"2024-01-01T10:30:00Z",
		"2024-01-01T10:30:00.123+02:00",
		"2024-01-01 10:30:00.5+00",
	} {
		_, ok := internship.ParseTimestamp(s)
		require.True(t, ok, s)
	}

	got, ok := internship.ParseTimestamp("yesterday")
	require.False(t, ok)
	require.True(t, got.IsZero())
}

func TestFormatTimestamp_SortsAsText(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 5, 0, time.UTC)
	a := internship.FormatTimestamp(base)
	b := internship.FormatTimestamp(base.Add(100 * time.Millisecond))
	require.Equal(t, "2024-05-01T12:00:05.000000000Z", a)
	require.Less(t, a, b)

	parsed, ok := internship.ParseTimestamp(b)
	require.True(t, ok)
	require.True(t, parsed.Equal(base.Add(100*time.Millisecond)))
}
