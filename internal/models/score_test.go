package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLetterGrade(t *testing.T) {
	cases := []struct {
		score *int
		want  string
	}{
		{nil, "N/A"},
		{intPtr(100), "A"},
		{intPtr(90), "A"},
		{intPtr(89), "B"},
		{intPtr(80), "B"},
		{intPtr(79), "C"},
		{intPtr(70), "C"},
		{intPtr(69), "D"},
		{intPtr(60), "D"},
		{intPtr(59), "F"},
		{intPtr(0), "F"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, StudentScore{Score: tc.score}.LetterGrade())
	}
}

func TestIsPassing(t *testing.T) {
	require.False(t, StudentScore{}.IsPassing(), "ungraded is not passing")
	require.True(t, StudentScore{Score: intPtr(60)}.IsPassing())
	require.False(t, StudentScore{Score: intPtr(59)}.IsPassing())
}

func TestExamTypeIsValid(t *testing.T) {
	require.True(t, ExamMidterm.IsValid())
	require.True(t, ExamFinal.IsValid())
	require.True(t, ExamQuiz.IsValid())
	require.True(t, ExamAssignment.IsValid())
	require.False(t, ExamType("oral").IsValid())
}

func intPtr(v int) *int {
	return &v
}
