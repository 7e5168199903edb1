package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextAccountNumber(t *testing.T) {
	testCases := []struct {
		name    string
		highest string
		want    string
		wantErr bool
	}{
		{name: "First", highest: FirstAccountNumber, want: "1000000001"},
		{name: "Increment", highest: "1000000012", want: "1000000013"},
		{name: "Carry", highest: "1000000099", want: "1000000100"},
		{name: "KeepsLeadingZeros", highest: "0000000009", want: "0000000010"},
		{name: "Widens", highest: "9999999999", want: "10000000000"},
		{name: "NotDigits", highest: "12ab", wantErr: true},
		{name: "Empty", highest: "", wantErr: true},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			got, err := NextAccountNumber(tc.highest)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestIsValidAccountNumber(t *testing.T) {
	require.True(t, IsValidAccountNumber("1000000000"))
	require.False(t, IsValidAccountNumber(""))
	require.False(t, IsValidAccountNumber("10000-0000"))
	require.False(t, IsValidAccountNumber("+100000000"))
}

func TestNewTransactionID(t *testing.T) {
	id1 := NewTransactionID()
	id2 := NewTransactionID()

	require.Len(t, id1, 32)
	require.Regexp(t, `^[0-9a-f]{32}$`, id1)
	require.NotEqual(t, id1, id2)
}
