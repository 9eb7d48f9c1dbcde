package sample

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRows(t *testing.T) {
	rows := Rows()
	require.Len(t, rows, 6)
	require.Equal(t, Header, rows[0])
	for i, row := range rows {
		require.Len(t, row, len(Header), "row %d", i)
	}
	require.Equal(t, "Elysian Annihilator (2021)", rows[1][2])
	require.Equal(t, "DD", rows[5][8])
}

func TestRows_FreshCopy(t *testing.T) {
	first := Rows()
	first[1][2] = "changed"
	first[0][0] = "changed"
	require.Equal(t, "Elysian Annihilator (2021)", Rows()[1][2])
	require.Equal(t, "Rank", Rows()[0][0])
}

func TestStrategy_AlwaysFound(t *testing.T) {
	s := New()
	require.Equal(t, Name, s.Name())

	rows, ok := s.Extract(context.Background(), "").Rows()
	require.True(t, ok)
	require.Equal(t, Rows(), rows)
}
