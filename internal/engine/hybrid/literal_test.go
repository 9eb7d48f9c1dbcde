package hybrid

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/iemrank/internal/engine"
	"github.com/stretchr/testify/require"
)

func TestDecodeLiteral_StrictJSON(t *testing.T) {
	span := `[{"rank": "S-", "name": "Elysian Annihilator"}]`
	out, err := DecodeLiteral(span, time.Second)
	require.NoError(t, err)
	require.Equal(t, span, string(out))
}

func TestDecodeLiteral_RelaxedLiteral(t *testing.T) {
	tests := []struct {
		name string
		span string
		want string
	}{
		{
			name: "unquoted keys and single quotes",
			span: `[{rank: 'S-', name: 'ThieAudio Monarch Mk2', price: 1000}]`,
			want: `[{"rank":"S-","name":"ThieAudio Monarch Mk2","price":1000}]`,
		},
		{
			name: "trailing commas",
			span: `[['A+', 'Moondrop Variations', 520,],]`,
			want: `[["A+","Moondrop Variations",520]]`,
		},
		{
			name: "signed numbers, holes and plain templates",
			span: "[-1, +2.5, , `S+`]",
			want: `[-1,2.5,null,"S+"]`,
		},
		{
			name: "object literal",
			span: `{data: [[1, 2]], id: 3}`,
			want: `{"data":[[1,2]],"id":3}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := DecodeLiteral(tt.span, time.Second)
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(out))
		})
	}
}

func TestDecodeLiteral_Failures(t *testing.T) {
	tests := []struct {
		name string
		span string
	}{
		{"empty", "   "},
		{"truncated", `[[1, 2]`},
		{"undefined", `undefined`},
		{"function", `function () { return 1 }`},
		{"reference error", `[missingVariable]`},
		{"constructor call", `[new Array(4e7).join("ab")]`},
		{"method call", `["ab".repeat(1e9)]`},
		{"getter", `{get rank() { return "S" }}`},
		{"computed key", `{["ra" + "nk"]: 1}`},
		{"spread", `[...window]`},
		{"template substitution", "[`${1}`]"},
		{"second element smuggled in", `1], [2`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLiteral(tt.span, time.Second)
			require.Error(t, err)
			require.True(t, errors.Is(err, engine.ErrDecode))
		})
	}
}

func TestDecodeLiteral_Deadline(t *testing.T) {
	start := time.Now()
	_, err := DecodeLiteral(`(function () { while (true) {} })()`, 50*time.Millisecond)
	require.Error(t, err)
	require.True(t, errors.Is(err, engine.ErrDecode))
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestDecodeLiteral_RejectsCodeWithoutRunningIt(t *testing.T) {
	start := time.Now()
	_, err := DecodeLiteral(`[new Array(4e7).join("ab")]`, 10*time.Millisecond)
	require.True(t, errors.Is(err, engine.ErrDecode))
	require.Less(t, time.Since(start), time.Second)
}

func TestDecodeLiteral_SizeCap(t *testing.T) {
	// relaxed (single-quoted) so the strict JSON path does not apply
	span := "['" + strings.Repeat("a", MaxLiteralBytes) + "']"

	start := time.Now()
	_, err := DecodeLiteral(span, time.Second)
	require.True(t, errors.Is(err, engine.ErrDecode))
	require.Contains(t, err.Error(), "too large")
	require.Less(t, time.Since(start), time.Second)

	// strict JSON of the same size passes through untouched
	strict := `["` + strings.Repeat("a", MaxLiteralBytes) + `"]`
	out, err := DecodeLiteral(strict, time.Second)
	require.NoError(t, err)
	require.Len(t, out, len(strict))
}
