package static

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/law-makers/iemrank/internal/engine"
	"github.com/law-makers/iemrank/internal/transport"
	"github.com/law-makers/iemrank/pkg/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// pageFetcher serves a fixed body, or an error
type pageFetcher struct {
	body  string
	err   error
	calls int
}

func (f *pageFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (int, []byte, error) {
	f.calls++
	if f.err != nil {
		return 0, nil, f.err
	}
	return http.StatusOK, []byte(f.body), nil
}

func newScraper(f engine.Fetcher) *Scraper {
	return New(Options{Fetcher: f, Logger: zerolog.Nop(), EvalTimeout: time.Second})
}

func TestExtract_TableDataLiteral(t *testing.T) {
	f := &pageFetcher{body: `<html><script>
var tableData = [{"rank":"S-","name":"Elysian Annihilator","price":3700}];
</script></html>`}

	rows, ok := newScraper(f).Extract(context.Background(), "https://example.com/").Rows()
	require.True(t, ok)
	require.Equal(t, models.Dataset{{"S-", "Elysian Annihilator", "3700"}}, rows)
	require.Equal(t, 1, f.calls)
}

func TestExtract_RelaxedLiteral(t *testing.T) {
	f := &pageFetcher{body: `<script>new Table({ data: [{rank: 'A+', name: 'Hidition NT6', price: 1050}, {rank: 'A+', name: 'Sennheiser IE600', price: 700},] });</script>`}

	rows, ok := newScraper(f).Extract(context.Background(), "https://example.com/").Rows()
	require.True(t, ok)
	want := models.Dataset{
		{"A+", "Hidition NT6", "1050"},
		{"A+", "Sennheiser IE600", "700"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_UndecodableLiteralFallsThrough(t *testing.T) {
	// the first pattern captures a truncated span; the second decodes
	f := &pageFetcher{body: `<script>
var tableData = [[1, 2];
var cfg = { data: [{"rank": "S", "name": "Monarch", "price": "1000"}] };
</script>`}

	rows, ok := newScraper(f).Extract(context.Background(), "https://example.com/").Rows()
	require.True(t, ok)
	require.Equal(t, models.Dataset{{"S", "Monarch", "1000"}}, rows)
}

func TestExtract_DecodedButEmptyIsAbsent(t *testing.T) {
	// a decoded object literal settles the strategy even though it yields
	// nothing; the text heuristic is not consulted
	f := &pageFetcher{body: `<script>tablepress_1 = {"rows": 2};</script>
<p>S- | Elysian Annihilator | $3700 | U-shaped</p>`}

	require.False(t, newScraper(f).Extract(context.Background(), "https://example.com/").OK())
}

func TestExtract_TextHeuristic(t *testing.T) {
	f := &pageFetcher{body: `<html><head><style>td { color: red }</style></head><body>
<p>S- | Elysian Annihilator | $3700 | U-shaped</p>
<p>A+ | Moondrop Variations | $520 | U-shaped | Sub-bass-focused</p>
<p>random text with no grade</p>
<script>var x = "S- | hidden | $1 | nope";</script>
</body></html>`}

	rows, ok := newScraper(f).Extract(context.Background(), "https://example.com/").Rows()
	require.True(t, ok)
	want := models.Dataset{
		{"S-", "Elysian Annihilator", "$3700", "U-shaped"},
		{"A+", "Moondrop Variations", "$520", "U-shaped", "Sub-bass-focused"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_FetchFailureIsAbsent(t *testing.T) {
	f := &pageFetcher{err: engine.NewEngineError(engine.ErrCodeTransport, "unexpected status 503", nil).WithStatus(503)}
	require.False(t, newScraper(f).Extract(context.Background(), "https://example.com/").OK())
}

func TestHeuristicRows(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  models.Dataset
	}{
		{
			name:  "graded line with price",
			lines: []string{"S- | IEM Name | $3700 | U-shaped"},
			want:  models.Dataset{{"S-", "IEM Name", "$3700", "U-shaped"}},
		},
		{
			name:  "no grade",
			lines: []string{"random text with no grade"},
			want:  nil,
		},
		{
			name:  "too few fields",
			lines: []string{"A+ | Hidition NT6 | 1050"},
			want:  nil,
		},
		{
			name:  "lower grade with year",
			lines: []string{"C | Budget Pick | 2019 | Bright"},
			want:  models.Dataset{{"C", "Budget Pick", "2019", "Bright"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, HeuristicRows(tt.lines))
		})
	}
}

func TestHeuristicRows_CapsCandidates(t *testing.T) {
	var lines []string
	for i := 0; i < 15; i++ {
		lines = append(lines, fmt.Sprintf("A | IEM %d | $%d | Neutral", i, 100+i))
	}
	rows := HeuristicRows(lines)
	require.Len(t, rows, 10)
	require.Equal(t, "IEM 9", rows[9][1])
}

func TestHeuristicRows_CapAppliesBeforeFieldFilter(t *testing.T) {
	// ten short candidates use up the cap
	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, fmt.Sprintf("S | short %d | $%d", i, i))
	}
	lines = append(lines, "S | Long Enough | $3700 | U-shaped")
	require.Empty(t, HeuristicRows(lines))
}

func TestExtract_OverTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.UserAgent(), "Chrome") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fmt.Fprint(w, `<script>var tableData = [["S-","Elysian Annihilator"]];</script>`)
	}))
	defer server.Close()

	client, err := transport.New(transport.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer client.Close()

	rows, ok := newScraper(client).Extract(context.Background(), server.URL).Rows()
	require.True(t, ok)
	require.Equal(t, models.Dataset{{"S-", "Elysian Annihilator"}}, rows)
}
