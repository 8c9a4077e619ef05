package discovery

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/profile-scout/internal/profile"
)

func TestBuildQueries(t *testing.T) {
	persona := &profile.Persona{
		Titles:   []string{"VP of Sales", "Head of Revenue", "CRO"},
		Keywords: []string{"SaaS", "pipeline"},
	}

	got := BuildQueries(persona, " Berlin ")
	expect := []string{
		`site:linkedin.com/in/ "VP of Sales" "Berlin" "SaaS"`,
		`site:linkedin.com/in/ "Head of Revenue" "Berlin" "SaaS"`,
	}

	if len(got) != len(expect) {
		t.Fatalf("expected %d queries, got %d: %v", len(expect), len(got), got)
	}
	for i := range expect {
		if got[i] != expect[i] {
			t.Fatalf("query %d: expected %q, got %q", i, expect[i], got[i])
		}
	}

	bare := BuildQueries(&profile.Persona{Titles: []string{"CMO"}}, "")
	if len(bare) != 1 || bare[0] != `site:linkedin.com/in/ "CMO"` {
		t.Fatalf("unexpected bare query: %v", bare)
	}

	if len(BuildQueries(&profile.Persona{}, "Berlin")) != 0 {
		t.Fatalf("expected no queries without titles")
	}
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		name     string
		result   *SearchResult
		expected profile.Candidate
	}{
		{
			name: "full title",
			result: &SearchResult{
				Link:    "https://www.linkedin.com/in/jane",
				Title:   "Jane Doe - VP of Sales - Acme | LinkedIn",
				Snippet: "Location: London · 500+ connections. Enterprise sales leader.",
				Query:   "q",
			},
			expected: profile.Candidate{
				LinkedInURL:      "https://www.linkedin.com/in/jane",
				InferredName:     "Jane Doe",
				InferredTitle:    "VP of Sales",
				InferredCompany:  "Acme",
				InferredLocation: "London",
				ResultSnippet:    "Location: London · 500+ connections. Enterprise sales leader.",
				Query:            "q",
			},
		},
		{
			name:   "name only",
			result: &SearchResult{Link: "u", Title: "John Smith", Snippet: "No location here"},
			expected: profile.Candidate{
				LinkedInURL:   "u",
				InferredName:  "John Smith",
				ResultSnippet: "No location here",
			},
		},
		{
			name:     "empty title",
			result:   &SearchResult{Link: "u"},
			expected: profile.Candidate{LinkedInURL: "u"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseResult(tt.result)
			if got.ID == "" {
				t.Fatalf("expected candidate id to be generated")
			}
			got.ID = ""
			if *got != tt.expected {
				t.Fatalf("unexpected candidate:\n got  %+v\n want %+v", *got, tt.expected)
			}
		})
	}
}

type fakeSearchAPI struct {
	mu      sync.Mutex
	queries []string
	fail    map[string]bool
	items   map[string][]map[string]string
	gzip    bool
}

func (f *fakeSearchAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	q := r.URL.Query()
	if q.Get("key") != "key" || q.Get("cx") != "cx" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	query := q.Get("q")
	f.queries = append(f.queries, query)

	if f.fail[query] {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	body, _ := json.Marshal(map[string]any{"items": f.items[query]})

	if f.gzip {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write(body)
		_ = gz.Close()
		return
	}

	_, _ = w.Write(body)
}

func TestSearchProfilesDedupesAndLimits(t *testing.T) {
	persona := &profile.Persona{Name: "Sales leader", Titles: []string{"VP of Sales", "Head of Revenue"}}
	queries := BuildQueries(persona, "")

	api := &fakeSearchAPI{
		gzip: true,
		items: map[string][]map[string]string{
			queries[0]: {
				{"link": "https://www.linkedin.com/in/a", "title": "A - VP of Sales - Acme", "snippet": "sales"},
				{"link": "https://www.linkedin.com/in/b", "title": "B - VP of Sales", "snippet": "crm"},
			},
			queries[1]: {
				{"link": "https://www.linkedin.com/in/a", "title": "A - Head of Revenue", "snippet": "dup"},
				{"link": "https://www.linkedin.com/in/c", "title": "C - Head of Revenue", "snippet": "revenue"},
				{"link": "https://www.linkedin.com/in/d", "title": "D - Head of Revenue", "snippet": "revenue"},
			},
		},
	}
	server := httptest.NewServer(api)
	defer server.Close()

	client := New(context.Background(), zap.NewNop(), "key", "cx")
	client.APIURL = server.URL

	candidates, err := client.SearchProfiles(persona, &SearchParams{Limit: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	urls := candidates.URLs()
	expect := []string{"https://www.linkedin.com/in/a", "https://www.linkedin.com/in/b", "https://www.linkedin.com/in/c"}
	if strings.Join(urls, ",") != strings.Join(expect, ",") {
		t.Fatalf("unexpected urls: %v", urls)
	}

	first := candidates.FindByURL("https://www.linkedin.com/in/a")
	if first.InferredCompany != "Acme" || first.Persona != "Sales leader" || first.Query != queries[0] {
		t.Fatalf("unexpected first candidate: %+v", first)
	}
}

func TestSearchProfilesSkipsFailingQuery(t *testing.T) {
	core, observed := observer.New(zapcore.ErrorLevel)

	persona := &profile.Persona{Titles: []string{"CMO", "VP Marketing"}}
	queries := BuildQueries(persona, "")

	api := &fakeSearchAPI{
		fail: map[string]bool{queries[0]: true},
		items: map[string][]map[string]string{
			queries[1]: {{"link": "https://www.linkedin.com/in/m", "title": "M - VP Marketing"}},
		},
	}
	server := httptest.NewServer(api)
	defer server.Close()

	client := New(context.Background(), zap.New(core), "key", "cx")
	client.APIURL = server.URL

	candidates, err := client.SearchProfiles(persona, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if candidates.Len() != 1 {
		t.Fatalf("expected 1 candidate, got %d", candidates.Len())
	}
	if len(api.queries) != 2 {
		t.Fatalf("expected both queries to run, got %v", api.queries)
	}
	if observed.FilterMessage("search query failed").Len() != 1 {
		t.Fatalf("expected failing query to be logged")
	}
}

func TestSearchProfilesWithoutCredentials(t *testing.T) {
	client := New(context.Background(), nil, "", "cx")

	candidates, err := client.SearchProfiles(&profile.Persona{Titles: []string{"CMO"}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidates.Len() != 0 {
		t.Fatalf("expected no candidates without credentials")
	}
}
