package scoring

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/profile-scout/internal/profile"
)

func salesPersona() *profile.Persona {
	return &profile.Persona{
		Name:     "Sales leader",
		Titles:   []string{"VP of Sales", "Head of Revenue"},
		Keywords: []string{"Sales", "pipeline", "CRM", "quota"},
		Goals:    []string{"grow revenue"},
	}
}

func salesCandidate() *profile.Candidate {
	return &profile.Candidate{
		LinkedInURL:      "https://www.linkedin.com/in/jane",
		InferredTitle:    "VP of Sales, EMEA",
		InferredLocation: "London",
		ResultSnippet:    "Enterprise sales leader building pipeline to grow revenue.",
	}
}

func TestScoreComponentsStayInRange(t *testing.T) {
	engine := NewDefaultEngine(zap.NewNop())

	cases := []struct {
		name      string
		candidate *profile.Candidate
		persona   *profile.Persona
	}{
		{name: "full match", candidate: salesCandidate(), persona: salesPersona()},
		{name: "empty candidate", candidate: &profile.Candidate{}, persona: salesPersona()},
		{name: "empty persona", candidate: salesCandidate(), persona: &profile.Persona{}},
		{name: "nil inputs", candidate: nil, persona: nil},
		{
			name:      "repeated keywords",
			candidate: &profile.Candidate{ResultSnippet: "sales sales sales"},
			persona:   &profile.Persona{Keywords: []string{"sales", "sales", "Sales"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scores, explain := engine.Score(tc.candidate, tc.persona, nil)

			for name, v := range map[string]float64{
				Semantic: scores.Semantic,
				Role:     scores.Role,
				Industry: scores.Industry,
				Geo:      scores.Geo,
				"final":  scores.Final,
			} {
				assert.GreaterOrEqual(t, v, 0.0, name)
				assert.LessOrEqual(t, v, 1.0, name)
			}

			sum := 0.0
			for _, v := range explain.FeatureContributions {
				sum += v
			}
			assert.InDelta(t, scores.Final, sum, 0.004)
			assert.Len(t, explain.FeatureContributions, 4)
		})
	}
}

func TestFinalIsWeightedSum(t *testing.T) {
	weights := WeightSet{Semantic: 0.4, Role: 0.3, Industry: 0.2, Geo: 0.1}
	engine, err := NewEngine(weights, nil)
	require.NoError(t, err)

	candidate := salesCandidate()
	persona := salesPersona()

	scores, explain := engine.Score(candidate, persona, &profile.ICP{Industry: "SaaS"})

	expected := weights.Semantic*semanticScore(candidate.ResultSnippet, persona) +
		weights.Role*roleScore(candidate.InferredTitle, persona.Titles) +
		weights.Industry*industryDefault +
		weights.Geo*geoKnownLocation

	assert.InDelta(t, expected, scores.Final, 0.0005+1e-6)
	assert.InDelta(t, weights.Role*1.0, explain.FeatureContributions[Role], 1e-9)
	assert.InDelta(t, weights.Geo*0.7, explain.FeatureContributions[Geo], 1e-9)
}

func TestScoreIsDeterministic(t *testing.T) {
	engine := NewDefaultEngine(nil)
	persona := &profile.Persona{
		Keywords: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"},
		Goals:    []string{"m", "n"},
	}
	candidate := &profile.Candidate{ResultSnippet: "abcdefghijklmn"}

	firstScores, firstExplain := engine.Score(candidate, persona, nil)
	for i := 0; i < 20; i++ {
		scores, explain := engine.Score(candidate, persona, nil)
		assert.Equal(t, firstScores, scores)
		assert.Equal(t, firstExplain, explain)
	}
}

func TestKeywordMatchingIsCaseInsensitive(t *testing.T) {
	persona := &profile.Persona{Keywords: []string{"Sales"}}
	snippet := "...enterprise sales leader..."

	assert.Equal(t, 1.0, semanticScore(snippet, persona))
	assert.Equal(t, []string{"Sales"}, matchedKeywords(snippet, persona))
}

func TestSemanticScore(t *testing.T) {
	cases := []struct {
		name     string
		snippet  string
		keywords []string
		expect   float64
	}{
		{name: "no keywords is neutral", snippet: "anything", keywords: nil, expect: 0.5},
		{name: "empty snippet", snippet: "", keywords: []string{"sales"}, expect: 0},
		{name: "half matched", snippet: "crm rollout", keywords: []string{"CRM", "quota"}, expect: 0.5},
		{name: "all matched", snippet: "CRM and QUOTA", keywords: []string{"crm", "quota"}, expect: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := semanticScore(tc.snippet, &profile.Persona{Keywords: tc.keywords})
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestRoleScore(t *testing.T) {
	cases := []struct {
		name   string
		title  string
		titles []string
		expect float64
	}{
		{name: "exact containment", title: "VP of Sales, EMEA", titles: []string{"VP of Sales"}, expect: 1.0},
		{name: "case insensitive", title: "vp OF sales", titles: []string{"VP of Sales"}, expect: 1.0},
		{name: "no overlap", title: "Software Engineer", titles: []string{"Chief Marketing Officer"}, expect: 0.2},
		{name: "missing candidate title", title: "", titles: []string{"VP of Sales"}, expect: 0.3},
		{name: "missing persona titles", title: "VP of Sales", titles: nil, expect: 0.3},
		{name: "partial overlap", title: "Sales Manager", titles: []string{"Director of Sales"}, expect: 1.0 / 3.0},
		{name: "partial overlap capped", title: "Director Revenue Operations", titles: []string{"Revenue Operations Director Global"}, expect: 0.75},
		{name: "cap applies", title: "Head Marketing Growth Brand Lead", titles: []string{"Lead Head Marketing Growth Brand"}, expect: 0.8},
		{
			name:   "first title with overlap wins over better later title",
			title:  "Head of Marketing Operations",
			titles: []string{"Marketing Director", "Head of Marketing Operations EMEA"},
			expect: 0.5,
		},
		{
			name:   "later exact title is not reached after earlier overlap",
			title:  "Sales Operations Manager",
			titles: []string{"Sales Director", "Sales Operations Manager"},
			expect: 0.5,
		},
		{
			name:   "skips titles without overlap",
			title:  "Chief Revenue Officer",
			titles: []string{"Software Engineer", "Chief Revenue Officer"},
			expect: 1.0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expect, roleScore(tc.title, tc.titles), 1e-9)
		})
	}
}

func TestPlaceholderScores(t *testing.T) {
	icp := &profile.ICP{Industry: "Fintech", SubIndustries: []string{"Payments"}}

	assert.Equal(t, 0.5, industryScore(salesCandidate(), icp))
	assert.Equal(t, 0.5, industryScore(&profile.Candidate{}, &profile.ICP{}))
	assert.Equal(t, 0.5, geoScore("", icp))
	assert.Equal(t, 0.7, geoScore("Berlin", icp))
}

func TestMatchedKeywordsCapped(t *testing.T) {
	keywords := make([]string, 0, 15)
	goals := make([]string, 0, 5)
	var snippet strings.Builder
	for i := 0; i < 15; i++ {
		keywords = append(keywords, fmt.Sprintf("kw%02d", i))
		snippet.WriteString(fmt.Sprintf("kw%02d ", i))
	}
	for i := 0; i < 5; i++ {
		goals = append(goals, fmt.Sprintf("goal%d", i))
		snippet.WriteString(fmt.Sprintf("goal%d ", i))
	}

	matched := matchedKeywords(snippet.String(), &profile.Persona{Keywords: keywords, Goals: goals})
	assert.Len(t, matched, 10)
}

func TestMatchedKeywordsIncludesGoalsAndDedupes(t *testing.T) {
	persona := &profile.Persona{
		Keywords: []string{"pipeline", "pipeline", "quota"},
		Goals:    []string{"Grow Revenue", "pipeline"},
		Pains:    []string{"churn"},
	}

	matched := matchedKeywords("Building pipeline to grow revenue, no churn.", persona)
	assert.ElementsMatch(t, []string{"pipeline", "Grow Revenue"}, matched)
}

func TestUpdateWeightsRejectsInvalidAndKeepsPrevious(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	engine := NewDefaultEngine(zap.New(core))

	candidate := salesCandidate()
	persona := salesPersona()
	before, beforeExplain := engine.Score(candidate, persona, nil)

	err := engine.UpdateWeights(map[string]float64{"semantic": 0.9})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidWeights))
	assert.Equal(t, DefaultWeights(), engine.Weights())

	after, afterExplain := engine.Score(candidate, persona, nil)
	assert.Equal(t, before, after)
	assert.Equal(t, beforeExplain, afterExplain)

	assert.Equal(t, 1, observed.FilterMessage("rejected scoring weights update").Len())
}

func TestUpdateWeights(t *testing.T) {
	cases := []struct {
		name    string
		update  map[string]float64
		wantErr bool
		expect  WeightSet
	}{
		{
			name:   "full set",
			update: map[string]float64{"semantic": 0.25, "role": 0.25, "industry": 0.25, "geo": 0.25},
			expect: WeightSet{Semantic: 0.25, Role: 0.25, Industry: 0.25, Geo: 0.25},
		},
		{
			name:   "partial update keeping total",
			update: map[string]float64{"semantic": 0.45, "role": 0.30},
			expect: WeightSet{Semantic: 0.45, Role: 0.30, Industry: 0.15, Geo: 0.10},
		},
		{
			name:   "within tolerance",
			update: map[string]float64{"semantic": 0.555},
			expect: WeightSet{Semantic: 0.555, Role: 0.20, Industry: 0.15, Geo: 0.10},
		},
		{name: "partial update breaking total", update: map[string]float64{"semantic": 0.9}, wantErr: true},
		{name: "subset summing to one breaks total", update: map[string]float64{"semantic": 0.5, "role": 0.5}, wantErr: true},
		{name: "unknown component", update: map[string]float64{"seniority": 0.0}, wantErr: true},
		{
			name:    "negative weight",
			update:  map[string]float64{"semantic": 0.75, "role": -0.1, "industry": 0.25, "geo": 0.1},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := NewDefaultEngine(nil)

			err := engine.UpdateWeights(tc.update)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidWeights)
				assert.Equal(t, DefaultWeights(), engine.Weights())
				return
			}

			require.NoError(t, err)
			got := engine.Weights()
			assert.InDelta(t, tc.expect.Semantic, got.Semantic, 1e-9)
			assert.InDelta(t, tc.expect.Role, got.Role, 1e-9)
			assert.InDelta(t, tc.expect.Industry, got.Industry, 1e-9)
			assert.InDelta(t, tc.expect.Geo, got.Geo, 1e-9)
		})
	}
}

func TestNewEngineValidatesWeights(t *testing.T) {
	_, err := NewEngine(WeightSet{Semantic: 1, Role: 1}, nil)
	require.ErrorIs(t, err, ErrInvalidWeights)
}

func TestConcurrentScoringSeesConsistentWeights(t *testing.T) {
	engine := NewDefaultEngine(nil)
	candidate := salesCandidate()
	persona := salesPersona()

	sets := []map[string]float64{
		{"semantic": 0.25, "role": 0.25, "industry": 0.25, "geo": 0.25},
		DefaultWeights().Map(),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = engine.UpdateWeights(sets[i%2])
		}
	}()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				scores, explain := engine.Score(candidate, persona, nil)
				sum := 0.0
				for _, v := range explain.FeatureContributions {
					sum += v
				}
				assert.InDelta(t, scores.Final, sum, 0.004)
			}
		}()
	}

	wg.Wait()
}
