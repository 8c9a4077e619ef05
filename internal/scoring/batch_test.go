package scoring

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/profile-scout/internal/profile"
)

func TestScoreAllMatchesSequentialScoring(t *testing.T) {
	engine := NewDefaultEngine(nil)
	persona := salesPersona()
	icp := &profile.ICP{Industry: "SaaS"}

	candidates := &profile.Candidates{}
	for i := 0; i < 50; i++ {
		candidates.Items = append(candidates.Items, &profile.Candidate{
			LinkedInURL:   fmt.Sprintf("https://www.linkedin.com/in/p%02d", i),
			InferredTitle: []string{"VP of Sales", "Sales Manager", "Engineer"}[i%3],
			ResultSnippet: []string{"pipeline and quota", "CRM", ""}[i%3],
		})
	}

	require.NoError(t, ScoreAll(context.Background(), engine, persona, icp, candidates, 4))

	for _, candidate := range candidates.Items {
		require.NotNil(t, candidate.Scores)
		require.NotNil(t, candidate.Explainability)
		assert.Equal(t, persona.Name, candidate.Persona)

		scores, explain := engine.Score(candidate, persona, icp)
		assert.Equal(t, scores, *candidate.Scores)
		assert.Equal(t, explain, *candidate.Explainability)
	}
}

func TestScoreAllStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	candidates := &profile.Candidates{Items: []*profile.Candidate{{LinkedInURL: "u1"}, {LinkedInURL: "u2"}}}

	err := ScoreAll(ctx, NewDefaultEngine(nil), salesPersona(), nil, candidates, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScoreAllEmpty(t *testing.T) {
	require.NoError(t, ScoreAll(context.Background(), NewDefaultEngine(nil), nil, nil, nil, 0))
	require.NoError(t, ScoreAll(context.Background(), NewDefaultEngine(nil), nil, nil, &profile.Candidates{}, 0))
}

func TestRank(t *testing.T) {
	candidates := &profile.Candidates{Items: []*profile.Candidate{
		{LinkedInURL: "c", Scores: &profile.Scores{Final: 0.4}},
		{LinkedInURL: "unscored"},
		{LinkedInURL: "b", Scores: &profile.Scores{Final: 0.9}},
		{LinkedInURL: "a", Scores: &profile.Scores{Final: 0.4}},
	}}

	Rank(candidates)

	assert.Equal(t, []string{"b", "a", "c", "unscored"}, candidates.URLs())
}
