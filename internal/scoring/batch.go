package scoring

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/spigell/profile-scout/internal/profile"
)

// ScoreAll scores candidates in place using up to workers goroutines.
// Workers <= 0 means one per CPU. Only context cancellation can make it fail.
func ScoreAll(ctx context.Context, engine *Engine, persona *profile.Persona, icp *profile.ICP, candidates *profile.Candidates, workers int) error {
	if candidates == nil || candidates.Len() == 0 {
		return nil
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, candidate := range candidates.Items {
		if err := gCtx.Err(); err != nil {
			break
		}

		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			engine.Apply(candidate, persona, icp)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

// Rank orders candidates by final score, best first. Ties are broken by URL
// and unscored candidates go last.
func Rank(candidates *profile.Candidates) {
	if candidates == nil {
		return
	}

	sort.SliceStable(candidates.Items, func(i, j int) bool {
		a, b := candidates.Items[i], candidates.Items[j]
		if a.FinalScore() != b.FinalScore() {
			return a.FinalScore() > b.FinalScore()
		}
		return a.LinkedInURL < b.LinkedInURL
	})
}
