package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Component names, also used as keys in feature contributions.
const (
	Semantic = "semantic"
	Role     = "role"
	Industry = "industry"
	Geo      = "geo"
)

// Components lists the score components in reporting order.
var Components = []string{Semantic, Role, Industry, Geo}

// weightTolerance is the allowed deviation of the weight sum from 1.0.
const weightTolerance = 0.01

// ErrInvalidWeights is returned when a weight update is rejected.
var ErrInvalidWeights = errors.New("invalid scoring weights")

// WeightSet holds the weight of each score component.
type WeightSet struct {
	Semantic float64 `json:"semantic" mapstructure:"semantic"`
	Role     float64 `json:"role" mapstructure:"role"`
	Industry float64 `json:"industry" mapstructure:"industry"`
	Geo      float64 `json:"geo" mapstructure:"geo"`
}

// DefaultWeights favours snippet relevance over the remaining signals.
func DefaultWeights() WeightSet {
	return WeightSet{
		Semantic: 0.55,
		Role:     0.20,
		Industry: 0.15,
		Geo:      0.10,
	}
}

func (w WeightSet) Sum() float64 {
	return w.Semantic + w.Role + w.Industry + w.Geo
}

// Get returns the weight of the named component and whether the name is known.
func (w WeightSet) Get(component string) (float64, bool) {
	switch component {
	case Semantic:
		return w.Semantic, true
	case Role:
		return w.Role, true
	case Industry:
		return w.Industry, true
	case Geo:
		return w.Geo, true
	default:
		return 0, false
	}
}

func (w *WeightSet) set(component string, value float64) bool {
	switch component {
	case Semantic:
		w.Semantic = value
	case Role:
		w.Role = value
	case Industry:
		w.Industry = value
	case Geo:
		w.Geo = value
	default:
		return false
	}
	return true
}

// Map returns the weights keyed by component name.
func (w WeightSet) Map() map[string]float64 {
	return map[string]float64{
		Semantic: w.Semantic,
		Role:     w.Role,
		Industry: w.Industry,
		Geo:      w.Geo,
	}
}

// Validate checks that weights are finite, non-negative and sum to 1.0.
func (w WeightSet) Validate() error {
	for _, component := range Components {
		v, _ := w.Get(component)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s weight is not a finite number", ErrInvalidWeights, component)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s weight is negative (%.4f)", ErrInvalidWeights, component, v)
		}
	}

	if sum := w.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %.4f, must sum to 1.0", ErrInvalidWeights, sum)
	}

	return nil
}

// Merge returns a copy of w with the named components overwritten.
// Unknown component names are rejected; nothing is validated beyond the keys.
func (w WeightSet) Merge(update map[string]float64) (WeightSet, error) {
	merged := w

	keys := make([]string, 0, len(update))
	for key := range update {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !merged.set(strings.ToLower(strings.TrimSpace(key)), update[key]) {
			return w, fmt.Errorf("%w: unknown component %q (expected one of %s)",
				ErrInvalidWeights, key, strings.Join(Components, ", "))
		}
	}

	return merged, nil
}
