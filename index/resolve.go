package index

import (
	"context"
	"sort"
	"strings"
)

// Resolve defaults, matching the interactive completion behavior.
const (
	DefaultResolveLimit     = 24
	DefaultResolveThreshold = 45

	// LookupThreshold is the stricter score cut used when a single best
	// match is wanted rather than a completion list.
	LookupThreshold = 60
)

// ResolveOptions tune fuzzy resolution.
type ResolveOptions struct {
	// Scope selects the visibility filters to apply. Empty means the
	// default view.
	Scope string

	// Limit caps the number of returned names. Defaults to
	// DefaultResolveLimit.
	Limit int

	// Threshold is the minimum boosted score a candidate must reach.
	// Nil means DefaultResolveThreshold; an explicit zero admits every
	// candidate.
	Threshold *float64
}

// Resolve ranks the candidate names visible to the scope against a partial
// query and returns the best matches in descending score order.
//
// Candidates from packages deny-listed for the scope are scored against the
// empty string, demoting rather than removing them: boosts still apply, so
// an exact-name match may stay visible at a low score.
func (ix *Index) Resolve(ctx context.Context, query string, opts ResolveOptions) ([]string, error) {
	if err := ix.gate.BeginRead(ctx); err != nil {
		return nil, err
	}
	defer ix.gate.EndRead()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultResolveLimit
	}
	threshold := float64(DefaultResolveThreshold)
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}

	names, byName := ix.candidatesForScope(opts.Scope)
	denied := ix.deniedPackages(opts.Scope)
	lowerQuery := strings.ToLower(query)

	type match struct {
		name  string
		score float64
	}
	matches := make([]match, 0, len(names))
	for _, name := range names {
		target := name
		if denied != nil {
			if sym := byName[name]; sym != nil && denied[sym.Package] {
				target = ""
			}
		}
		score := ratio(query, target)

		lower := strings.ToLower(name)
		if lower == lowerQuery {
			score += 50
		}
		if strings.Contains(lower, lowerQuery) {
			score += 20
		}
		matches = append(matches, match{name: name, score: score})
	}

	// Stable sort keeps original listing order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	results := make([]string, 0, limit)
	for _, m := range matches {
		if m.score < threshold {
			break
		}
		results = append(results, m.name)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// ratio returns the normalized similarity of two strings in [0, 100]:
// 100·2·LCS(a,b)/(|a|+|b|), the complement of the normalized indel
// distance. Case-sensitive.
func ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 || len(br) == 0 {
		return 0
	}

	prev := make([]int, len(br)+1)
	cur := make([]int, len(br)+1)
	for i := 0; i < len(ar); i++ {
		for j := 0; j < len(br); j++ {
			if ar[i] == br[j] {
				cur[j+1] = prev[j] + 1
			} else {
				cur[j+1] = max(prev[j+1], cur[j])
			}
		}
		prev, cur = cur, prev
	}
	lcs := prev[len(br)]
	return 200 * float64(lcs) / float64(len(ar)+len(br))
}
