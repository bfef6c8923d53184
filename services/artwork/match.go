package artwork

import "context"

// MatchResult distinguishes a confirmed miss from one where a search call
// failed along the way. A negative outcome with HadError set must never be
// cached: the provider may simply have been unreachable.
type MatchResult struct {
	Item     *SearchItem
	HadError bool
}

// searchFunc is either Client.SearchTV or Client.SearchMovie.
type searchFunc func(ctx context.Context, query string, year int) ([]SearchItem, error)

// findFirstMatch tries each candidate query in order. When a year hint is
// present the year-qualified search runs first, falling back to an
// unqualified search for the same candidate before moving on. The order is
// strict and sequential: it encodes confidence, and an earlier candidate's
// hit must win even if a later candidate would also match.
func findFirstMatch(ctx context.Context, search searchFunc, queries []string, year int) MatchResult {
	hadError := false

	for _, q := range queries {
		if year > 0 {
			items, err := search(ctx, q, year)
			if err != nil {
				hadError = true
			} else if len(items) > 0 {
				return MatchResult{Item: &items[0], HadError: hadError}
			}
		}

		items, err := search(ctx, q, 0)
		if err != nil {
			hadError = true
		} else if len(items) > 0 {
			return MatchResult{Item: &items[0], HadError: hadError}
		}
	}

	return MatchResult{HadError: hadError}
}
