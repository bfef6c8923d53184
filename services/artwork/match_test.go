package artwork

import (
	"context"
	"errors"
	"testing"
)

type searchCall struct {
	query string
	year  int
}

func recordingSearch(calls *[]searchCall, fn searchFunc) searchFunc {
	return func(ctx context.Context, query string, year int) ([]SearchItem, error) {
		*calls = append(*calls, searchCall{query: query, year: year})
		return fn(ctx, query, year)
	}
}

func TestFindFirstMatchYearFirst(t *testing.T) {
	var calls []searchCall
	search := recordingSearch(&calls, func(_ context.Context, query string, year int) ([]SearchItem, error) {
		if query == "Attack on Titan" && year == 0 {
			return []SearchItem{{ID: 1429, Name: "Attack on Titan"}}, nil
		}
		return nil, nil
	})

	res := findFirstMatch(context.Background(), search, []string{"Attack on Titan Final Season", "Attack on Titan"}, 2013)
	if res.Item == nil || res.Item.ID != 1429 {
		t.Fatalf("expected match 1429, got %+v", res)
	}
	if res.HadError {
		t.Fatal("no search errored, HadError should be false")
	}

	want := []searchCall{
		{"Attack on Titan Final Season", 2013},
		{"Attack on Titan Final Season", 0},
		{"Attack on Titan", 2013},
		{"Attack on Titan", 0},
	}
	if len(calls) != len(want) {
		t.Fatalf("expected %d calls, got %d: %v", len(want), len(calls), calls)
	}
	for i, c := range calls {
		if c != want[i] {
			t.Fatalf("call %d = %v, want %v", i, c, want[i])
		}
	}
}

func TestFindFirstMatchNoYearSkipsQualifiedSearch(t *testing.T) {
	var calls []searchCall
	search := recordingSearch(&calls, func(context.Context, string, int) ([]SearchItem, error) {
		return nil, nil
	})

	findFirstMatch(context.Background(), search, []string{"Frieren"}, 0)
	if len(calls) != 1 {
		t.Fatalf("expected a single unqualified call, got %v", calls)
	}
	if calls[0].year != 0 {
		t.Fatalf("expected year 0, got %d", calls[0].year)
	}
}

func TestFindFirstMatchEarlierCandidateWins(t *testing.T) {
	search := func(_ context.Context, query string, year int) ([]SearchItem, error) {
		switch query {
		case "First":
			return []SearchItem{{ID: 1}}, nil
		case "Second":
			return []SearchItem{{ID: 2}}, nil
		}
		return nil, nil
	}

	res := findFirstMatch(context.Background(), search, []string{"First", "Second"}, 0)
	if res.Item == nil || res.Item.ID != 1 {
		t.Fatalf("expected first candidate's match, got %+v", res)
	}
}

func TestFindFirstMatchAllErrors(t *testing.T) {
	search := func(context.Context, string, int) ([]SearchItem, error) {
		return nil, errors.New("503 from upstream")
	}

	res := findFirstMatch(context.Background(), search, []string{"Anything"}, 2020)
	if res.Item != nil {
		t.Fatalf("expected no item, got %+v", res.Item)
	}
	if !res.HadError {
		t.Fatal("expected HadError when every search failed")
	}
}

func TestFindFirstMatchAllEmpty(t *testing.T) {
	search := func(context.Context, string, int) ([]SearchItem, error) {
		return nil, nil
	}

	res := findFirstMatch(context.Background(), search, []string{"Anything", "Else"}, 2020)
	if res.Item != nil {
		t.Fatalf("expected no item, got %+v", res.Item)
	}
	if res.HadError {
		t.Fatal("clean empty results must not be flagged as errored")
	}
}

func TestFindFirstMatchErrorThenMatchKeepsFlag(t *testing.T) {
	search := func(_ context.Context, query string, year int) ([]SearchItem, error) {
		if query == "Broken" {
			return nil, errors.New("timeout")
		}
		return []SearchItem{{ID: 7}}, nil
	}

	res := findFirstMatch(context.Background(), search, []string{"Broken", "Works"}, 0)
	if res.Item == nil || res.Item.ID != 7 {
		t.Fatalf("expected fallback match, got %+v", res)
	}
	if !res.HadError {
		t.Fatal("an earlier failed search should keep HadError set")
	}
}
