package tui

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/tonimelisma/switchboard/internal/browser"
)

// maxSwitcherResults caps how many matches the switcher shows at once.
const maxSwitcherResults = 8

// tabMatch is one ranked switcher candidate. Lower rank is better; ties break
// on tab id so results are stable while typing.
type tabMatch struct {
	TabID browser.TabID
	rank  int
}

// Match ranks, lowest first:
//
//	0  title or URL contains the query
//	1+ edit distance between the query and the closest title prefix
//
// Substring hits always beat distance hits, and distance hits beyond the
// query length are dropped as noise.
func rankTabs(state *browser.State, query string) []tabMatch {
	query = strings.ToLower(strings.TrimSpace(query))

	profile := state.Profiles[state.ActiveProfileID]
	if profile == nil {
		return nil
	}

	var matches []tabMatch
	for _, workspaceID := range profile.WorkspaceOrder {
		workspace := state.Workspaces[workspaceID]
		if workspace == nil {
			continue
		}
		for _, tabID := range workspace.TabOrder {
			tab := state.Tabs[tabID]
			if tab == nil {
				continue
			}
			if query == "" {
				matches = append(matches, tabMatch{TabID: tabID})
				continue
			}

			rank, ok := matchRank(tab, query)
			if !ok {
				continue
			}
			matches = append(matches, tabMatch{TabID: tabID, rank: rank})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		return matches[i].TabID < matches[j].TabID
	})

	if len(matches) > maxSwitcherResults {
		matches = matches[:maxSwitcherResults]
	}

	return matches
}

func matchRank(tab *browser.Tab, query string) (int, bool) {
	title := strings.ToLower(tab.Title)
	url := strings.ToLower(tab.URL)

	if strings.Contains(title, query) || strings.Contains(url, query) {
		return 0, true
	}

	// Compare against the title prefix of the query's length so a short
	// query is not penalized for everything the title says after it.
	// Lengths are in runes: slicing by bytes would cut multibyte titles
	// mid-rune and inflate the distance.
	queryLen := len([]rune(query))
	prefix := []rune(title)
	if len(prefix) > queryLen {
		prefix = prefix[:queryLen]
	}
	distance := levenshtein.ComputeDistance(query, string(prefix))
	if distance >= queryLen {
		return 0, false
	}

	return 1 + distance, true
}
