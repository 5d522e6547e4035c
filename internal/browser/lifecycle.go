package browser

// WarmPoolBudgetKey is the only setting key the core interprets: the number
// of non-visible tabs the active profile may keep resident as Warm.
const WarmPoolBudgetKey = "warm_pool_budget"

const (
	defaultWarmPoolBudget = 8
	maxWarmPoolBudget     = 32
)

// applyLifecycle re-evaluates the warm-pool policy and returns ops for tabs
// whose runtime state changed. The policy bounds live rendering surfaces to
// budget+1 regardless of how many profiles, workspaces, or tabs exist, and
// evicts every tab of a profile the moment that profile stops being active.
func applyLifecycle(state *State) []PatchOp {
	state.pruneWarmLRU()

	activeTabID := state.ActiveTabID()
	if activeTabID != 0 {
		state.touchWarmLRU(state.ActiveProfileID, activeTabID)
	}

	state.pruneWarmLRU()

	budget := state.warmPoolBudget()
	warm := state.warmSet(budget, activeTabID)

	var ops []PatchOp
	for _, tabID := range state.TabIDsInOrder() {
		tab := state.Tabs[tabID]

		desired := TabDiscarded
		switch {
		case tabID == activeTabID:
			desired = TabActive
		case tab.ProfileID == state.ActiveProfileID && warm[tabID]:
			desired = TabWarm
		}

		if tab.RuntimeState != desired {
			tab.RuntimeState = desired
			ops = append(ops, UpsertTab{Tab: *tab})
		}
	}

	return ops
}

// warmPoolBudget reads the budget setting, clamped to [0, maxWarmPoolBudget].
// A missing or non-integer value falls back to the default.
func (s *State) warmPoolBudget() int {
	value, ok := s.Settings[WarmPoolBudgetKey]
	if !ok || value.Kind != SettingInt {
		return defaultWarmPoolBudget
	}

	budget := value.Int
	if budget < 0 {
		return 0
	}
	if budget > maxWarmPoolBudget {
		return maxWarmPoolBudget
	}
	return int(budget)
}

// warmSet returns the most-recent budget entries of the active profile's
// recency list, excluding the active tab, as a membership set.
func (s *State) warmSet(budget int, activeTabID TabID) map[TabID]bool {
	warm := make(map[TabID]bool, budget)

	lru := s.warmLRU[s.ActiveProfileID]
	taken := 0
	for i := len(lru) - 1; i >= 0 && taken < budget; i-- {
		tabID := lru[i]
		if tabID == activeTabID {
			continue
		}
		tab, ok := s.Tabs[tabID]
		if !ok || tab.ProfileID != s.ActiveProfileID {
			continue
		}
		warm[tabID] = true
		taken++
	}

	return warm
}

// pruneWarmLRU drops recency entries for tabs that no longer exist or no
// longer belong to the listed profile.
func (s *State) pruneWarmLRU() {
	for profileID, lru := range s.warmLRU {
		kept := lru[:0]
		for _, tabID := range lru {
			tab, ok := s.Tabs[tabID]
			if ok && tab.ProfileID == profileID {
				kept = append(kept, tabID)
			}
		}
		if len(kept) == 0 {
			delete(s.warmLRU, profileID)
			continue
		}
		s.warmLRU[profileID] = kept
	}
}

// touchWarmLRU moves the tab to the most-recently-used end of the profile's
// recency list, inserting it when absent.
func (s *State) touchWarmLRU(profileID ProfileID, tabID TabID) {
	lru := removeTabID(s.warmLRU[profileID], tabID)
	s.warmLRU[profileID] = append(lru, tabID)
}

func (s *State) removeFromWarmLRU(profileID ProfileID, tabID TabID) {
	lru := removeTabID(s.warmLRU[profileID], tabID)
	if len(lru) == 0 {
		delete(s.warmLRU, profileID)
		return
	}
	s.warmLRU[profileID] = lru
}
