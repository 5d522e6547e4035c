package browser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecondActiveTabWarmsFirst(t *testing.T) {
	t.Parallel()
	state, workspaceID := seededState(t)

	first := newActiveTab(t, state, workspaceID, "https://one.example")
	second := newActiveTab(t, state, workspaceID, "https://two.example")

	require.Equal(t, TabWarm, state.Tabs[first].RuntimeState)
	require.Equal(t, TabActive, state.Tabs[second].RuntimeState)
	checkInvariants(t, state)
}

func TestBudgetEvictsLeastRecentTab(t *testing.T) {
	t.Parallel()
	state, workspaceID := seededState(t)
	mustApply(t, state, SettingSet{Key: WarmPoolBudgetKey, Value: IntSetting(1)})

	first := newActiveTab(t, state, workspaceID, "https://one.example")
	second := newActiveTab(t, state, workspaceID, "https://two.example")
	third := newActiveTab(t, state, workspaceID, "https://three.example")

	require.Equal(t, TabDiscarded, state.Tabs[first].RuntimeState)
	require.Equal(t, TabWarm, state.Tabs[second].RuntimeState)
	require.Equal(t, TabActive, state.Tabs[third].RuntimeState)
	checkInvariants(t, state)
}

func TestShrinkingBudgetEvictsImmediately(t *testing.T) {
	t.Parallel()
	state, workspaceID := seededState(t)

	var tabs []TabID
	for i := 0; i < 4; i++ {
		tabs = append(tabs, newActiveTab(t, state, workspaceID, fmt.Sprintf("https://t%d.example", i)))
	}
	require.Equal(t, TabWarm, state.Tabs[tabs[0]].RuntimeState)

	ops := mustApply(t, state, SettingSet{Key: WarmPoolBudgetKey, Value: IntSetting(0)})

	for _, tabID := range tabs[:3] {
		require.Equal(t, TabDiscarded, state.Tabs[tabID].RuntimeState)
	}
	require.Equal(t, TabActive, state.Tabs[tabs[3]].RuntimeState)
	require.Greater(t, len(ops), 1, "eviction must emit UpsertTab ops alongside SettingChanged")
	checkInvariants(t, state)
}

func TestSwitchProfileDiscardsInactiveProfileTabs(t *testing.T) {
	t.Parallel()
	state, firstWorkspace := seededState(t)
	firstProfile := state.ActiveProfileID

	warmTab := newActiveTab(t, state, firstWorkspace, "https://one.example")
	activeTab := newActiveTab(t, state, firstWorkspace, "https://two.example")
	require.Equal(t, TabWarm, state.Tabs[warmTab].RuntimeState)

	mustApply(t, state, NewProfile{Name: "Work"})

	require.NotEqual(t, firstProfile, state.ActiveProfileID)
	require.Equal(t, TabDiscarded, state.Tabs[warmTab].RuntimeState,
		"warm tabs of a left profile must be evicted")
	require.Equal(t, TabDiscarded, state.Tabs[activeTab].RuntimeState,
		"the previously active tab must be evicted with its profile")
	checkInvariants(t, state)
}

func TestSwitchingBackRestoresActiveTab(t *testing.T) {
	t.Parallel()
	state, firstWorkspace := seededState(t)
	firstProfile := state.ActiveProfileID
	tabID := newActiveTab(t, state, firstWorkspace, "https://one.example")

	mustApply(t, state, NewProfile{Name: "Work"})
	require.Equal(t, TabDiscarded, state.Tabs[tabID].RuntimeState)

	mustApply(t, state, SwitchProfile{ProfileID: firstProfile})

	require.Equal(t, TabActive, state.Tabs[tabID].RuntimeState,
		"switching back must reactivate the profile's active tab")
	checkInvariants(t, state)
}

func TestWarmPoolBudgetClamping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value SettingValue
		set   bool
		want  int
	}{
		{name: "unset", want: defaultWarmPoolBudget},
		{name: "wrong kind", value: TextSetting("many"), set: true, want: defaultWarmPoolBudget},
		{name: "negative", value: IntSetting(-3), set: true, want: 0},
		{name: "zero", value: IntSetting(0), set: true, want: 0},
		{name: "in range", value: IntSetting(12), set: true, want: 12},
		{name: "above cap", value: IntSetting(1000), set: true, want: maxWarmPoolBudget},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			state := NewState()
			if tc.set {
				state.Settings[WarmPoolBudgetKey] = tc.value
			}
			require.Equal(t, tc.want, state.warmPoolBudget())
		})
	}
}

func TestWarmLRUNeverReferencesDeletedTabs(t *testing.T) {
	t.Parallel()
	state, workspaceID := seededState(t)
	profileID := state.ActiveProfileID

	first := newActiveTab(t, state, workspaceID, "https://one.example")
	newActiveTab(t, state, workspaceID, "https://two.example")

	mustApply(t, state, CloseTab{TabID: first})

	require.NotContains(t, state.warmLRU[profileID], first)
	checkInvariants(t, state)
}

func TestLiveSurfaceBoundHolds(t *testing.T) {
	t.Parallel()
	state, workspaceID := seededState(t)
	mustApply(t, state, SettingSet{Key: WarmPoolBudgetKey, Value: IntSetting(2)})

	for i := 0; i < 10; i++ {
		newActiveTab(t, state, workspaceID, fmt.Sprintf("https://t%d.example", i))
	}

	live := 0
	for _, tab := range state.Tabs {
		if tab.RuntimeState == TabActive || tab.RuntimeState == TabWarm {
			live++
		}
	}
	require.LessOrEqual(t, live, 3, "live surfaces must stay within budget+1")
	require.Len(t, state.Tabs, 10)
	checkInvariants(t, state)
}
