package browser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSettingValueJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value SettingValue
		wire  string
	}{
		{"bool", BoolSetting(true), `{"kind":"bool","value":true}`},
		{"int", IntSetting(-7), `{"kind":"int","value":-7}`},
		{"text", TextSetting("dark"), `{"kind":"text","value":"dark"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			encoded, err := json.Marshal(tc.value)
			require.NoError(t, err)
			require.JSONEq(t, tc.wire, string(encoded))

			var decoded SettingValue
			require.NoError(t, json.Unmarshal([]byte(tc.wire), &decoded))
			require.True(t, decoded.Equal(tc.value))
		})
	}
}

func TestSettingValueRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	var decoded SettingValue
	err := json.Unmarshal([]byte(`{"kind":"float","value":1.5}`), &decoded)

	require.Error(t, err)
}

func TestStateCloneIsDeep(t *testing.T) {
	t.Parallel()
	state, workspaceID := seededState(t)
	tabID := newActiveTab(t, state, workspaceID, "https://one.example")

	clone := state.Clone()
	mustApply(t, state, ObserveTabTitle{TabID: tabID, Title: "changed"})
	mustApply(t, state, NewTab{WorkspaceID: workspaceID, MakeActive: true})

	require.Empty(t, clone.Tabs[tabID].Title)
	require.Len(t, clone.Tabs, 1)
	require.Len(t, clone.Workspaces[workspaceID].TabOrder, 1)
}
