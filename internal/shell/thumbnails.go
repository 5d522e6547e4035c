package shell

import (
	"github.com/tonimelisma/switchboard/internal/browser"
)

// maxThumbnailEntries bounds how many tabs keep a thumbnail. Thumbnails are
// the largest per-tab payload in the state, so retention is capped globally
// rather than per profile.
const maxThumbnailEntries = 120

// thumbnailLRU tracks which tabs hold thumbnails, least-recent first. The
// list is shell-side bookkeeping; the thumbnails themselves live on the tabs
// and are cleared through ordinary intents so persistence and patch
// consumers stay in sync.
type thumbnailLRU struct {
	order []browser.TabID
}

func (l *thumbnailLRU) touch(id browser.TabID) {
	l.remove(id)
	l.order = append(l.order, id)
}

func (l *thumbnailLRU) remove(id browser.TabID) {
	kept := l.order[:0]
	for _, candidate := range l.order {
		if candidate != id {
			kept = append(kept, candidate)
		}
	}
	l.order = kept
}

// evictable prunes entries whose tab or thumbnail is gone and returns the
// oldest tabs beyond the retention cap. The caller clears those thumbnails
// by dispatching; entries stay listed until the clear succeeds.
func (l *thumbnailLRU) evictable(state *browser.State) []browser.TabID {
	kept := l.order[:0]
	for _, id := range l.order {
		if tab, ok := state.Tabs[id]; ok && tab.ThumbnailDataURL != "" {
			kept = append(kept, id)
		}
	}
	l.order = kept

	if len(l.order) <= maxThumbnailEntries {
		return nil
	}

	return append([]browser.TabID(nil), l.order[:len(l.order)-maxThumbnailEntries]...)
}
