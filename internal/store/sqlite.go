// Package store persists the browser state to an embedded SQLite database.
//
// The persistence contract is full-state: every commit rewrites all rows
// inside one transaction. The state is small (tens of profiles, hundreds of
// tabs at the extreme) and the contract keeps the on-disk shape trivially
// consistent with the in-memory shape, so incremental writes are not worth
// their bookkeeping.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".

	"github.com/tonimelisma/switchboard/internal/browser"
)

const walJournalSizeLimit = 67108864 // 64 MiB WAL journal size limit

const metaActiveProfileKey = "active_profile_id"

// SQLiteStore implements browser.Persistence over an embedded SQLite
// database with WAL mode.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ browser.Persistence = (*SQLiteStore)(nil)

// New opens the database at dbPath, configures pragmas, and applies
// migrations. Use ":memory:" for tests.
func New(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	logger.Info("opening state database", "path", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Sole-writer pattern: a single connection avoids SQLITE_BUSY and keeps
	// ":memory:" databases from fragmenting across pool connections.
	db.SetMaxOpenConns(1)

	if err := setPragmas(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("state database ready", "path", dbPath)

	return &SQLiteStore{db: db, logger: logger}, nil
}

// setPragmas configures SQLite for WAL mode and safety.
func setPragmas(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	pragmas := []struct {
		sql  string
		desc string
	}{
		{"PRAGMA journal_mode = WAL", "WAL mode"},
		{"PRAGMA synchronous = FULL", "synchronous FULL"},
		{"PRAGMA foreign_keys = ON", "foreign keys"},
		{fmt.Sprintf("PRAGMA journal_size_limit = %d", walJournalSizeLimit), "journal size limit"},
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p.sql); err != nil {
			return fmt.Errorf("set pragma %s: %w", p.desc, err)
		}

		logger.Debug("pragma set", "pragma", p.desc)
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing state database: %w", err)
	}
	return nil
}

// Commit rewrites the complete state inside one transaction.
func (s *SQLiteStore) Commit(ctx context.Context, state *browser.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit transaction: %w", err)
	}
	defer tx.Rollback()

	tables := []string{
		"profile_workspace_order", "workspace_tab_order",
		"tabs", "workspaces", "profiles", "settings",
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, profileID := range state.ProfileIDsInOrder() {
		profile := state.Profiles[profileID]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO profiles (id, name, active_workspace_id) VALUES (?, ?, ?)`,
			uint64(profile.ID), profile.Name, nullableID(uint64(profile.ActiveWorkspaceID)))
		if err != nil {
			return fmt.Errorf("insert %s: %w", profileID, err)
		}

		for position, workspaceID := range profile.WorkspaceOrder {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO profile_workspace_order (profile_id, position, workspace_id) VALUES (?, ?, ?)`,
				uint64(profileID), position, uint64(workspaceID))
			if err != nil {
				return fmt.Errorf("insert workspace order for %s: %w", profileID, err)
			}
		}
	}

	for _, workspaceID := range state.WorkspaceIDsInOrder() {
		workspace := state.Workspaces[workspaceID]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO workspaces (id, profile_id, name, active_tab_id) VALUES (?, ?, ?, ?)`,
			uint64(workspace.ID), uint64(workspace.ProfileID), workspace.Name,
			nullableID(uint64(workspace.ActiveTabID)))
		if err != nil {
			return fmt.Errorf("insert %s: %w", workspaceID, err)
		}

		for position, tabID := range workspace.TabOrder {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO workspace_tab_order (workspace_id, position, tab_id) VALUES (?, ?, ?)`,
				uint64(workspaceID), position, uint64(tabID))
			if err != nil {
				return fmt.Errorf("insert tab order for %s: %w", workspaceID, err)
			}
		}
	}

	for _, tabID := range state.TabIDsInOrder() {
		tab := state.Tabs[tabID]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tabs (id, profile_id, workspace_id, url, title, loading,
			                   thumbnail_data_url, pinned, muted, runtime_state)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uint64(tab.ID), uint64(tab.ProfileID), uint64(tab.WorkspaceID),
			tab.URL, tab.Title, tab.Loading, tab.ThumbnailDataURL,
			tab.Pinned, tab.Muted, int(tab.RuntimeState))
		if err != nil {
			return fmt.Errorf("insert %s: %w", tabID, err)
		}
	}

	for _, key := range state.SettingKeysInOrder() {
		value := state.Settings[key]
		var boolValue, intValue sql.NullInt64
		var textValue sql.NullString
		switch value.Kind {
		case browser.SettingBool:
			boolValue = sql.NullInt64{Int64: boolToInt64(value.Bool), Valid: true}
		case browser.SettingInt:
			intValue = sql.NullInt64{Int64: value.Int, Valid: true}
		case browser.SettingText:
			textValue = sql.NullString{String: value.Text, Valid: true}
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, kind, bool_value, int_value, text_value) VALUES (?, ?, ?, ?, ?)`,
			key, string(value.Kind), boolValue, intValue, textValue)
		if err != nil {
			return fmt.Errorf("insert setting %q: %w", key, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		metaActiveProfileKey, strconv.FormatUint(uint64(state.ActiveProfileID), 10))
	if err != nil {
		return fmt.Errorf("upsert active profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state transaction: %w", err)
	}

	return nil
}

// Load reads and normalizes the persisted state. Returns (nil, nil) when the
// database holds no profiles, which the caller treats as a first run.
func (s *SQLiteStore) Load(ctx context.Context) (*browser.State, error) {
	state := browser.NewState()

	if err := s.loadProfiles(ctx, state); err != nil {
		return nil, err
	}
	if err := s.loadWorkspaces(ctx, state); err != nil {
		return nil, err
	}
	if err := s.loadTabs(ctx, state); err != nil {
		return nil, err
	}
	if err := s.loadSettings(ctx, state); err != nil {
		return nil, err
	}
	if err := s.loadMeta(ctx, state); err != nil {
		return nil, err
	}

	browser.Normalize(state)

	if len(state.Profiles) == 0 {
		return nil, nil
	}

	s.logger.Debug("state loaded",
		"profiles", len(state.Profiles),
		"workspaces", len(state.Workspaces),
		"tabs", len(state.Tabs))

	return state, nil
}

func (s *SQLiteStore) loadProfiles(ctx context.Context, state *browser.State) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, active_workspace_id FROM profiles`)
	if err != nil {
		return fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uint64
		var name string
		var activeWorkspace sql.NullInt64
		if err := rows.Scan(&id, &name, &activeWorkspace); err != nil {
			return fmt.Errorf("scan profile: %w", err)
		}

		state.Profiles[browser.ProfileID(id)] = &browser.Profile{
			ID:                browser.ProfileID(id),
			Name:              name,
			ActiveWorkspaceID: browser.WorkspaceID(activeWorkspace.Int64),
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate profiles: %w", err)
	}

	orderRows, err := s.db.QueryContext(ctx,
		`SELECT profile_id, workspace_id FROM profile_workspace_order ORDER BY profile_id, position`)
	if err != nil {
		return fmt.Errorf("query workspace order: %w", err)
	}
	defer orderRows.Close()

	for orderRows.Next() {
		var profileID, workspaceID uint64
		if err := orderRows.Scan(&profileID, &workspaceID); err != nil {
			return fmt.Errorf("scan workspace order: %w", err)
		}
		if profile, ok := state.Profiles[browser.ProfileID(profileID)]; ok {
			profile.WorkspaceOrder = append(profile.WorkspaceOrder, browser.WorkspaceID(workspaceID))
		}
	}

	return orderRows.Err()
}

func (s *SQLiteStore) loadWorkspaces(ctx context.Context, state *browser.State) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile_id, name, active_tab_id FROM workspaces`)
	if err != nil {
		return fmt.Errorf("query workspaces: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, profileID uint64
		var name string
		var activeTab sql.NullInt64
		if err := rows.Scan(&id, &profileID, &name, &activeTab); err != nil {
			return fmt.Errorf("scan workspace: %w", err)
		}

		state.Workspaces[browser.WorkspaceID(id)] = &browser.Workspace{
			ID:          browser.WorkspaceID(id),
			ProfileID:   browser.ProfileID(profileID),
			Name:        name,
			ActiveTabID: browser.TabID(activeTab.Int64),
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate workspaces: %w", err)
	}

	orderRows, err := s.db.QueryContext(ctx,
		`SELECT workspace_id, tab_id FROM workspace_tab_order ORDER BY workspace_id, position`)
	if err != nil {
		return fmt.Errorf("query tab order: %w", err)
	}
	defer orderRows.Close()

	for orderRows.Next() {
		var workspaceID, tabID uint64
		if err := orderRows.Scan(&workspaceID, &tabID); err != nil {
			return fmt.Errorf("scan tab order: %w", err)
		}
		if workspace, ok := state.Workspaces[browser.WorkspaceID(workspaceID)]; ok {
			workspace.TabOrder = append(workspace.TabOrder, browser.TabID(tabID))
		}
	}

	return orderRows.Err()
}

func (s *SQLiteStore) loadTabs(ctx context.Context, state *browser.State) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile_id, workspace_id, url, title, loading,
		        thumbnail_data_url, pinned, muted, runtime_state
		 FROM tabs`)
	if err != nil {
		return fmt.Errorf("query tabs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, profileID, workspaceID uint64
		var url, title, thumbnail string
		var loading, pinned, muted bool
		var runtimeState int
		if err := rows.Scan(&id, &profileID, &workspaceID, &url, &title,
			&loading, &thumbnail, &pinned, &muted, &runtimeState); err != nil {
			return fmt.Errorf("scan tab: %w", err)
		}
		if runtimeState < int(browser.TabDiscarded) || runtimeState > int(browser.TabRestoring) {
			return fmt.Errorf("tab %d has unsupported runtime_state %d", id, runtimeState)
		}

		state.Tabs[browser.TabID(id)] = &browser.Tab{
			ID:               browser.TabID(id),
			ProfileID:        browser.ProfileID(profileID),
			WorkspaceID:      browser.WorkspaceID(workspaceID),
			URL:              url,
			Title:            title,
			Loading:          loading,
			ThumbnailDataURL: thumbnail,
			Pinned:           pinned,
			Muted:            muted,
			RuntimeState:     browser.TabRuntimeState(runtimeState),
		}
	}

	return rows.Err()
}

func (s *SQLiteStore) loadSettings(ctx context.Context, state *browser.State) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, kind, bool_value, int_value, text_value FROM settings`)
	if err != nil {
		return fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, kind string
		var boolValue, intValue sql.NullInt64
		var textValue sql.NullString
		if err := rows.Scan(&key, &kind, &boolValue, &intValue, &textValue); err != nil {
			return fmt.Errorf("scan setting: %w", err)
		}

		switch browser.SettingKind(kind) {
		case browser.SettingBool:
			state.Settings[key] = browser.BoolSetting(boolValue.Int64 != 0)
		case browser.SettingInt:
			state.Settings[key] = browser.IntSetting(intValue.Int64)
		case browser.SettingText:
			state.Settings[key] = browser.TextSetting(textValue.String)
		default:
			// Unknown kinds written by a newer build are skipped, not fatal.
			s.logger.Warn("skipping setting with unknown kind", "key", key, "kind", kind)
		}
	}

	return rows.Err()
}

func (s *SQLiteStore) loadMeta(ctx context.Context, state *browser.State) error {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = ?`, metaActiveProfileKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("query active profile: %w", err)
	}

	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse active profile id %q: %w", value, err)
	}
	state.ActiveProfileID = browser.ProfileID(id)

	return nil
}

func nullableID(id uint64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(id), Valid: true}
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}
