// ABOUTME: Typed read/write over the settings key-value relation
// ABOUTME: Values are opaque strings, typically JSON, parsed on demand

package store

import (
	"database/sql"
	"fmt"

	"github.com/rssrs/rssrs/internal/models"
)

// GetSetting returns the stored value for key, or the empty string when
// the key has never been set.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.withConn(func(db *sql.DB) error {
		var err error
		value, err = readSetting(db, key)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *Store) SetSetting(key, value string) error {
	err := s.withConn(func(db *sql.DB) error {
		_, err := db.Exec("REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
		return err
	})
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

// Proxy returns the parsed proxy settings, defaulting to system proxy
// resolution when unset.
func (s *Store) Proxy() (models.ProxySettings, error) {
	raw, err := s.GetSetting(models.SettingProxy)
	if err != nil {
		return models.ProxySettings{}, err
	}
	return models.ParseProxySettings(raw)
}

// Generic returns the parsed generic settings, defaulting the timeout
// when unset.
func (s *Store) Generic() (models.GenericSettings, error) {
	raw, err := s.GetSetting(models.SettingGeneric)
	if err != nil {
		return models.GenericSettings{}, err
	}
	return models.ParseGenericSettings(raw)
}

// readSetting is shared with the read-only polling probe.
func readSetting(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query setting %q: %w", key, err)
	}
	return value, nil
}
