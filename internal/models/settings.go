// ABOUTME: Typed views over the settings key-value relation
// ABOUTME: Parses the JSON-encoded proxy and generic settings values on demand

package models

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Recognized settings keys.
const (
	SettingProxy   = "proxy"
	SettingGeneric = "generic"
)

// Proxy policy types. Any unrecognized type behaves like ProxySys.
const (
	ProxyNone = "none"
	ProxyHTTP = "http"
	ProxySys  = "sys"
)

// DefaultTimeout is the HTTP request timeout, in seconds, used when no
// generic setting is stored.
const DefaultTimeout = 30

// ProxySettings is the parsed value of the "proxy" setting.
type ProxySettings struct {
	Type string `json:"type"`
	Host string `json:"host"`
	Port uint16 `json:"port"`
}

// GenericSettings is the parsed value of the "generic" setting.
type GenericSettings struct {
	// Timeout is the HTTP request timeout in seconds.
	Timeout uint `json:"timeout"`
}

// ParseProxySettings decodes a stored proxy value. An empty value yields
// the system-proxy default.
func ParseProxySettings(raw string) (ProxySettings, error) {
	if raw == "" {
		return ProxySettings{Type: ProxySys}, nil
	}
	var p ProxySettings
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return ProxySettings{}, fmt.Errorf("parse proxy settings: %w", err)
	}
	return p, nil
}

// ParseGenericSettings decodes a stored generic value. An empty value
// yields the default timeout.
func ParseGenericSettings(raw string) (GenericSettings, error) {
	if raw == "" {
		return GenericSettings{Timeout: DefaultTimeout}, nil
	}
	var g GenericSettings
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return GenericSettings{}, fmt.Errorf("parse generic settings: %w", err)
	}
	return g, nil
}
