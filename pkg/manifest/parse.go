package manifest

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tailscale/hujson"
)

// ParsePlugin parses a plugin manifest from raw JSON. Manifests must be
// strict JSON; when parsing fails but the bytes are valid HuJSON the error
// says so, since comments and trailing commas are the usual culprits.
func ParsePlugin(data []byte) (*PluginManifest, error) {
	var m PluginManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, diagnoseJSONError(data, err)
	}
	return &m, nil
}

// ParseMarketplace parses a marketplace manifest from raw JSON.
func ParseMarketplace(data []byte) (*MarketplaceManifest, error) {
	var m MarketplaceManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, diagnoseJSONError(data, err)
	}
	return &m, nil
}

// diagnoseJSONError improves the error for almost-JSON input. If the bytes
// standardize cleanly as HuJSON the document is JSON with comments or
// trailing commas, which the host tool rejects.
func diagnoseJSONError(data []byte, err error) error {
	if !json.Valid(data) {
		if _, herr := hujson.Standardize(data); herr == nil {
			return errors.Wrap(err, "manifest is not strict JSON (remove comments and trailing commas)")
		}
	}
	return errors.Wrap(err, "failed to parse manifest JSON")
}

// pluginKnownKeys lists every key ParsePlugin understands.
var pluginKnownKeys = map[string]bool{
	"name": true, "description": true, "version": true, "author": true,
	"homepage": true, "repository": true, "license": true, "keywords": true,
	"category": true, "commands": true, "agents": true, "skills": true,
	"hooks": true, "mcpServers": true,
}

// marketplaceKnownKeys lists every key ParseMarketplace understands.
var marketplaceKnownKeys = map[string]bool{
	"name": true, "owner": true, "metadata": true, "plugins": true,
}

// UnknownPluginKeys returns top-level keys of a plugin manifest that are not
// part of the format, in document order. Unknown keys are tolerated but
// usually indicate a typo.
func UnknownPluginKeys(data []byte) []string {
	return unknownKeys(data, pluginKnownKeys)
}

// UnknownMarketplaceKeys returns unrecognized top-level marketplace keys.
func UnknownMarketplaceKeys(data []byte) []string {
	return unknownKeys(data, marketplaceKnownKeys)
}

func unknownKeys(data []byte, known map[string]bool) []string {
	pairs, err := topLevelPairs(data)
	if err != nil {
		return nil
	}

	var unknown []string
	for _, kv := range pairs {
		if !known[kv.key] {
			unknown = append(unknown, kv.key)
		}
	}
	return unknown
}
