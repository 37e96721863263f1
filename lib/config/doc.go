// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the boarding console's configuration.
//
// Configuration comes from a single file named by either the
// BOARDING_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no search path and no per-field
// environment override, so the file alone determines behavior.
//
// Files ending in .json or .jsonc are read as JSON with comments and
// trailing commas allowed; anything else is YAML. Both decode into the
// same [Config] struct, starting from [Default].
//
// The file may carry development, staging and production sections
// that override base values when [Config].Environment matches. Path
// fields then get ${VAR} and ${VAR:-default} expansion.
//
// This package depends on no other boarding packages.
package config
