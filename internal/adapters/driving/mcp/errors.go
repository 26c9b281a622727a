// Package mcp provides an MCP (Model Context Protocol) server adapter
// for clipvault. It lets AI assistants search and read the local
// clipboard history.
package mcp

import "errors"

// ErrMissingStoreService is returned when the store service is not provided.
var ErrMissingStoreService = errors.New("mcp: store service is required")
