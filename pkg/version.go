// Package infograph collects text sources into notebooks and renders a
// key-insights infographic from them.
package infograph

// Version is the application version reported by the CLI and the MCP server.
const Version = "0.1.0"
