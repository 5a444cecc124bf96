// Package output renders command results for confstore-cli.
//
//   - formatter.go: Formatter interface and format selection
//   - table.go: key/value and tabular text via tabwriter
//   - json.go, yaml.go: machine-readable output
//
// Dump blobs are opaque. Table output shows their size and checksum only;
// json and yaml carry the bytes base64-encoded. Use --raw to get the blob
// itself.
package output
