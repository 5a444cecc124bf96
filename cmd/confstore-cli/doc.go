// Package main provides the entry point for confstore-cli.
//
// confstore-cli reads and modifies the Config Store of a node:
//
//	confstore-cli prefix-allocator
//	confstore-cli --host node-1 --output json link-monitor
//	confstore-cli --raw --config-store-url ipc:///tmp/config_store_cmd_node-1 prefix-manager > pm.bin
//	confstore-cli erase some-key
//	confstore-cli store some-key ./value.bin
//	cat value.bin | confstore-cli --json store some-key -
package main
