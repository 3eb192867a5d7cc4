// Package cli provides the gophstore command-line client.
//
// It wires configuration, the local view cache, the remote client and the
// services on top of them. With a subcommand on the command line it runs
// that one command and exits; without one it starts an interactive REPL.
//
// Commands:
//   - get <key>...                 read items
//   - put <key> [type] [data...]   write an item; data is prompted when absent
//   - delete <key>...              remove items
//   - list <prefix>                refresh the cached window and print it (alias: sync)
//   - cached <prefix>              print the cached window without a refresh
package cli
