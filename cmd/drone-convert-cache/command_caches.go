package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourceplane/drone-convert-cache/internal/cachedir"
)

var cachesCmd = &cobra.Command{
	Use:   "caches",
	Short: "List the supported cache kinds",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listCaches()
	},
}

func registerCachesCommand(root *cobra.Command) {
	root.AddCommand(cachesCmd)
}

func listCaches() error {
	fmt.Println("Supported cache kinds:")

	for _, entry := range cachedir.Default().Entries() {
		note := ""
		if !cachedir.Rooted(entry.Path) {
			note = "  (relative, mounted by the plugin only)"
		}
		fmt.Printf("  %-12s  %s%s\n", entry.Kind, entry.Path, note)
	}

	return nil
}
