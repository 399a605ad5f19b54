package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show staged additions, staged removals, and local modifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		added := color.New(color.FgGreen)
		removed := color.New(color.FgRed)
		modified := color.New(color.FgYellow)
		header := color.New(color.FgCyan, color.Bold)

		header.Println("Staged additions:")
		printSorted(keysOf(s.index.Added()), added)

		header.Println("Staged removals:")
		printSortedSet(s.index.Removed(), removed)

		modifiedPaths, err := s.index.ModifiedPaths()
		if err != nil {
			return fmt.Errorf("checking for local modifications: %w", err)
		}
		header.Println("Modified, not staged:")
		printSorted(keysOf(modifiedPaths), modified)

		return nil
	},
}

func keysOf(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func printSorted(paths []string, c *color.Color) {
	sort.Strings(paths)
	for _, p := range paths {
		c.Println(" ", p)
	}
}

func printSortedSet(set map[string]struct{}, c *color.Color) {
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	printSorted(paths, c)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
