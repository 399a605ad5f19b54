package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	rmForce  bool
	rmCached bool
)

var rmCmd = &cobra.Command{
	Use:   "rm [paths...]",
	Short: "Unstage or stage removal of files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		for _, path := range args {
			if err := s.index.Remove(path, rmForce, rmCached); err != nil {
				return fmt.Errorf("removing %s: %w", path, err)
			}
		}

		fmt.Println("Changes staged for removal")
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolVar(&rmForce, "force", false, "remove even if the working-tree file has local modifications")
	rmCmd.Flags().BoolVar(&rmCached, "cached", false, "update the index only, leaving the working-tree file in place")
	rootCmd.AddCommand(rmCmd)
}
