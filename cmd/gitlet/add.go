package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [paths...]",
	Short: "Stage files for the next snapshot",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		for _, path := range args {
			if err := s.index.Add(path); err != nil {
				return fmt.Errorf("adding %s: %w", path, err)
			}
		}

		fmt.Println("Changes staged successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
