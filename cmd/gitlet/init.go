package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitlethub/core/internal/repo"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new gitlet repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		r, err := repo.Open(dir)
		if err != nil {
			return err
		}
		if r.Exists() {
			return fmt.Errorf("gitlet repository already exists in %s", dir)
		}

		if err := r.Init(); err != nil {
			return fmt.Errorf("initializing repository: %w", err)
		}

		fmt.Println("Initialized empty gitlet repository in", r.GitletDir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
