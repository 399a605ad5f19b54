// cmd/gitlet/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gitlet",
	Short: "Gitlet is a minimal content-addressed version control core",
	Long: `Gitlet tracks file content as compressed, hash-named blob and tree
objects and stages changes to them through an index, the same two ideas
that underpin Git, stripped to their essentials.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
