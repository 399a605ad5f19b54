package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the working tree and stage modified files as they change",
	Long: `Watch runs outside the synchronous core: it observes filesystem events
and calls Index.Add on each write or create event, same as running
"gitlet add" by hand.
It never touches the index concurrently with itself, since fsnotify
delivers events on a single channel that this command drains serially.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
		defer watcher.Close()

		if err := addTreeRecursive(watcher, s.repo.Root, s.repo.GitletDir()); err != nil {
			return err
		}

		info := color.New(color.FgCyan)
		warn := color.New(color.FgYellow)
		info.Println("Watching", s.repo.Root, "- press Ctrl+C to stop")

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := s.index.Add(event.Name); err != nil {
					warn.Println("skip", event.Name, ":", err)
					continue
				}
				info.Println("staged", event.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				warn.Println("watcher error:", err)
			}
		}
	},
}

func addTreeRecursive(watcher *fsnotify.Watcher, root, skip string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(path, skip) {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
