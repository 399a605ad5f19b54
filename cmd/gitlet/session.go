package main

import (
	"fmt"
	"os"

	"github.com/gitlethub/core/internal/config"
	"github.com/gitlethub/core/internal/index"
	"github.com/gitlethub/core/internal/logging"
	"github.com/gitlethub/core/internal/objectstore"
	"github.com/gitlethub/core/internal/repo"
)

// session bundles the handles a command needs against an already
// initialized repository.
type session struct {
	repo  *repo.Repository
	store *objectstore.Store
	index *index.Index
	log   *logging.Logger
}

func openSession() (*session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	r, err := repo.Open(cwd)
	if err != nil {
		return nil, err
	}
	if !r.Exists() {
		return nil, fmt.Errorf("not a gitlet repository: no .gitlet directory in %s", cwd)
	}

	cfg, err := config.Load(fmt.Sprintf("%s/config.toml", r.GitletDir()))
	if err != nil {
		return nil, err
	}

	log, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	store, err := objectstore.New(r.ObjectsDir(), cfg.ObjectStore.CacheSize)
	if err != nil {
		return nil, err
	}

	idx, err := index.LoadOrCreate(r.GitletDir(), r.Root, store, logging.NewSink(log.Logger))
	if err != nil {
		return nil, err
	}

	return &session{repo: r, store: store, index: idx, log: log}, nil
}

func (s *session) close() {
	s.index.Close()
	s.log.Sync()
}
