package main

import (
	"log/slog"

	"github.com/example/go-visemes/internal/cmudict"
	"github.com/example/go-visemes/internal/config"
	"github.com/example/go-visemes/internal/pronounce"
)

const bundledSource = "bundled"

// loadDictionary reads the configured dictionary file, or returns the
// bundled subset when no path is set.
func loadDictionary(cfg config.Config) (*cmudict.Dict, string, error) {
	if cfg.Dictionary.Path == "" {
		return cmudict.Bundled(), bundledSource, nil
	}
	d, err := cmudict.Load(cfg.Dictionary.Path)
	if err != nil {
		return nil, "", err
	}
	return d, cfg.Dictionary.Path, nil
}

// openDictionary returns the dictionary the analyzer should use. With
// dictionary.watch set the file is reloaded on change until the returned
// close function is called.
func openDictionary(cfg config.Config, logger *slog.Logger) (pronounce.Dictionary, func() error, error) {
	if cfg.Dictionary.Watch && cfg.Dictionary.Path != "" {
		w, err := cmudict.Watch(cfg.Dictionary.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		return w, w.Close, nil
	}

	d, source, err := loadDictionary(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("dictionary loaded",
		slog.String("source", source),
		slog.Int("words", d.Len()),
	)
	return d, func() error { return nil }, nil
}
