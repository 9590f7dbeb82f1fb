package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/infrastructure/config"
	"github.com/clientpulse/pulse-core/internal/workflow"
)

// spoolHit is the on-disk form of a source hit dropped by an external
// collector.
type spoolHit struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url"`
	SourceType  string   `json:"source_type"`
	Themes      []string `json:"themes,omitempty"`
}

// spoolDir is where external collectors drop hit files, one JSON array per
// account named <account-id>.json.
func spoolDir(basePath string) string {
	return filepath.Join(config.ConfigDir(basePath), "inbox")
}

// spoolSearch builds a SourceSearchFunc that drains the account's spool
// file. A missing file simply means no fresh hits this sweep; a drained
// file is removed so hits are consumed once.
func spoolSearch(basePath string) workflow.SourceSearchFunc {
	return func(ctx context.Context, account *entities.Account, term string) ([]workflow.SourceHit, error) {
		path := filepath.Join(spoolDir(basePath), account.ID+".json")

		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading spool file: %w", err)
		}

		hits, err := parseHits(data)
		if err != nil {
			return nil, fmt.Errorf("parsing spool file %s: %w", path, err)
		}

		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("draining spool file: %w", err)
		}
		return hits, nil
	}
}

// loadHitsFile reads source hits from an explicit file for one-off sweeps.
func loadHitsFile(path string) ([]workflow.SourceHit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hits file: %w", err)
	}
	hits, err := parseHits(data)
	if err != nil {
		return nil, fmt.Errorf("parsing hits file %s: %w", path, err)
	}
	return hits, nil
}

func parseHits(data []byte) ([]workflow.SourceHit, error) {
	var raw []spoolHit
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	hits := make([]workflow.SourceHit, 0, len(raw))
	for _, h := range raw {
		hits = append(hits, workflow.SourceHit{
			Title:       h.Title,
			Description: h.Description,
			URL:         h.URL,
			SourceType:  entities.SourceType(h.SourceType),
			Themes:      h.Themes,
		})
	}
	return hits, nil
}
