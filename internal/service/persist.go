package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"docsearch/internal/index"
)

const manifestFile = "manifest.json"

// manifest records which embedder produced a persisted index, so a load with
// a different model fails loudly instead of returning garbage scores. It also
// carries the build-time corpus summary so it survives a restart.
type manifest struct {
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
	Rows      int    `json:"rows"`
	Summary   string `json:"summary,omitempty"`
}

// Save persists the index and its manifest under dir.
func (p *Pipeline) Save(dir string) error {
	if err := p.index.Save(dir); err != nil {
		return err
	}

	m := manifest{
		Model:     p.embedder.Model(),
		Dimension: p.embedder.Dimension(),
		Rows:      p.index.Size(),
		Summary:   p.summary,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, manifestFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load restores a persisted index from dir after validating that it was
// built with the active embedding model and dimension.
func (p *Pipeline) Load(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", index.ErrIndexNotFound, dir)
		}
		return err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("%w: unreadable manifest in %s: %v", index.ErrIndexNotFound, dir, err)
	}

	if m.Model != p.embedder.Model() {
		return fmt.Errorf("%w: index uses %q, active model is %q", ErrModelMismatch, m.Model, p.embedder.Model())
	}
	if m.Dimension != p.embedder.Dimension() {
		return fmt.Errorf("%w: index dimension %d, active model produces %d", ErrModelMismatch, m.Dimension, p.embedder.Dimension())
	}

	if err := p.index.Load(dir); err != nil {
		return err
	}
	if m.Rows != p.index.Size() {
		rows := p.index.Size()
		p.index = index.NewFlat(p.embedder.Dimension())
		return fmt.Errorf("%w: manifest claims %d rows, index holds %d", index.ErrIndexNotFound, m.Rows, rows)
	}
	p.summary = m.Summary
	return nil
}
