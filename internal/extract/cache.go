// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package extract

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperr "dawgtools/cli/internal/errors"
)

// Cache stores raw model responses under {root}/{schema stem}-{schema hash}.
// Entries are keyed by input file stem and model name. There is no locking:
// concurrent runs may both miss and both write the same entry.
type Cache struct {
	Dir string
}

// OpenCache creates the partition for s under root.
func OpenCache(root string, s *Schema) (*Cache, error) {
	dir := filepath.Join(root, s.Stem+"-"+s.Hash)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.IO, "creating cache dir", err)
	}
	return &Cache{Dir: dir}, nil
}

// Path returns the entry path for an input file and model.
func (c *Cache) Path(input, model string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(c.Dir, stem+"-"+strings.ReplaceAll(model, "/", "_")+".json")
}

// Load returns the cached response; ok is false on a miss.
func (c *Cache) Load(input, model string) (raw []byte, ok bool, err error) {
	raw, err = os.ReadFile(c.Path(input, model))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperr.Wrap(apperr.IO, "reading cache entry", err)
	}
	return raw, true, nil
}

// Store writes raw atomically: readers see the old entry or the new one.
func (c *Cache) Store(input, model string, raw []byte) error {
	dst := c.Path(input, model)
	tmp, err := os.CreateTemp(c.Dir, ".tmp-*")
	if err != nil {
		return apperr.Wrap(apperr.IO, "writing cache entry", err)
	}
	defer os.Remove(tmp.Name()) // no-op after rename

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return apperr.Wrap(apperr.IO, "writing cache entry", err)
	}
	if err := tmp.Close(); err != nil {
		return apperr.Wrap(apperr.IO, "writing cache entry", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return apperr.Wrap(apperr.IO, "writing cache entry", err)
	}
	return nil
}
