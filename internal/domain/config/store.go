package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gopasspw/gitconfig"

	"github.com/tasuku43/wsm/internal/domain/repospec"
)

// Record stores use git-config syntax:
//
//	[workspace]
//		repos = repo-a repo-b
//	[repo "repo-a"]
//		url = https://example.com/org/repo-a.git
//		branch = develop
//		ref = v1.0.0
const (
	orderKey = "workspace.repos"
)

func repoKey(name, field string) string {
	return "repo." + name + "." + field
}

// Store is a writable record store backed by one git-config file.
type Store struct {
	path string
	cfg  *gitconfig.Config
}

// OpenStore opens the store at path, creating an empty file when missing.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	_ = file.Close()
	cfg, err := gitconfig.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &Store{path: path, cfg: cfg}, nil
}

// Put inserts or replaces the record for line.Name. A new name is appended
// to the order; an existing one keeps its position.
func (s *Store) Put(line repospec.Line) error {
	if err := s.cfg.Set(repoKey(line.Name, "url"), line.URL); err != nil {
		return fmt.Errorf("set url: %w", err)
	}
	for _, f := range [][2]string{{"branch", line.Branch}, {"ref", line.Ref}} {
		field, value := f[0], f[1]
		key := repoKey(line.Name, field)
		if value == "" {
			if err := s.cfg.Unset(key); err != nil {
				return fmt.Errorf("unset %s: %w", field, err)
			}
			continue
		}
		if err := s.cfg.Set(key, value); err != nil {
			return fmt.Errorf("set %s: %w", field, err)
		}
	}
	order := s.order()
	if slices.Contains(order, line.Name) {
		return nil
	}
	return s.setOrder(append(order, line.Name))
}

// Delete removes the record for name. It reports whether a record existed.
func (s *Store) Delete(name string) (bool, error) {
	order := s.order()
	idx := slices.Index(order, name)
	existed := idx >= 0 || s.cfg.IsSet(repoKey(name, "url"))
	for _, field := range []string{"url", "branch", "ref"} {
		if err := s.cfg.Unset(repoKey(name, field)); err != nil {
			return existed, fmt.Errorf("unset %s: %w", field, err)
		}
	}
	if idx < 0 {
		return existed, nil
	}
	return true, s.setOrder(slices.Delete(order, idx, idx+1))
}

func (s *Store) order() []string {
	values, _ := s.cfg.GetAll(orderKey)
	var names []string
	for _, value := range values {
		for _, name := range strings.Fields(value) {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}
	return names
}

func (s *Store) setOrder(names []string) error {
	if len(names) == 0 {
		return s.cfg.Unset(orderKey)
	}
	return s.cfg.Set(orderKey, strings.Join(names, " "))
}

func (s *Store) records(layer Layer) Records {
	recs := Records{Layer: layer, Source: s.path, Exists: true}
	for _, name := range s.order() {
		url, _ := s.cfg.Get(repoKey(name, "url"))
		branch, _ := s.cfg.Get(repoKey(name, "branch"))
		ref, _ := s.cfg.Get(repoKey(name, "ref"))
		line, _, err := repospec.NewLine(url, branch, ref)
		if err != nil {
			recs.Errors = append(recs.Errors, &repospec.ParseError{
				Source: s.path,
				Text:   fmt.Sprintf("[repo %q]", name),
				Reason: err.Error(),
			})
			continue
		}
		recs.Lines = append(recs.Lines, line)
	}
	return recs
}

// readStore loads a record store without creating it.
func readStore(path string, layer Layer) (Records, error) {
	cfg, err := gitconfig.LoadConfig(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Records{Layer: layer, Source: path}, nil
		}
		return Records{Layer: layer, Source: path}, fmt.Errorf("load config %s: %w", path, err)
	}
	return (&Store{path: path, cfg: cfg}).records(layer), nil
}

// readLegacy loads the line-oriented legacy file.
func readLegacy(path string) (Records, error) {
	recs := Records{Layer: LayerLegacy, Source: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return recs, nil
		}
		return recs, fmt.Errorf("read %s: %w", path, err)
	}
	recs.Exists = true
	recs.Lines, recs.Errors = repospec.ParseText(filepath.Base(path), string(data))
	return recs, nil
}
