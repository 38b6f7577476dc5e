// Package ruby adapts the Ruby toolchain: gemspecs are loaded by Ruby itself
// and release automation is exercised through Bundler.
package ruby

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rubygems/configure-trusted-publisher/internal/adapter/driven/shell"
	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
	"github.com/rubygems/configure-trusted-publisher/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ManifestSource = (*GemspecReader)(nil)

// gemspecPattern matches gemspecs at the root and one level down, the
// locations Bundler's gemspec source searches.
const gemspecPattern = "{*,*/*}.gemspec"

// loadScript prints the fields this tool needs as JSON. The gemspec path is
// passed as the first argument.
const loadScript = `require "json"
spec = Gem::Specification.load(ARGV.fetch(0)) or abort("Invalid gemspec in #{ARGV.fetch(0)}")
puts JSON.generate("name" => spec.name, "homepage" => spec.homepage, "metadata" => spec.metadata)`

type gemspecJSON struct {
	Name     string            `json:"name"`
	Homepage string            `json:"homepage"`
	Metadata map[string]string `json:"metadata"`
}

// GemspecReader implements driven.ManifestSource by loading each gemspec
// with the ruby executable, from the gemspec's own directory so relative
// requires inside it resolve.
type GemspecReader struct {
	runner shell.Runner
	ruby   string
}

// NewGemspecReader creates a GemspecReader using the ruby found on PATH.
func NewGemspecReader(runner shell.Runner) *GemspecReader {
	return &GemspecReader{runner: runner, ruby: "ruby"}
}

// Packages returns the gems declared under dir, ordered by gemspec path.
// It returns driven.ErrNoManifest when there are none.
func (r *GemspecReader) Packages(ctx context.Context, dir string) ([]model.Package, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), gemspecPattern)
	if err != nil {
		return nil, fmt.Errorf("searching for gemspecs in %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return nil, driven.ErrNoManifest
	}
	sort.Strings(matches)

	pkgs := make([]model.Package, 0, len(matches))
	for _, m := range matches {
		pkg, err := r.load(ctx, dir, m)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

func (r *GemspecReader) load(ctx context.Context, root, rel string) (model.Package, error) {
	specDir := filepath.Join(root, filepath.Dir(filepath.FromSlash(rel)))
	out, err := r.runner.Run(ctx, specDir, r.ruby, "-e", loadScript, filepath.Base(rel))
	if err != nil {
		return model.Package{}, fmt.Errorf("loading %s: %w", rel, err)
	}

	var spec gemspecJSON
	if err := json.Unmarshal(out, &spec); err != nil {
		return model.Package{}, fmt.Errorf("decoding %s: %w", rel, err)
	}

	return model.Package{
		Name:     spec.Name,
		Homepage: spec.Homepage,
		Metadata: spec.Metadata,
		Path:     rel,
	}, nil
}
