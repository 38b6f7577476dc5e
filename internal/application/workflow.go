package application

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
)

// Pinned actions used by the release workflow.
const (
	actionHardenRunner = "step-security/harden-runner@a4aa98b93cab29d9b1101a6143fb8bce00e2eac4 # v2.7.1"
	actionCheckout     = "actions/checkout@0ad4b8fadaa221de15dcec353f45205ec38ea70b # v4.1.4"
	actionSetupRuby    = "ruby/setup-ruby@cacc9f1c0b3f4eb8a16a6bb0ed10897b43b9de49 # v1.176.0"
	actionReleaseGem   = "rubygems/release-gem@612653d273a73bdae1df8453e090060bb4db5f31 # v1"
)

// RenderWorkflow produces the release workflow for spec. The output depends
// on spec alone, so the same inputs always render byte-identical files.
//
// The job guard pins execution to spec.Repository, the same identity the
// trusted publisher is created for; forks cannot run the release job.
func RenderWorkflow(spec model.WorkflowSpec) []byte {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line("name: Push Gem")
	line("")
	line("on:")
	if spec.Trigger == model.TriggerTagPush {
		line("  push:")
		line("    tags:")
		line("      - 'v*'")
	} else {
		line("  workflow_dispatch:")
	}
	line("")
	line("permissions:")
	line("  contents: read")
	line("")
	line("jobs:")
	line("  push:")
	line("    if: github.repository == '" + spec.Repository.FullName() + "'")
	line("    runs-on: ubuntu-latest")
	line("")
	if env := spec.Environment; env != nil {
		line("    environment:")
		line("      name: " + env.Name)
		line("      url: " + env.URL)
		line("")
	}
	line("    permissions:")
	line("      contents: write")
	line("      id-token: write")
	line("")
	line("    steps:")
	line("      # Set up")
	line("      - name: Harden Runner")
	line("        uses: " + actionHardenRunner)
	line("        with:")
	line("          egress-policy: audit")
	line("")
	line("      - uses: " + actionCheckout)
	line("      - name: Set up Ruby")
	line("        uses: " + actionSetupRuby)
	line("        with:")
	line("          bundler-cache: true")
	line("          ruby-version: ruby")
	line("")
	line("      # Release")
	line("      - uses: " + actionReleaseGem)

	return []byte(b.String())
}

// WorkflowSynthesizer writes rendered workflows to a filesystem.
type WorkflowSynthesizer struct {
	fs afero.Fs
}

// NewWorkflowSynthesizer creates a WorkflowSynthesizer on fs.
func NewWorkflowSynthesizer(fs afero.Fs) *WorkflowSynthesizer {
	return &WorkflowSynthesizer{fs: fs}
}

// Write stores content at path. A missing file is created along with its
// parent directories. An existing file is replaced only if confirm returns
// true; declining is not an error and reports written=false.
func (w *WorkflowSynthesizer) Write(path string, content []byte, confirm func() (bool, error)) (written bool, err error) {
	exists, err := afero.Exists(w.fs, path)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}

	if exists {
		ok, err := confirm()
		if err != nil {
			return false, err
		}
		if !ok {
			slog.Info("keeping existing workflow", "path", path)
			return false, nil
		}
	} else if err := w.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	if err := afero.WriteFile(w.fs, path, content, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}
