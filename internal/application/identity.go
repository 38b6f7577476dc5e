package application

import (
	"context"
	"errors"
	"regexp"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
	"github.com/rubygems/configure-trusted-publisher/internal/domain/port/driven"
)

// githubRepoPattern finds an owner/repo pair in an https or scp-style GitHub URI.
var githubRepoPattern = regexp.MustCompile(`github\.com[:/](?P<owner>[^/]+)/(?P<repo>[^/]+)`)

// ResolveRepository picks the GitHub repository of pkg from its metadata.
// Candidates are scanned in a fixed priority order and the first match wins;
// no match is a precondition failure.
func ResolveRepository(pkg model.Package) (model.RepositoryIdentity, error) {
	for _, uri := range pkg.RepositoryCandidates() {
		m := githubRepoPattern.FindStringSubmatch(uri)
		if m == nil {
			continue
		}
		return model.RepositoryIdentity{
			Owner: m[githubRepoPattern.SubexpIndex("owner")],
			Name:  m[githubRepoPattern.SubexpIndex("repo")],
		}, nil
	}
	return model.RepositoryIdentity{}, model.Preconditionf("No GitHub repository found for %s", pkg.Name)
}

// SelectPackage chooses the gem to configure among the packages found in dir.
// An explicit name always wins and selects the matching gemspec when there
// is one; otherwise exactly one gemspec must exist.
func SelectPackage(pkgs []model.Package, name, dir string) (model.Package, error) {
	if name != "" {
		for _, p := range pkgs {
			if p.Name == name {
				return p, nil
			}
		}
		if len(pkgs) > 0 {
			pkg := pkgs[0]
			pkg.Name = name
			return pkg, nil
		}
		return model.Package{}, model.Preconditionf("No GitHub repository found for %s: no gemspecs found in %s", name, dir)
	}

	switch len(pkgs) {
	case 0:
		return model.Package{}, model.Preconditionf("No gemspecs found in %s, please specify the gem name with --name", dir)
	case 1:
		return pkgs[0], nil
	default:
		return model.Package{}, model.Preconditionf("Multiple gemspecs found in %s, please specify the gem name with --name", dir)
	}
}

// loadPackages reads the manifests, treating "none found" as an empty list so
// SelectPackage can word the failure.
func loadPackages(ctx context.Context, src driven.ManifestSource, dir string) ([]model.Package, error) {
	pkgs, err := src.Packages(ctx, dir)
	if errors.Is(err, driven.ErrNoManifest) {
		return nil, nil
	}
	return pkgs, err
}
