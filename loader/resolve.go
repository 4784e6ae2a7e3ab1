package loader

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vk/btweave/internal/ctxlog"
)

// PackageResolver resolves a package name to the absolute path of the
// package root. Include elements carry an optional ros_pkg attribute;
// installations that support package-relative includes inject a resolver
// through WithPackageResolver.
type PackageResolver interface {
	ResolvePackage(name string) (string, error)
}

// resolveIncludePath normalizes the path of one <include> element.
//
// Absolute paths win outright; combining one with a package attribute is
// suspicious but not fatal, so it only logs a warning. Relative paths
// resolve against the package root when a package attribute and a resolver
// are present, and against the directory of the most recently loaded file
// otherwise.
func (p *Parser) resolveIncludePath(ctx context.Context, path, pkg string) (string, error) {
	logger := ctxlog.FromContext(ctx)

	if filepath.IsAbs(path) {
		if pkg != "" {
			logger.Warn("<include> contains an absolute path; attribute [ros_pkg] will be ignored.",
				"path", path, "ros_pkg", pkg)
		}
		return path, nil
	}

	if pkg != "" {
		if p.pkgResolver == nil {
			return "", &ConfigurationError{
				Msg: fmt.Sprintf("Using attribute [ros_pkg] in <include>, but package resolution "+
					"is unavailable. Configure the parser with WithPackageResolver to load [%s].", pkg),
			}
		}
		pkgRoot, err := p.pkgResolver.ResolvePackage(pkg)
		if err != nil {
			return "", &ConfigurationError{
				Msg: fmt.Sprintf("failed to resolve package [%s]: %v", pkg, err),
			}
		}
		return filepath.Join(pkgRoot, path), nil
	}

	return filepath.Join(p.currentPath, path), nil
}
