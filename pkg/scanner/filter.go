package scanner

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/haampie/classify-text-experiment/pkg/logger"
)

// DefaultExcludes are the metadata directories of a Spack install tree.
var DefaultExcludes = []string{"/.spack/", "/.spack-db/"}

// FilterConfig configures the candidate filter.
type FilterConfig struct {
	// Excludes are path substrings; any candidate whose slash-separated path
	// contains one of them is rejected.
	Excludes []string

	// IgnorePatterns are glob patterns. A pattern without a slash matches a
	// base name, a pattern with a slash matches a path suffix, a trailing
	// slash restricts the pattern to directories and "**" crosses directories.
	IgnorePatterns []string
}

type ignorePattern struct {
	raw     string
	g       glob.Glob
	base    bool
	dirOnly bool
}

// Filter decides from metadata alone whether an entry gets classified.
type Filter struct {
	excludes []string
	patterns []ignorePattern
	log      logger.Logger
}

// NewFilter compiles the ignore patterns. An invalid pattern is an error.
func NewFilter(cfg FilterConfig, log logger.Logger) (*Filter, error) {
	if log == nil {
		log = logger.Nop()
	}

	f := &Filter{log: log}
	for _, ex := range cfg.Excludes {
		if ex = filepath.ToSlash(ex); ex != "" {
			f.excludes = append(f.excludes, ex)
		}
	}

	for _, raw := range cfg.IgnorePatterns {
		p, err := compilePattern(raw)
		if err != nil {
			return nil, err
		}
		f.patterns = append(f.patterns, p)
	}

	log.WithFields(logger.Fields{
		"excludes": f.excludes,
		"patterns": cfg.IgnorePatterns,
	}).Debug("Candidate filter ready")

	return f, nil
}

func compilePattern(raw string) (ignorePattern, error) {
	p := filepath.ToSlash(strings.TrimSpace(raw))
	dirOnly := strings.HasSuffix(p, "/")
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return ignorePattern{}, fmt.Errorf("invalid ignore pattern %q: empty pattern", raw)
	}

	base := !strings.Contains(p, "/")
	expr := p
	if !base && !strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "**") {
		expr = "**/" + p
	}

	g, err := glob.Compile(expr, '/')
	if err != nil {
		return ignorePattern{}, fmt.Errorf("invalid ignore pattern %q: %w", raw, err)
	}

	return ignorePattern{raw: raw, g: g, base: base, dirOnly: dirOnly}, nil
}

func (p ignorePattern) match(slashPath string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	if p.base {
		return p.g.Match(path.Base(slashPath))
	}
	return p.g.Match(slashPath)
}

// Check returns Accepted or the reason the candidate is rejected.
func (f *Filter) Check(c Candidate) Reason {
	switch {
	case !c.IsRegular():
		return RejectNotRegular
	case c.Size <= 0:
		return RejectZeroSize
	case f.excluded(c.Path):
		return RejectExcluded
	}
	return Accepted
}

// SkipDir reports whether a directory subtree can be pruned: every entry
// below it would be rejected as excluded.
func (f *Filter) SkipDir(dir string) bool {
	slash := rooted(dir)
	for _, ex := range f.excludes {
		if strings.Contains(slash+"/", ex) {
			return true
		}
	}
	for _, p := range f.patterns {
		if p.match(slash, true) {
			f.log.WithFields(logger.Fields{
				"path":    dir,
				"pattern": p.raw,
			}).Trace("Directory pruned")
			return true
		}
	}
	return false
}

func (f *Filter) excluded(p string) bool {
	slash := rooted(p)
	for _, ex := range f.excludes {
		if strings.Contains(slash, ex) {
			return true
		}
	}
	if len(f.patterns) == 0 {
		return false
	}

	for _, pat := range f.patterns {
		if pat.match(slash, false) {
			return true
		}
	}
	for dir := path.Dir(slash); dir != "/" && dir != "."; dir = path.Dir(dir) {
		for _, pat := range f.patterns {
			if pat.match(dir, true) {
				return true
			}
		}
	}
	return false
}

// rooted gives relative paths a leading slash so substring and suffix rules
// see the first component as a full path element.
func rooted(p string) string {
	slash := filepath.ToSlash(p)
	if !strings.HasPrefix(slash, "/") {
		slash = "/" + strings.TrimPrefix(slash, "./")
	}
	return slash
}
