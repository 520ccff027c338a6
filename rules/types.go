package rules

import (
	"strings"
	"time"

	"github.com/hannajonsd/ts-introspect/config"
	"github.com/hannajonsd/ts-introspect/extractor"
	"github.com/hannajonsd/ts-introspect/metadata"
)

// Severity classifies a finding
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
	SeverityOff   Severity = "off"
)

// ParseSeverity accepts error, warn, warning and off in any case
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, true
	case "warn", "warning":
		return SeverityWarn, true
	case "off":
		return SeverityOff, true
	}
	return "", false
}

// Finding is one rule's result for one file
type Finding struct {
	Rule     string   `json:"rule" yaml:"rule"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
	Fixable  bool     `json:"fixable" yaml:"fixable"`
}

// CheckFunc inspects one file and returns a finding, or nil when the file passes
type CheckFunc func(ctx *Context) *Finding

// Definition describes a rule
type Definition struct {
	Name            string
	Description     string
	DefaultSeverity Severity
	Fixable         bool
	Check           CheckFunc
}

// DependencyExtractor is the part of the extractor rules depend on
type DependencyExtractor interface {
	ExtractDependencies(path string, content []byte) (extractor.DependencyInfo, error)
	ModulePath(path string) string
}

// Context is the input of a rule check. It memoizes the scanned metadata
// and extracted dependencies, so one Context must not be shared between
// goroutines.
type Context struct {
	Path    string
	Content []byte
	Config  *config.Config
	Now     time.Time
	// Deps extracts the actual dependencies. Nil builds an extractor rooted at Config.Root.
	Deps DependencyExtractor

	doc     *metadata.Document
	docErr  error
	scanned bool

	deps    extractor.DependencyInfo
	depsErr error
	hasDeps bool
}

// NewContext creates a context for one file
func NewContext(path string, content []byte, cfg *config.Config) *Context {
	return &Context{Path: path, Content: content, Config: cfg}
}

// Document returns the scanned metadata of the file
func (c *Context) Document() (*metadata.Document, error) {
	if !c.scanned {
		c.doc, c.docErr = metadata.Scan(c.Content)
		c.scanned = true
	}
	return c.doc, c.docErr
}

// Dependencies returns the dependencies actually imported by the file
func (c *Context) Dependencies() (extractor.DependencyInfo, error) {
	if c.hasDeps {
		return c.deps, c.depsErr
	}
	c.hasDeps = true

	deps, err := c.extractor()
	if err != nil {
		c.depsErr = err
		return c.deps, err
	}
	c.deps, c.depsErr = deps.ExtractDependencies(c.Path, c.Content)
	return c.deps, c.depsErr
}

func (c *Context) extractor() (DependencyExtractor, error) {
	if c.Deps != nil {
		return c.Deps, nil
	}
	ext, err := extractor.New(c.config().Root)
	if err != nil {
		return nil, err
	}
	c.Deps = ext
	return ext, nil
}

func (c *Context) config() *config.Config {
	if c.Config == nil {
		return config.Default()
	}
	return c.Config
}

func (c *Context) now() time.Time {
	if c.Now.IsZero() {
		return time.Now()
	}
	return c.Now
}

// EffectiveSeverity is the configured override for def, else its default
func EffectiveSeverity(cfg *config.Config, def Definition) Severity {
	if raw, ok := cfg.RuleSeverity(def.Name); ok {
		if sev, ok := ParseSeverity(raw); ok {
			return sev
		}
	}
	return def.DefaultSeverity
}

// run invokes def and stamps the finding with its rule name and severity
func run(def Definition, sev Severity, ctx *Context) *Finding {
	f := def.Check(ctx)
	if f == nil {
		return nil
	}
	out := *f
	out.Rule = def.Name
	out.Severity = sev
	out.Fixable = def.Fixable
	return &out
}
