// Package rule contains rule matching, learning and rule management use cases.
package rule

import (
	"regexp"
	"strings"
	"sync"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

const caseInsensitiveFlag = "(?i)"

// CompilePattern compiles rule pattern text the way the matcher evaluates it: case-insensitively.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if !strings.HasPrefix(pattern, caseInsensitiveFlag) {
		pattern = caseInsensitiveFlag + pattern
	}
	return regexp.Compile(pattern)
}

type compiledPattern struct {
	re  *regexp.Regexp
	err error
}

// PatternCache memoizes compiled rule patterns by pattern fingerprint.
// Compile failures are memoized too so a malformed rule costs one compile attempt.
type PatternCache struct {
	mu       sync.RWMutex
	compiled map[string]compiledPattern
}

// NewPatternCache creates an empty PatternCache.
func NewPatternCache() *PatternCache {
	return &PatternCache{compiled: make(map[string]compiledPattern)}
}

// patternKey is the PatternCache key of a rule.
func patternKey(rule *entity.Rule) string {
	if rule.PatternFingerprint != "" {
		return rule.PatternFingerprint
	}
	return entity.PatternFingerprint(rule.Pattern)
}

// Get returns the compiled pattern of a rule.
func (c *PatternCache) Get(rule *entity.Rule) (*regexp.Regexp, error) {
	key := patternKey(rule)

	c.mu.RLock()
	cp, ok := c.compiled[key]
	c.mu.RUnlock()
	if ok {
		return cp.re, cp.err
	}

	re, err := CompilePattern(rule.Pattern)
	c.mu.Lock()
	c.compiled[key] = compiledPattern{re: re, err: err}
	c.mu.Unlock()
	return re, err
}

// Retain drops compiled patterns whose fingerprints are not in keep.
func (c *PatternCache) Retain(keep map[string]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.compiled {
		if _, ok := keep[k]; !ok {
			delete(c.compiled, k)
		}
	}
}

var (
	regexEscapeClass = regexp.MustCompile(`\\[A-Za-z]`)
	regexMeta        = regexp.MustCompile(`[\\^$.|?*+()\[\]{}]+`)
)

// patternTokens extracts the literal words of a regex pattern, uppercased.
// `(?i)\bSHOBA.*ENT\b` yields [SHOBA ENT].
func patternTokens(pattern string) []string {
	p := strings.ReplaceAll(pattern, caseInsensitiveFlag, " ")
	p = regexEscapeClass.ReplaceAllString(p, " ")
	p = regexMeta.ReplaceAllString(p, " ")
	return strings.Fields(strings.ToUpper(p))
}
