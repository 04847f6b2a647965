// Package resolve maps externally supplied player names to canonical
// identities in the reference dataset.
//
// Platforms disagree about the same player ("A.J. Brown" vs "AJ Brown",
// "Patrick Mahomes" vs "Patrick Mahomes II", "Travis Etienne Jr." vs
// "Travis Etienne"), so resolution normalizes aggressively, tries an exact
// match, and falls back to string similarity above a threshold. A name with
// no acceptable match is reported as unresolved, never silently merged.
package resolve

import (
	"regexp"
	"strings"
	"sync"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Default resolver configuration constants.
const (
	// defaultThreshold is the minimum similarity score (0..1) accepted as
	// a fuzzy match.
	defaultThreshold = 0.82
)

// Suffixes that platforms may include or omit inconsistently.
var suffixRE = regexp.MustCompile(`(?i)\s+(jr\.?|sr\.?|ii|iii|iv|v|2nd|3rd)$`)

// Punctuation that varies between sources (A.J. vs AJ, D'Andre vs DAndre).
var punctuationRE = regexp.MustCompile(`[.\-'']`)

var spaceRE = regexp.MustCompile(`\s+`)

// Normalize aggressively normalizes a player name for identity comparison.
// This is the single shared normalization used everywhere identities are
// compared.
//
//	"A.J. Brown Jr."      -> "aj brown"
//	"Patrick Mahomes II"  -> "patrick mahomes"
//	"D'Andre Swift"       -> "dandre swift"
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = punctuationRE.ReplaceAllString(s, "")
	s = suffixRE.ReplaceAllString(s, "")
	s = spaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Candidate is one entry of the reference pool the resolver matches against.
type Candidate struct {
	Key  string // canonical identity key
	Name string // display name as loaded
}

// Match is a successful resolution.
type Match struct {
	Key        string  // canonical identity key
	Confidence float64 // 1.0 for exact, similarity score for fuzzy
}

type corpusEntry struct {
	normalized string
	key        string
}

// Resolver resolves incoming names against an indexed candidate pool.
// It is safe for concurrent use; resolution has no side effects beyond
// an internal lookup cache.
type Resolver struct {
	threshold float64
	sim       *metrics.JaroWinkler
	drafted   func(key string) bool // tie-break input, may be nil

	mu     sync.RWMutex
	exact  map[string]string // normalized -> canonical key
	corpus []corpusEntry
	cache  map[string]Match // raw name -> exact hit or miss ("" key = miss)
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithThreshold sets the minimum accepted fuzzy similarity score.
func WithThreshold(threshold float64) Option {
	return func(r *Resolver) {
		if threshold > 0 && threshold <= 1 {
			r.threshold = threshold
		}
	}
}

// WithDraftedLookup supplies the draft-status predicate used to break
// exact similarity ties: an undrafted candidate is preferred since live
// auction events almost always concern players still on the board.
func WithDraftedLookup(fn func(key string) bool) Option {
	return func(r *Resolver) {
		r.drafted = fn
	}
}

// NewResolver creates a resolver with configuration options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		threshold: defaultThreshold,
		sim:       metrics.NewJaroWinkler(),
		exact:     make(map[string]string),
		cache:     make(map[string]Match),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BuildIndex rebuilds the matching index from the candidate pool.
// Call after the reference dataset loads; clears the lookup cache.
func (r *Resolver) BuildIndex(pool []Candidate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.exact = make(map[string]string, len(pool))
	r.corpus = r.corpus[:0]
	r.cache = make(map[string]Match)

	for _, c := range pool {
		normalized := Normalize(c.Name)
		r.exact[normalized] = c.Key
		r.corpus = append(r.corpus, corpusEntry{normalized: normalized, key: c.Key})
		// The key itself may differ slightly from the normalized display
		// name; index it too so canonical keys always resolve.
		if c.Key != normalized {
			r.exact[c.Key] = c.Key
		}
	}
}

// Resolve maps an incoming name to a canonical identity.
// Returns (match, true) on success. A failed resolution returns
// (Match{Confidence: 0}, false) and the caller must treat the player as
// not found rather than merging with an unrelated record.
func (r *Resolver) Resolve(raw string) (Match, bool) {
	if raw == "" {
		return Match{}, false
	}

	r.mu.RLock()
	if m, ok := r.cache[raw]; ok {
		r.mu.RUnlock()
		return m, m.Key != ""
	}
	r.mu.RUnlock()

	m, ok := r.resolveUncached(raw)

	// Fuzzy matches may be tie-broken on live draft status, which changes
	// as the auction runs. Only exact hits and misses are stable enough
	// to cache.
	if !ok || m.Confidence == 1.0 {
		r.mu.Lock()
		r.cache[raw] = m
		r.mu.Unlock()
	}
	return m, ok
}

func (r *Resolver) resolveUncached(raw string) (Match, bool) {
	normalized := Normalize(raw)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if key, ok := r.exact[normalized]; ok {
		return Match{Key: key, Confidence: 1.0}, true
	}

	// Fuzzy pass: strictly highest score wins; exact ties prefer an
	// undrafted candidate.
	var (
		bestKey   string
		bestScore float64
	)
	for _, entry := range r.corpus {
		score := strutil.Similarity(normalized, entry.normalized, r.sim)
		if score < r.threshold {
			continue
		}
		switch {
		case score > bestScore:
			bestKey, bestScore = entry.key, score
		case score == bestScore && bestKey != "":
			if r.drafted != nil && r.drafted(bestKey) && !r.drafted(entry.key) {
				bestKey = entry.key
			}
		}
	}
	if bestKey == "" {
		return Match{}, false
	}
	return Match{Key: bestKey, Confidence: bestScore}, true
}
