// Package chains implements the multi-chain registry: a TTL-cached,
// fuzzy-resolving index from a free-form network label to a numeric
// chain id, with alias substitution and a static fallback for when
// the remote list is unavailable.
package chains

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goware/breaker"
	"github.com/goware/logger"

	"github.com/evmscope/evmscope/internal/apperr"
)

// Info is one chain's published metadata, immutable once built.
type Info struct {
	ChainID       string
	ChainName     string
	BlockExplorer string
	APIURL        string
	Status        int
	Comment       string
}

// CanonicalLabel is the chain name's slug form, e.g. "arbitrum-one".
func (i Info) CanonicalLabel() string {
	return slug(i.ChainName)
}

// Meta is the resolution metadata returned alongside (label, chainId).
// Fields are nil when no registry entry backs a purely numeric match.
type Meta struct {
	ChainName     *string
	BlockExplorer *string
	APIURL        *string
	Status        *int
	Comment       *string
	MatchedBy     string // "chainid", "exact", or "fuzzy"
}

// Fetcher retrieves and envelope-extracts the remote chain list,
// returning the raw `result` list entries (each expected to be a
// map[string]any with chainid/chainname/... fields). Kept as a narrow
// function type so this package does not depend on internal/httpengine
// or internal/explorer.
type Fetcher func(ctx context.Context) ([]any, error)

// Registry is the chain registry. Zero value is not usable; build
// with New.
type Registry struct {
	fetch Fetcher
	ttl   time.Duration
	log   logger.Logger

	mu       sync.RWMutex
	chains   map[string]Info
	index    map[string][]string
	loadedAt time.Time

	alias map[string]string
}

// New builds a Registry. ttl is clamped to a 30-second minimum.
func New(fetch Fetcher, ttl time.Duration, log logger.Logger) *Registry {
	if ttl < 30*time.Second {
		ttl = 30 * time.Second
	}
	if log == nil {
		log = logger.NewLogger(logger.LogLevel_INFO)
	}
	return &Registry{
		fetch: fetch,
		ttl:   ttl,
		log:   log,
		alias: defaultAliases(),
	}
}

func defaultAliases() map[string]string {
	return map[string]string{
		"eth":              "ethereum mainnet",
		"ethereum":         "ethereum mainnet",
		"mainnet":          "ethereum mainnet",
		"arb":              "arbitrum one",
		"arbitrum":         "arbitrum one",
		"arb1":             "arbitrum one",
		"arbitrum one":     "arbitrum one",
		"arbitrum nova":    "arbitrum nova",
		"nova":             "arbitrum nova",
		"arb sepolia":      "arbitrum sepolia",
		"arb-sepolia":      "arbitrum sepolia",
		"arbitrum sepolia": "arbitrum sepolia",
	}
}

var (
	wordRe  = regexp.MustCompile(`[a-z0-9]+`)
	spaceRe = regexp.MustCompile(`[\s_\-]+`)
)

func norm(text string) string {
	candidate := strings.ToLower(strings.TrimSpace(text))
	candidate = spaceRe.ReplaceAllString(candidate, " ")
	return strings.Join(wordRe.FindAllString(candidate, -1), " ")
}

func slug(text string) string {
	return strings.ReplaceAll(norm(text), " ", "-")
}

var envWords = map[string]bool{"mainnet": true, "testnet": true, "network": true, "chain": true}

func dropEnvWords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !envWords[t] {
			out = append(out, t)
		}
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (r *Registry) expiredLocked() bool {
	return time.Since(r.loadedAt) > r.ttl || len(r.chains) == 0
}

// Refresh reloads the chain list if stale (or always, when force is
// true). New maps are built locally and swapped in under the write
// lock, so concurrent readers see either the old or new snapshot,
// never a half-built one.
func (r *Registry) Refresh(ctx context.Context, force bool) error {
	r.mu.RLock()
	stale := force || r.expiredLocked()
	r.mu.RUnlock()
	if !stale {
		return nil
	}

	var raw []any
	err := breaker.Do(ctx, func() error {
		fctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		items, ferr := r.fetch(fctx)
		if ferr != nil {
			return ferr
		}
		raw = items
		return nil
	}, nil, 2*time.Second, 1, 3)
	if err != nil {
		r.log.Warn(fmt.Sprintf("chains: refresh failed: %v", err))
		return fmt.Errorf("%w: chain list refresh: %v", apperr.ErrTransient, err)
	}

	chains := make(map[string]Info, len(raw))
	for _, entry := range raw {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		chainID := strings.TrimSpace(stringify(item["chainid"]))
		chainName := strings.TrimSpace(stringify(item["chainname"]))
		if !isDigits(chainID) || chainName == "" {
			continue
		}
		chains[chainID] = Info{
			ChainID:       chainID,
			ChainName:     chainName,
			BlockExplorer: strings.TrimSpace(stringify(item["blockexplorer"])),
			APIURL:        strings.TrimSpace(stringify(item["apiurl"])),
			Status:        toInt(item["status"]),
			Comment:       strings.TrimSpace(stringify(item["comment"])),
		}
	}
	if len(chains) == 0 {
		return fmt.Errorf("%w: chainlist returned empty or unparseable chain set", apperr.ErrUpstream)
	}

	index := buildIndex(chains)

	r.mu.Lock()
	r.chains = chains
	r.index = index
	r.loadedAt = time.Now()
	r.mu.Unlock()
	r.log.Debug(fmt.Sprintf("chains: refreshed %d chains", len(chains)))
	return nil
}

func buildIndex(chains map[string]Info) map[string][]string {
	index := map[string][]string{}
	add := func(key, chainID string) {
		n := norm(key)
		if n == "" {
			return
		}
		for _, existing := range index[n] {
			if existing == chainID {
				return
			}
		}
		index[n] = append(index[n], chainID)
	}
	for cid, info := range chains {
		add(cid, cid)
		add(info.ChainName, cid)
		add(slug(info.ChainName), cid)

		tokens := strings.Fields(norm(info.ChainName))
		stripped := dropEnvWords(tokens)
		if len(stripped) > 0 {
			add(strings.Join(stripped, " "), cid)
			add(strings.Join(stripped, "-"), cid)
		}
	}
	return index
}

// ListChains returns every known chain ordered by ascending numeric
// chain id, refreshing first if stale.
func (r *Registry) ListChains(ctx context.Context, includeDegraded bool) ([]Info, error) {
	if err := r.Refresh(ctx, false); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.chains))
	for cid := range r.chains {
		ids = append(ids, cid)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})

	out := make([]Info, 0, len(ids))
	for _, cid := range ids {
		info := r.chains[cid]
		if !includeDegraded && info.Status != 1 {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

// Resolve maps a free-form network label (or numeric chain id string)
// to (label, chainId, meta). Purely numeric input is accepted even if
// the registry is unavailable.
func (r *Registry) Resolve(ctx context.Context, network string) (string, string, Meta, error) {
	raw := strings.TrimSpace(network)
	if raw == "" {
		return "", "", Meta{}, fmt.Errorf("%w: network must be a non-empty string", apperr.ErrInvalidInput)
	}

	if isDigits(raw) {
		r.mu.RLock()
		info, ok := r.chains[raw]
		r.mu.RUnlock()
		if ok {
			return info.CanonicalLabel(), info.ChainID, metaFor(&info, "chainid"), nil
		}
		return raw, raw, metaFor(nil, "chainid"), nil
	}

	if err := r.Refresh(ctx, false); err != nil {
		return "", "", Meta{}, err
	}

	q := norm(raw)
	if alias, ok := r.alias[q]; ok {
		q = norm(alias)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if exact, ok := r.index[q]; ok {
		return r.pickOrRaise(q, exact, "exact")
	}

	best := map[string]int{}
	for key, ids := range r.index {
		var score int
		switch {
		case strings.HasPrefix(key, q):
			score = 80
		case strings.Contains(key, q):
			score = 50
		default:
			continue
		}
		for _, cid := range ids {
			if score > best[cid] {
				best[cid] = score
			}
		}
	}
	if len(best) == 0 {
		return "", "", Meta{}, fmt.Errorf("%w: unknown network %q; try a numeric chainId", apperr.ErrInvalidInput, raw)
	}

	type scored struct {
		cid   string
		score int
	}
	ranked := make([]scored, 0, len(best))
	for cid, score := range best {
		ranked = append(ranked, scored{cid, score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		a, _ := strconv.Atoi(ranked[i].cid)
		b, _ := strconv.Atoi(ranked[j].cid)
		return a < b
	})
	topScore := ranked[0].score
	var top []string
	for _, s := range ranked {
		if s.score == topScore {
			top = append(top, s.cid)
		}
	}
	return r.pickOrRaise(q, top, "fuzzy")
}

func (r *Registry) pickOrRaise(q string, chainIDs []string, matchedBy string) (string, string, Meta, error) {
	if len(chainIDs) == 1 {
		info := r.chains[chainIDs[0]]
		return info.CanonicalLabel(), info.ChainID, metaFor(&info, matchedBy), nil
	}

	sorted := append([]string(nil), chainIDs...)
	sort.Slice(sorted, func(i, j int) bool {
		a, _ := strconv.Atoi(sorted[i])
		b, _ := strconv.Atoi(sorted[j])
		return a < b
	})
	if len(sorted) > 10 {
		sorted = sorted[:10]
	}
	previews := make([]string, 0, len(sorted))
	for _, cid := range sorted {
		if info, ok := r.chains[cid]; ok {
			previews = append(previews, fmt.Sprintf("%s (chainid=%s)", info.ChainName, info.ChainID))
		}
	}
	return "", "", Meta{}, fmt.Errorf("%w: ambiguous network query %q. Candidates: %s", apperr.ErrAmbiguousNetwork, q, strings.Join(previews, "; "))
}

func metaFor(info *Info, matchedBy string) Meta {
	if info == nil {
		return Meta{MatchedBy: matchedBy}
	}
	name, explorer, apiURL, comment := info.ChainName, info.BlockExplorer, info.APIURL, info.Comment
	status := info.Status
	return Meta{
		ChainName:     &name,
		BlockExplorer: &explorer,
		APIURL:        &apiURL,
		Status:        &status,
		Comment:       &comment,
		MatchedBy:     matchedBy,
	}
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	default:
		return 0
	}
}
