// Package recommend ranks catalog games for a user.
//
// A game's score is a weighted sum of independent signals:
//
//	score = inWishlist         * WishlistWeight
//	      + tagOverlap         * TagMatchWeight
//	      + normalizedViews    * ViewCountWeight
//	      + normalizedHotness  * HotnessWeight
//
// tagOverlap is |game tags ∩ favorite tags| / |favorite tags|, compared
// case-insensitively over de-duplicated names. The view and hotness signals
// contribute nothing until a provider is configured.
//
// Ranking sorts by descending score and keeps input order between equal
// scores, so callers control tie-breaking through candidate order.
package recommend

import (
	"math"
	"sort"
	"strings"
)

// Signal weights.
const (
	WishlistWeight  = 0.30
	TagMatchWeight  = 0.25
	ViewCountWeight = 0.20
	HotnessWeight   = 0.10
)

// Bucket names that do not come from a tag.
const (
	BucketFreeToPlay = "Free to Play"
	BucketDiscounts  = "Discounts"
)

// Candidate is a game materialized for scoring.
type Candidate struct {
	ID                 uint
	Title              string
	PriceCents         int64
	DiscountPriceCents *int64
	Tags               []string
}

func (c Candidate) free() bool {
	return c.PriceCents <= 0
}

func (c Candidate) discounted() bool {
	return c.PriceCents > 0 && c.DiscountPriceCents != nil && *c.DiscountPriceCents < c.PriceCents
}

// Profile is the per-user input to scoring.
type Profile struct {
	UserID   uint
	wishlist map[uint]struct{}
	// favorites keeps first-seen display names in input order.
	favorites    []string
	favoriteKeys map[string]struct{}
}

// NewProfile builds a profile from a user's wishlist and favorite tag names.
// Tag names are trimmed and compared case-insensitively; duplicates and
// blanks are dropped.
func NewProfile(userID uint, wishlist []uint, favoriteTags []string) *Profile {
	p := &Profile{
		UserID:       userID,
		wishlist:     make(map[uint]struct{}, len(wishlist)),
		favoriteKeys: make(map[string]struct{}, len(favoriteTags)),
	}
	for _, id := range wishlist {
		p.wishlist[id] = struct{}{}
	}
	for _, name := range favoriteTags {
		key := tagKey(name)
		if key == "" {
			continue
		}
		if _, seen := p.favoriteKeys[key]; seen {
			continue
		}
		p.favoriteKeys[key] = struct{}{}
		p.favorites = append(p.favorites, strings.TrimSpace(name))
	}
	return p
}

// FavoriteTags returns the de-duplicated favorite tag names in input order.
func (p *Profile) FavoriteTags() []string {
	return append([]string(nil), p.favorites...)
}

// InWishlist reports whether gameID is on the user's wishlist.
func (p *Profile) InWishlist(gameID uint) bool {
	_, ok := p.wishlist[gameID]
	return ok
}

// Provider yields a normalized signal in [0, 1] for a game.
type Provider func(gameID uint) float64

// Signals holds the optional providers. A nil provider contributes 0.
type Signals struct {
	Views   Provider
	Hotness Provider
}

// Scored is a candidate with its score.
type Scored struct {
	Candidate
	Score float64
}

// Bucket is a named, ranked slice of the catalog.
type Bucket struct {
	Name  string
	Games []Scored
}

// Engine scores and ranks candidates. The zero value scores with the
// wishlist and tag signals only.
type Engine struct {
	signals Signals
}

// NewEngine creates an engine with the given optional signals.
func NewEngine(signals Signals) *Engine {
	return &Engine{signals: signals}
}

// Score computes the relevance of c for p. It never fails; empty inputs score 0.
func (e *Engine) Score(p *Profile, c Candidate) float64 {
	if p == nil {
		p = NewProfile(0, nil, nil)
	}

	var score float64
	if p.InWishlist(c.ID) {
		score += WishlistWeight
	}
	if len(p.favoriteKeys) > 0 {
		score += tagOverlap(p.favoriteKeys, c.Tags) * TagMatchWeight
	}
	if e != nil {
		score += signal(e.signals.Views, c.ID) * ViewCountWeight
		score += signal(e.signals.Hotness, c.ID) * HotnessWeight
	}
	return score
}

// Rank scores every candidate and returns them by descending score, keeping
// input order between ties. limit <= 0 returns every candidate.
func (e *Engine) Rank(p *Profile, candidates []Candidate, limit int) []Scored {
	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		scored[i] = Scored{Candidate: c, Score: e.Score(p, c)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// Categories partitions candidates into the free-to-play bucket, the
// discounts bucket and one bucket per favorite tag, each ranked and truncated
// to limit independently. Buckets are returned even when empty.
func (e *Engine) Categories(p *Profile, candidates []Candidate, limit int) []Bucket {
	if p == nil {
		p = NewProfile(0, nil, nil)
	}

	var free, discounted []Candidate
	for _, c := range candidates {
		if c.free() {
			free = append(free, c)
		}
		if c.discounted() {
			discounted = append(discounted, c)
		}
	}

	buckets := []Bucket{
		{Name: BucketFreeToPlay, Games: e.Rank(p, free, limit)},
		{Name: BucketDiscounts, Games: e.Rank(p, discounted, limit)},
	}

	for _, name := range p.favorites {
		key := tagKey(name)
		var tagged []Candidate
		for _, c := range candidates {
			if hasTag(c.Tags, key) {
				tagged = append(tagged, c)
			}
		}
		buckets = append(buckets, Bucket{Name: name, Games: e.Rank(p, tagged, limit)})
	}
	return buckets
}

func tagKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func tagOverlap(favorites map[string]struct{}, tags []string) float64 {
	seen := make(map[string]struct{}, len(tags))
	matches := 0
	for _, tag := range tags {
		key := tagKey(tag)
		if _, dup := seen[key]; dup || key == "" {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := favorites[key]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(favorites))
}

func hasTag(tags []string, key string) bool {
	for _, tag := range tags {
		if tagKey(tag) == key {
			return true
		}
	}
	return false
}

func signal(p Provider, gameID uint) float64 {
	if p == nil {
		return 0
	}
	v := p(gameID)
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
