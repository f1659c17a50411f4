package webmark

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// NormalizeURL normalizes a URL for identity comparison: scheme and host are
// lowercased, the fragment is stripped, and query parameters are sorted by
// key then value. The normalized string is the canonical identity of a URL
// record across a map/crawl session.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", Errorf(EINVALID, "invalid URL %q: %v", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", Errorf(EINVALID, "URL %q missing scheme or host", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawQuery = sortQuery(u.Query(), nil)

	return u.String(), nil
}

// DefaultTrackingParams lists query parameters stripped during similarity
// normalization: analytics campaign tags, ad platform click IDs, and generic
// referral markers.
var DefaultTrackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"_ga", "_gl",
	"fbclid", "gclid", "dclid", "msclkid", "igshid",
	"mc_cid", "mc_eid",
	"ref", "ref_src", "source", "share",
}

// NormalizeSimilar normalizes a URL for similarity deduplication. On top of
// NormalizeURL it removes tracking query parameters. The tracking set is
// configurable; nil selects DefaultTrackingParams. Parameters prefixed with
// "utm_" are always removed.
func NormalizeSimilar(raw string, tracking []string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", Errorf(EINVALID, "invalid URL %q: %v", raw, err)
	}
	if tracking == nil {
		tracking = DefaultTrackingParams
	}
	deny := make(map[string]bool, len(tracking))
	for _, p := range tracking {
		deny[strings.ToLower(p)] = true
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawQuery = sortQuery(u.Query(), func(key string) bool {
		k := strings.ToLower(key)
		return strings.HasPrefix(k, "utm_") || deny[k]
	})

	return u.String(), nil
}

// sortQuery re-encodes query values in sorted key/value order, dropping
// keys for which skip returns true.
func sortQuery(values url.Values, skip func(string) bool) string {
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		if skip != nil && skip(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		vs := append([]string(nil), values[k]...)
		sort.Strings(vs)
		for _, v := range vs {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// CacheKey derives the content-addressed cache key for a URL: the first 16
// hex characters of the SHA-256 digest of the normalized URL. URLs that fail
// normalization hash their raw form so the key is always deterministic.
func CacheKey(rawURL string) string {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		normalized = rawURL
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:16]
}

// SameHost reports whether the URL belongs to the given host. With
// includeSubdomains, any subdomain of host also matches.
func SameHost(rawURL, host string, includeSubdomains bool) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	urlHost := strings.ToLower(u.Host)
	base := strings.ToLower(host)
	if urlHost == base {
		return true
	}
	return includeSubdomains && strings.HasSuffix(urlHost, "."+base)
}

// URLFilter admits URLs by glob patterns. If any include patterns are set,
// a URL must match at least one; exclude patterns are applied after and a
// URL matching any of them is rejected.
type URLFilter struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewURLFilter compiles include and exclude glob patterns into a filter.
// Returns EINVALID if any pattern fails to compile.
func NewURLFilter(include, exclude []string) (*URLFilter, error) {
	f := &URLFilter{}
	for _, p := range include {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid include pattern %q: %v", p, err)
		}
		f.include = append(f.include, g)
	}
	for _, p := range exclude {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid exclude pattern %q: %v", p, err)
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

// Match returns true if the URL passes the filter. A nil filter admits all.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}
	if len(f.include) > 0 {
		matched := false
		for _, g := range f.include {
			if g.Match(url) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, g := range f.exclude {
		if g.Match(url) {
			return false
		}
	}
	return true
}
