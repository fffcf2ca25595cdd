package panoramax

import "net/url"

// Common link relations.
const (
	RelNext = "next"
	RelPrev = "prev"
	RelSelf = "self"
	RelRoot = "root"
	RelVia  = "via"
)

// Link is a typed reference to another resource. It is used both for
// pagination (rel "next") and for asset references.
type Link struct {
	Href  *url.URL
	Rel   string
	Type  string
	Title string // optional
}

// Equal reports whether l and o agree on every field. Hrefs compare by their
// string form.
func (l Link) Equal(o Link) bool {
	return l.Rel == o.Rel &&
		l.Type == o.Type &&
		l.Title == o.Title &&
		l.HrefString() == o.HrefString()
}

// HasRel reports whether the link has exactly the given relation.
func (l Link) HasRel(rel string) bool {
	return l.Rel == rel
}

// HrefString returns the href as a string, or "" when unset.
func (l Link) HrefString() string {
	if l.Href == nil {
		return ""
	}
	return l.Href.String()
}

// FindLink returns the first link with the given rel.
func FindLink(links []Link, rel string) (Link, bool) {
	for _, l := range links {
		if l.HasRel(rel) {
			return l, true
		}
	}
	return Link{}, false
}

// AppendUnique appends each link that is not already present in dst, keeping
// encounter order.
func AppendUnique(dst []Link, links ...Link) []Link {
	for _, l := range links {
		if !containsLink(dst, l) {
			dst = append(dst, l)
		}
	}
	return dst
}

func containsLink(links []Link, l Link) bool {
	for _, existing := range links {
		if existing.Equal(l) {
			return true
		}
	}
	return false
}
