package panoramax

import (
	"iter"

	"github.com/paulmach/orb"
)

// Collection is an ordered sequence of images (a sequence in Panoramax terms)
// with its own set of links. It is immutable once built.
type Collection struct {
	images []*Image
	links  []Link
}

// NewCollection copies links and images into a new Collection. Links equal
// to an earlier one are dropped.
func NewCollection(links []Link, images []*Image) *Collection {
	imgs := make([]*Image, len(images))
	copy(imgs, images)
	return &Collection{
		images: imgs,
		links:  AppendUnique(make([]Link, 0, len(links)), links...),
	}
}

// Len returns the number of images.
func (c *Collection) Len() int { return len(c.images) }

// At returns the image at index i. It panics if i is out of range, like a
// slice index.
func (c *Collection) At(i int) *Image { return c.images[i] }

// Images returns a copy of the image sequence.
func (c *Collection) Images() []*Image {
	out := make([]*Image, len(c.images))
	copy(out, c.images)
	return out
}

// Links returns a copy of the collection's links.
func (c *Collection) Links() []Link {
	out := make([]Link, len(c.links))
	copy(out, c.links)
	return out
}

// Link returns the first collection link with the given rel.
func (c *Collection) Link(rel string) (Link, bool) {
	return FindLink(c.links, rel)
}

// All iterates over the images with their indexes.
func (c *Collection) All() iter.Seq2[int, *Image] {
	return func(yield func(int, *Image) bool) {
		for i, img := range c.images {
			if !yield(i, img) {
				return
			}
		}
	}
}

// IndexOf returns the index of the image with the same ID as img, or -1.
func (c *Collection) IndexOf(img *Image) int {
	if img == nil {
		return -1
	}
	for i, candidate := range c.images {
		if candidate == img || candidate.ID == img.ID {
			return i
		}
	}
	return -1
}

// Find returns the image with the given ID.
func (c *Collection) Find(id string) (*Image, bool) {
	for _, img := range c.images {
		if img.ID == id {
			return img, true
		}
	}
	return nil, false
}

// First returns the first image, or nil for an empty collection.
func (c *Collection) First() *Image {
	if len(c.images) == 0 {
		return nil
	}
	return c.images[0]
}

// Last returns the last image, or nil for an empty collection.
func (c *Collection) Last() *Image {
	if len(c.images) == 0 {
		return nil
	}
	return c.images[len(c.images)-1]
}

// Bound returns the bounding box of the image positions. An empty collection
// has an empty bound at the origin.
func (c *Collection) Bound() orb.Bound {
	if len(c.images) == 0 {
		return orb.Bound{}
	}
	points := make(orb.MultiPoint, len(c.images))
	for i, img := range c.images {
		points[i] = img.Position
	}
	return points.Bound()
}

// Merge concatenates the images of several collections in order and keeps
// each distinct link once, in encounter order.
func Merge(parts ...*Collection) *Collection {
	var (
		links  []Link
		images []*Image
	)
	for _, part := range parts {
		links = AppendUnique(links, part.links...)
		images = append(images, part.images...)
	}
	return &Collection{images: images, links: links}
}
