// Package instance groups annotation shapes into object instances.
//
// Shapes that share a label and a group id belong to the same physical object.
// The Aggregator rasterizes each shape, ORs its mask into the instance mask and
// keeps one segmentation entry per shape in arrival order.
package instance

import (
	"fmt"
	"strconv"

	"github.com/ironsheep/labelme2coco/internal/mask"
	"github.com/ironsheep/labelme2coco/internal/shape"
)

// Key identifies an instance within one image.
type Key struct {
	Label string
	Group string
}

// Instance is the accumulated state of one object.
type Instance struct {
	Key Key

	// Mask is the union of all contributing shape masks.
	Mask *mask.Mask

	// Segmentation holds one flat coordinate list per contributing shape.
	Segmentation [][]float64
}

// Aggregator folds the shapes of a single image into instances.
//
// An Aggregator is not safe for concurrent use; create one per image.
type Aggregator struct {
	width  int
	height int
	ids    IDGenerator

	byKey map[Key]*Instance
	order []*Instance
}

// NewAggregator returns an aggregator for a width x height image. ids
// supplies group ids for shapes that have none.
func NewAggregator(width, height int, ids IDGenerator) *Aggregator {
	return &Aggregator{
		width:  width,
		height: height,
		ids:    ids,
		byKey:  make(map[Key]*Instance),
	}
}

// KeyFor returns the instance key of s, generating a fresh group when s has
// no group id.
func (a *Aggregator) KeyFor(s shape.Shape) Key {
	if s.GroupID != nil {
		return Key{Label: s.Label, Group: strconv.Itoa(*s.GroupID)}
	}
	return Key{Label: s.Label, Group: a.ids.NewID()}
}

// Add rasterizes s and merges it into its instance.
//
// On error the aggregator is left unchanged.
func (a *Aggregator) Add(s shape.Shape) error {
	r, err := shape.Rasterize(s, a.width, a.height)
	if err != nil {
		return err
	}

	key := a.KeyFor(s)
	inst, ok := a.byKey[key]
	if !ok {
		inst = &Instance{Key: key, Mask: r.Mask}
		a.byKey[key] = inst
		a.order = append(a.order, inst)
	} else if err := inst.Mask.Or(r.Mask); err != nil {
		return fmt.Errorf("merging %q into instance %v: %w", s.Label, key, err)
	}
	inst.Segmentation = append(inst.Segmentation, r.Segmentation)
	return nil
}

// Instances returns the instances in order of first appearance.
func (a *Aggregator) Instances() []*Instance {
	out := make([]*Instance, len(a.order))
	copy(out, a.order)
	return out
}

// Aggregate builds the instances of one image from its shapes in file order.
func Aggregate(shapes []shape.Shape, width, height int, ids IDGenerator) ([]*Instance, error) {
	a := NewAggregator(width, height, ids)
	for i, s := range shapes {
		if err := a.Add(s); err != nil {
			return nil, fmt.Errorf("shape %d (%s): %w", i, s.Label, err)
		}
	}
	return a.Instances(), nil
}
