package scene

import (
	"errors"
	"sort"
	"strconv"
)

// ErrUnknown is returned for ids outside the catalog.
var ErrUnknown = errors.New("unknown memory scene")

// Scene is one narrative memory the user can step into.
type Scene struct {
	ID          string `json:"memory_id"`
	Description string `json:"description"`
	IntroText   string `json:"intro_text"`
	Guidance    string `json:"guidance"`
}

// Store exposes read-only scene lookup.
type Store interface {
	List() []Scene
	FindByID(id string) (Scene, bool)
}

// Catalog implements Store over an immutable set of scenes.
type Catalog struct {
	byID  map[string]Scene
	order []string
}

// NewCatalog returns a Catalog preloaded with the supplied scenes.
func NewCatalog(items []Scene) *Catalog {
	c := &Catalog{byID: make(map[string]Scene, len(items))}
	for _, item := range items {
		if _, dup := c.byID[item.ID]; !dup {
			c.order = append(c.order, item.ID)
		}
		c.byID[item.ID] = item
	}
	sort.SliceStable(c.order, func(i, j int) bool { return lessID(c.order[i], c.order[j]) })
	return c
}

// List returns every scene ordered by numeric id.
func (c *Catalog) List() []Scene {
	out := make([]Scene, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// FindByID looks up a scene by its exact identifier.
func (c *Catalog) FindByID(id string) (Scene, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Lookup is FindByID with an error for unknown ids.
func Lookup(store Store, id string) (Scene, error) {
	s, ok := store.FindByID(id)
	if !ok {
		return Scene{}, ErrUnknown
	}
	return s, nil
}

func lessID(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
