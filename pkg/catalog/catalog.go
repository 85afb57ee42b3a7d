package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/photobook/pkg/errors"
)

//go:embed default.yaml
var defaultYAML []byte

// slotTolerance absorbs rounding in hand-written coordinates.
const slotTolerance = 1e-3

// Catalog is an immutable set of templates keyed by slot count.
// It is safe for concurrent use.
type Catalog struct {
	byCount map[int][]Template
	byID    map[string]Template
	counts  []int
}

type file struct {
	Templates []Template `yaml:"templates"`
}

// New builds a catalog from templates. It returns a configuration error when
// templates is empty, when an id is malformed or duplicated, or when a slot
// lies outside the page.
func New(templates []Template) (*Catalog, error) {
	if len(templates) == 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "template catalog is empty")
	}

	c := &Catalog{
		byCount: make(map[int][]Template),
		byID:    make(map[string]Template, len(templates)),
	}
	for _, t := range templates {
		if err := validate(t); err != nil {
			return nil, err
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, errors.New(errors.ErrCodeConfiguration, "duplicate template id %q", t.ID)
		}
		t.Slots = slices.Clone(t.Slots)
		c.byID[t.ID] = t
		n := len(t.Slots)
		if _, ok := c.byCount[n]; !ok {
			c.counts = append(c.counts, n)
		}
		c.byCount[n] = append(c.byCount[n], t)
	}
	slices.Sort(c.counts)
	return c, nil
}

func validate(t Template) error {
	if err := errors.ValidateTemplateID(t.ID); err != nil {
		return err
	}
	if len(t.Slots) == 0 {
		return errors.New(errors.ErrCodeConfiguration, "template %q has no slots", t.ID)
	}
	for i, s := range t.Slots {
		if s.W <= 0 || s.H <= 0 {
			return errors.New(errors.ErrCodeConfiguration, "template %q slot %d: non-positive size", t.ID, i)
		}
		if s.X < 0 || s.Y < 0 || s.X+s.W > 1+slotTolerance || s.Y+s.H > 1+slotTolerance {
			return errors.New(errors.ErrCodeConfiguration, "template %q slot %d: outside the page", t.ID, i)
		}
		if s.AR < 0 {
			return errors.New(errors.ErrCodeConfiguration, "template %q slot %d: negative aspect", t.ID, i)
		}
	}
	return nil
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "decode template catalog")
	}
	return New(f.Templates)
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "template catalog %s", path)
		}
		return nil, fmt.Errorf("read template catalog: %w", err)
	}
	return Parse(data)
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default catalog: %v", err))
	}
	return c
})

// Default returns the embedded default catalog.
func Default() *Catalog { return defaultCatalog() }

// DefaultYAML returns the raw embedded catalog, a starting point for custom ones.
func DefaultYAML() []byte { return slices.Clone(defaultYAML) }

// For returns the candidate templates for a group of n photos together with
// the slot count they were taken from. See the package documentation for the
// mismatch rule. It returns nil, 0 for n <= 0.
func (c *Catalog) For(n int) ([]Template, int) {
	if n <= 0 || len(c.counts) == 0 {
		return nil, 0
	}
	if ts, ok := c.byCount[n]; ok {
		return ts, n
	}
	i, _ := slices.BinarySearch(c.counts, n)
	if i < len(c.counts) {
		k := c.counts[i]
		return c.byCount[k], k
	}
	k := c.counts[len(c.counts)-1]
	return c.byCount[k], k
}

// Lookup returns the template with the given id.
func (c *Catalog) Lookup(id string) (Template, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Get is like Lookup but returns a TEMPLATE_NOT_FOUND error.
func (c *Catalog) Get(id string) (Template, error) {
	if t, ok := c.byID[id]; ok {
		return t, nil
	}
	return Template{}, errors.New(errors.ErrCodeTemplateNotFound, "unknown template %q", id)
}

// Counts returns the slot counts present, ascending.
func (c *Catalog) Counts() []int { return slices.Clone(c.counts) }

// All returns every template ordered by slot count, then catalog order.
func (c *Catalog) All() []Template {
	var out []Template
	for _, n := range c.counts {
		out = append(out, c.byCount[n]...)
	}
	return out
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.byID) }

// Fallback returns the catalog's full-bleed template when present, otherwise
// the built-in one.
func (c *Catalog) Fallback() Template {
	if t, ok := c.byID[FallbackID]; ok {
		return t
	}
	return Fallback()
}
