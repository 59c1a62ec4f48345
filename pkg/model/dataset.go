// pkg/model/dataset.go
package model

import "fmt"

// Collection is an ordered mapping from table name to table.
// Insertion order is kept because merge and export follow it.
type Collection struct {
	names  []string
	tables map[string]*Table
}

// NewCollection creates an empty collection
func NewCollection() *Collection {
	return &Collection{tables: make(map[string]*Table)}
}

// Add appends a named table. Names must be unique.
func (c *Collection) Add(name string, table *Table) error {
	if _, exists := c.tables[name]; exists {
		return fmt.Errorf("table %q already in collection", name)
	}
	if table == nil {
		return fmt.Errorf("table %q is nil", name)
	}
	c.names = append(c.names, name)
	c.tables[name] = table
	return nil
}

// Set replaces a table in place, or appends it when the name is new
func (c *Collection) Set(name string, table *Table) {
	if _, exists := c.tables[name]; !exists {
		c.names = append(c.names, name)
	}
	c.tables[name] = table
}

// Get returns a table by name
func (c *Collection) Get(name string) (*Table, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// Has reports whether a name is present
func (c *Collection) Has(name string) bool {
	_, ok := c.tables[name]
	return ok
}

// Len returns the number of tables
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Names returns table names in insertion order
func (c *Collection) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Each calls fn for every table in insertion order, stopping at the first error
func (c *Collection) Each(fn func(name string, table *Table) error) error {
	for _, name := range c.names {
		if err := fn(name, c.tables[name]); err != nil {
			return err
		}
	}
	return nil
}
