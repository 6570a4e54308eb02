package selection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Choice is one selectable entry of a sub-category
type Choice struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// SubCategory is a named list of choices, rendered as one widget
type SubCategory struct {
	Name    string
	Choices []Choice
}

// Category is a main category holding sub-categories in document order
type Category struct {
	Name          string
	SubCategories []SubCategory
}

// Catalog is the parsed prompt catalog. It is immutable once loaded.
type Catalog struct {
	Categories []Category

	// Warnings lists authoring problems found while parsing, such as
	// duplicate sub-category names or colliding selection keys. They never
	// prevent loading.
	Warnings []string
}

// CatalogError reports a catalog document that exists but could not be parsed
type CatalogError struct {
	Path string
	Err  error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("failed to load catalog %s: %v", e.Path, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// IsEmpty reports whether the catalog has no categories
func (c *Catalog) IsEmpty() bool {
	return c == nil || len(c.Categories) == 0
}

// Lookup returns the sub-category addressed by main and sub names
func (c *Catalog) Lookup(main, sub string) (SubCategory, bool) {
	for _, cat := range c.Categories {
		if cat.Name != main {
			continue
		}
		for _, sc := range cat.SubCategories {
			if sc.Name == sub {
				return sc, true
			}
		}
	}
	return SubCategory{}, false
}

// LoadCatalog reads the catalog document at path.
//
// A missing document is bootstrapped: "{}" is written to path and an empty
// catalog is returned without error. A document that fails to parse yields an
// empty catalog together with a *CatalogError; callers display the error and
// keep running.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return &Catalog{}, fmt.Errorf("failed to create catalog directory: %w", err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			return &Catalog{}, fmt.Errorf("failed to write empty catalog: %w", err)
		}
		return &Catalog{}, nil
	}
	if err != nil {
		return &Catalog{}, &CatalogError{Path: path, Err: err}
	}

	cat, err := ParseCatalog(data)
	if err != nil {
		return &Catalog{}, &CatalogError{Path: path, Err: err}
	}
	return cat, nil
}

// ParseCatalog decodes a three-level catalog document, keeping the key order
// of the document. Duplicate keys collapse onto the first occurrence's
// position with the last definition's value.
func ParseCatalog(data []byte) (*Catalog, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	cat := &Catalog{}

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return cat, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("catalog root must be an object, got %v", tok)
	}

	index := make(map[string]int)
	err = decodeObjectBody(dec, func(name string) error {
		subs, err := decodeSubCategories(dec, name, &cat.Warnings)
		if err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		if i, dup := index[name]; dup {
			cat.Warnings = append(cat.Warnings, fmt.Sprintf("duplicate category %q; last definition wins", name))
			cat.Categories[i].SubCategories = subs
			return nil
		}
		index[name] = len(cat.Categories)
		cat.Categories = append(cat.Categories, Category{Name: name, SubCategories: subs})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after catalog object")
	}
	cat.Warnings = append(cat.Warnings, keyCollisions(cat)...)
	return cat, nil
}

// keyCollisions reports sub-categories of different main categories whose
// selection keys coincide, e.g. "A-B"/"C" and "A"/"B-C".
func keyCollisions(cat *Catalog) []string {
	var warnings []string
	owners := make(map[string]string)
	for _, c := range cat.Categories {
		for _, sc := range c.SubCategories {
			key := Key(c.Name, sc.Name)
			owner := fmt.Sprintf("%q/%q", c.Name, sc.Name)
			if first, dup := owners[key]; dup {
				warnings = append(warnings, fmt.Sprintf("selection key %q of %s collides with %s; the first definition is used", key, owner, first))
				continue
			}
			owners[key] = owner
		}
	}
	return warnings
}

func decodeSubCategories(dec *json.Decoder, main string, warnings *[]string) ([]SubCategory, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object of sub-categories, got %v", tok)
	}

	var subs []SubCategory
	index := make(map[string]int)
	err = decodeObjectBody(dec, func(name string) error {
		var choices []Choice
		if err := dec.Decode(&choices); err != nil {
			return fmt.Errorf("sub-category %q: %w", name, err)
		}
		if i, dup := index[name]; dup {
			*warnings = append(*warnings, fmt.Sprintf("duplicate sub-category %q in %q; last definition wins", name, main))
			subs[i].Choices = choices
			return nil
		}
		index[name] = len(subs)
		subs = append(subs, SubCategory{Name: name, Choices: choices})
		return nil
	})
	return subs, err
}

// decodeObjectBody walks the members of an object whose opening brace has
// already been consumed, calling fn with the decoder positioned on each value.
func decodeObjectBody(dec *json.Decoder, fn func(key string) error) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	_, err := dec.Token() // closing brace
	return err
}
