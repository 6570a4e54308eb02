package selection

// NoSelectionLabel is the label of the synthetic first option of every widget
const NoSelectionLabel = "Clear selection"

// ElementKind distinguishes layout elements
type ElementKind int

const (
	// ElementHeader is a main category heading
	ElementHeader ElementKind = iota
	// ElementRow holds one or two widgets side by side
	ElementRow
)

// Option is one entry of a widget. The first option of every widget is the
// "no selection" option, which carries no payload.
type Option struct {
	Label   string
	Payload string
	None    bool
}

// Widget describes a single-choice selector for one sub-category
type Widget struct {
	Key      string
	Category string
	Label    string
	Options  []Option
}

// Element is one line of the rendered layout
type Element struct {
	Kind    ElementKind
	Title   string   // header text, set for ElementHeader
	Widgets []Widget // one or two widgets, set for ElementRow
}

// Layout is the ordered widget description produced from a catalog
type Layout []Element

// Key builds the selection key of a sub-category
func Key(category, subCategory string) string {
	return category + "-" + subCategory
}

// Render turns a catalog into a layout: a header per main category followed
// by its sub-category widgets paired two per row.
func Render(c *Catalog) Layout {
	if c == nil {
		return nil
	}

	var layout Layout
	for _, cat := range c.Categories {
		layout = append(layout, Element{Kind: ElementHeader, Title: cat.Name})

		for i := 0; i < len(cat.SubCategories); i += 2 {
			row := Element{Kind: ElementRow}
			end := min(i+2, len(cat.SubCategories))
			for _, sc := range cat.SubCategories[i:end] {
				row.Widgets = append(row.Widgets, newWidget(cat.Name, sc))
			}
			layout = append(layout, row)
		}
	}
	return layout
}

func newWidget(category string, sc SubCategory) Widget {
	opts := make([]Option, 0, len(sc.Choices)+1)
	opts = append(opts, Option{Label: NoSelectionLabel, None: true})
	for _, ch := range sc.Choices {
		opts = append(opts, Option{Label: ch.Name, Payload: ch.Prompt})
	}
	return Widget{
		Key:      Key(category, sc.Name),
		Category: category,
		Label:    sc.Name,
		Options:  opts,
	}
}

// Widgets flattens the layout into its widgets in display order
func (l Layout) Widgets() []Widget {
	var out []Widget
	for _, el := range l {
		if el.Kind == ElementRow {
			out = append(out, el.Widgets...)
		}
	}
	return out
}
