package toon

// arrayFormat is the rendering chosen for a sequence.
type arrayFormat uint8

const (
	formatEmpty   arrayFormat = iota // [0]:
	formatInline                     // [N]: a,b,c
	formatTabular                    // [N]{f1,f2}: then one row per item
	formatList                       // [N]: then one "- " item per element
)

func (f arrayFormat) String() string {
	switch f {
	case formatEmpty:
		return "empty"
	case formatInline:
		return "inline"
	case formatTabular:
		return "tabular"
	case formatList:
		return "list"
	default:
		return "unknown"
	}
}

// chooseFormat picks the rendering for items. The first matching rule
// wins: empty, all scalars, uniform mappings of scalars, then list. For
// tabular it also returns the shared field names.
func chooseFormat(items []*Value) (arrayFormat, []string) {
	if len(items) == 0 {
		return formatEmpty, nil
	}
	if allScalar(items) {
		return formatInline, nil
	}
	if fields, ok := tabularFields(items); ok {
		return formatTabular, fields
	}
	return formatList, nil
}

func allScalar(items []*Value) bool {
	for _, it := range items {
		if !it.IsScalar() {
			return false
		}
	}
	return true
}

// tabularFields reports whether every item is a non-empty mapping with the
// same keys in the same order and only scalar values.
func tabularFields(items []*Value) ([]string, bool) {
	first := items[0]
	if first.Kind() != KindMapping || len(first.mapVal) == 0 {
		return nil, false
	}
	fields := first.Keys()
	for _, it := range items {
		if it.Kind() != KindMapping || len(it.mapVal) != len(fields) {
			return nil, false
		}
		for i, e := range it.mapVal {
			if e.Key != fields[i] || !e.Value.IsScalar() {
				return nil, false
			}
		}
	}
	return fields, true
}

// tabularRow renders one item's values in field order.
func tabularRow(item *Value, delim rune) string {
	cells := make([]string, len(item.mapVal))
	for i, e := range item.mapVal {
		cells[i] = encodePrimitive(e.Value, delim)
	}
	return joinValues(cells, delim)
}

// inlineValues renders all-scalar items joined by the delimiter.
func inlineValues(items []*Value, delim rune) string {
	cells := make([]string, len(items))
	for i, it := range items {
		cells[i] = encodePrimitive(it, delim)
	}
	return joinValues(cells, delim)
}
