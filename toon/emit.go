package toon

// ============================================================
// Encoding
// ============================================================

// Encode renders v as a TOON document. The output has no trailing newline
// and no line ends in whitespace. An empty root mapping renders as "".
func Encode(v *Value, cfg Config) (string, error) {
	cfg, err := cfg.resolve()
	if err != nil {
		return "", err
	}
	e := &encoder{cfg: cfg, w: newLineWriter(cfg.Indent)}
	if err := e.root(v); err != nil {
		return "", err
	}
	return e.w.String(), nil
}

// Marshal normalizes in and encodes the result.
func Marshal(in any, cfg Config) (string, error) {
	v, err := NormalizeWithOptions(in, NormalizeOptions{MaxDepth: cfg.withDefaults().MaxDepth})
	if err != nil {
		return "", err
	}
	return Encode(v, cfg)
}

type encoder struct {
	cfg  Config
	w    *lineWriter
	nest int
}

// enter records one more level of container nesting.
func (e *encoder) enter() error {
	e.nest++
	if e.nest > e.cfg.MaxDepth {
		return &DepthExceededError{Limit: e.cfg.MaxDepth}
	}
	return nil
}

func (e *encoder) leave() { e.nest-- }

func (e *encoder) key(k string) string {
	return encodeKey(k, e.cfg.Delimiter)
}

func (e *encoder) root(v *Value) error {
	switch v.Kind() {
	case KindMapping:
		if err := e.enter(); err != nil {
			return err
		}
		defer e.leave()
		return e.fields(v.mapVal, 0)
	case KindSequence:
		return e.sequence("", "", v.seqVal, 0, 1)
	default:
		e.w.push(0, encodePrimitive(v, e.cfg.Delimiter))
		return nil
	}
}

// fields renders mapping entries as sibling lines at depth.
func (e *encoder) fields(entries []Entry, depth int) error {
	for _, ent := range entries {
		if err := e.field(e.key(ent.Key), ent.Value, depth); err != nil {
			return err
		}
	}
	return nil
}

// field renders one key and its value starting at depth.
func (e *encoder) field(key string, v *Value, depth int) error {
	switch v.Kind() {
	case KindMapping:
		e.w.push(depth, key+":")
		return e.nested(v, depth+1)
	case KindSequence:
		return e.sequence("", key, v.seqVal, depth, depth+1)
	default:
		e.w.push(depth, key+": "+encodePrimitive(v, e.cfg.Delimiter))
		return nil
	}
}

// nested renders the entries of a mapping that hangs off a key line.
func (e *encoder) nested(v *Value, depth int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	return e.fields(v.mapVal, depth)
}

// sequence writes prefix+key+header at depth and the body at bodyDepth.
func (e *encoder) sequence(prefix, key string, items []*Value, depth, bodyDepth int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()

	delim := e.cfg.Delimiter
	format, fields := chooseFormat(items)
	switch format {
	case formatEmpty:
		e.w.push(depth, prefix+formatHeader(key, 0, nil, e.cfg))
	case formatInline:
		e.w.push(depth, prefix+formatHeader(key, len(items), nil, e.cfg)+" "+inlineValues(items, delim))
	case formatTabular:
		// rows are mappings one level further in
		if err := e.enter(); err != nil {
			return err
		}
		e.leave()
		e.w.push(depth, prefix+formatHeader(key, len(items), fields, e.cfg))
		for _, it := range items {
			e.w.push(bodyDepth, tabularRow(it, delim))
		}
	case formatList:
		e.w.push(depth, prefix+formatHeader(key, len(items), nil, e.cfg))
		for _, it := range items {
			if err := e.listItem(it, bodyDepth); err != nil {
				return err
			}
		}
	}
	return nil
}

const listPrefix = "- "

// listItem renders one element of a list-format sequence. A mapping puts
// its first field on the hyphen line and the rest one level deeper; the
// first field's own children go two levels deeper.
func (e *encoder) listItem(v *Value, depth int) error {
	switch v.Kind() {
	case KindSequence:
		return e.sequence(listPrefix, "", v.seqVal, depth, depth+1)
	case KindMapping:
		if err := e.enter(); err != nil {
			return err
		}
		defer e.leave()
		if len(v.mapVal) == 0 {
			e.w.push(depth, "-")
			return nil
		}

		first := v.mapVal[0]
		key := e.key(first.Key)
		switch first.Value.Kind() {
		case KindMapping:
			e.w.push(depth, listPrefix+key+":")
			if err := e.nested(first.Value, depth+2); err != nil {
				return err
			}
		case KindSequence:
			if err := e.sequence(listPrefix, key, first.Value.seqVal, depth, depth+2); err != nil {
				return err
			}
		default:
			e.w.push(depth, listPrefix+key+": "+encodePrimitive(first.Value, e.cfg.Delimiter))
		}
		return e.fields(v.mapVal[1:], depth+1)
	default:
		e.w.push(depth, listPrefix+encodePrimitive(v, e.cfg.Delimiter))
		return nil
	}
}
