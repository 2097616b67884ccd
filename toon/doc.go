// Package toon implements TOON, a line-oriented text encoding of JSON-like
// data tuned for low token counts in LLM prompts.
//
// TOON is designed to be:
//   - Token-cheap (no braces around objects, minimal quoting)
//   - Human-readable (indentation carries structure, like YAML)
//   - Deterministic (one canonical rendering per value and configuration)
//   - Round-trippable to JSON for everything but a few documented corners
//
// # Data Model
//
// Every document is a tree of *Value:
//
//	null, bool, number, string      scalars
//	sequence                        ordered list of values
//	mapping                         ordered, unique-keyed entries
//
// Numbers are kept as canonical decimal text, so integers of any size and
// decimals survive a round trip unchanged.
//
// # Syntax
//
// Mappings are key: value lines; nested containers indent one unit deeper:
//
//	id: 123
//	user:
//	  name: Ada
//	  active: true
//
// Sequences have three renderings, chosen by content:
//
//	tags[3]: a,b,c                  all scalars, inline
//	items[2]{sku,qty}:              uniform mappings of scalars, tabular
//	  A1,2
//	  B2,1
//	mixed[2]:                       anything else, one "- " item per element
//	  - id: 1
//	  - [2]: x,y
//
// Strings are bare unless they could be misread (empty, padded, keyword-
// or number-like, or containing structural characters), in which case they
// are double-quoted with JSON-style escapes.
//
// # Usage
//
//	text, err := toon.Marshal(data, toon.DefaultConfig())
//	v, err := toon.Decode(text, toon.DefaultConfig())
//
// The delimiter, length marker and indent unit are set through Config and
// are passed explicitly to every call; the package holds no global state.
package toon
