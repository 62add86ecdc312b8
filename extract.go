package latexcalc

import (
	"fmt"
	"strings"

	"github.com/leo5358/latex-calc/symbolic"
)

// PlaceholderMap is the per-run symbol table binding placeholder keys to the
// matrices they stand for. Keys are TAG0, TAG1, ... in insertion order.
// Read methods are safe on a nil map.
type PlaceholderMap struct {
	tag    string
	keys   []string
	values map[string]*symbolic.Matrix
}

func NewPlaceholderMap(tag string) *PlaceholderMap {
	return &PlaceholderMap{tag: tag, values: make(map[string]*symbolic.Matrix)}
}

// uniqueTag extends base until it no longer occurs in text, so that no key
// can collide with anything the user wrote.
func uniqueTag(text, base string) string {
	tag := base
	for strings.Contains(text, tag) {
		tag += "X"
	}
	return tag
}

// Add records m under a fresh key and returns the key.
func (t *PlaceholderMap) Add(m *symbolic.Matrix) string {
	key := fmt.Sprintf("%s%d", t.tag, len(t.keys))
	t.keys = append(t.keys, key)
	t.values[key] = m
	return key
}

func (t *PlaceholderMap) Lookup(key string) (*symbolic.Matrix, bool) {
	if t == nil {
		return nil, false
	}
	m, ok := t.values[key]
	return m, ok
}

func (t *PlaceholderMap) Keys() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.keys...)
}

// Symbols lists the keys as opaque names for a parser's symbol table.
func (t *PlaceholderMap) Symbols() []string { return t.Keys() }

func (t *PlaceholderMap) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

func (t *PlaceholderMap) Tag() string {
	if t == nil {
		return ""
	}
	return t.tag
}

// ExtractMatrices replaces every matrix environment in text with a padded
// placeholder key and records the parsed matrix in table. Cells are parsed
// with b. Unbalanced, mismatched or nested environments, ragged rows and
// unparseable cells all fail with ErrMatrixStructure.
func ExtractMatrices(text string, table *PlaceholderMap, b *Builder) (string, error) {
	var sb strings.Builder
	rest := text
	for {
		open := matrixMarker.FindStringSubmatchIndex(rest)
		if open == nil {
			sb.WriteString(rest)
			return sb.String(), nil
		}
		kind, name := rest[open[2]:open[3]], rest[open[4]:open[5]]
		if kind == "end" {
			return "", fmt.Errorf("%w: \\end{%s} without \\begin", ErrMatrixStructure, name)
		}

		body := rest[open[1]:]
		closing := matrixMarker.FindStringSubmatchIndex(body)
		switch {
		case closing == nil:
			return "", fmt.Errorf("%w: \\begin{%s} is never closed", ErrMatrixStructure, name)
		case body[closing[2]:closing[3]] == "begin":
			return "", fmt.Errorf("%w: nested matrix inside %s", ErrMatrixStructure, name)
		case body[closing[4]:closing[5]] != name:
			return "", fmt.Errorf("%w: \\begin{%s} closed by \\end{%s}", ErrMatrixStructure, name, body[closing[4]:closing[5]])
		}

		m, err := buildMatrix(body[:closing[0]], b)
		if err != nil {
			return "", err
		}
		sb.WriteString(rest[:open[0]])
		sb.WriteString(" " + table.Add(m) + " ")
		rest = body[closing[1]:]
	}
}

func buildMatrix(interior string, b *Builder) (*symbolic.Matrix, error) {
	rawRows := strings.Split(interior, `\\`)
	var rows [][]symbolic.Expr
	for _, raw := range rawRows {
		if loc := breakSpacing.FindStringIndex(raw); loc != nil {
			raw = raw[loc[1]:]
		}
		raw = strings.TrimSpace(strings.ReplaceAll(raw, `\hline`, ""))
		cells := strings.Split(raw, "&")
		row := make([]symbolic.Expr, len(cells))
		for i, cell := range cells {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				row[i] = symbolic.N(0)
				continue
			}
			e, _, err := b.Build(cell, nil)
			if err != nil {
				return nil, fmt.Errorf("%w: cell %q: %w", ErrMatrixStructure, cell, err)
			}
			row[i] = e
		}
		if raw == "" {
			row = nil
		}
		rows = append(rows, row)
	}
	for len(rows) > 0 && rows[len(rows)-1] == nil {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrMatrixStructure)
	}
	for i, row := range rows {
		if row == nil {
			rows[i] = []symbolic.Expr{symbolic.N(0)}
		}
	}
	m, err := symbolic.MatrixFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMatrixStructure, err)
	}
	return m, nil
}
