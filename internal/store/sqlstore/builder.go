// Package sqlstore executes listing predicates against MySQL.
package sqlstore

import (
	"fmt"
	"regexp"
	"strings"

	"inkwell/internal/domain"
	"inkwell/internal/listing"
)

var identRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// buildWhere renders a predicate tree as a WHERE clause with `?` args.
// An empty tree yields an empty clause (match all). Unsupported operators
// and malformed field names surface as validation errors so the caller can
// reject the request instead of returning a misleading empty page.
func buildWhere(p listing.Predicate) (string, []any, error) {
	if p.IsEmpty() {
		return "", nil, nil
	}
	expr, args, err := renderNode(p)
	if err != nil {
		return "", nil, err
	}
	return " WHERE " + expr, args, nil
}

func renderNode(p listing.Predicate) (string, []any, error) {
	switch {
	case p.Cond != nil:
		return renderCond(*p.Cond)
	case len(p.All) > 0:
		return renderGroup(p.All, " AND ")
	case len(p.Any) > 0:
		return renderGroup(p.Any, " OR ")
	default:
		return "", nil, domain.ValidationError{Msg: "empty predicate node"}
	}
}

func renderGroup(nodes []listing.Predicate, sep string) (string, []any, error) {
	parts := make([]string, 0, len(nodes))
	var args []any
	for _, n := range nodes {
		expr, a, err := renderNode(n)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, expr)
		args = append(args, a...)
	}
	if len(parts) == 1 {
		return parts[0], args, nil
	}
	return "(" + strings.Join(parts, sep) + ")", args, nil
}

func renderCond(c listing.Condition) (string, []any, error) {
	if !identRe.MatchString(c.Field) {
		return "", nil, domain.ValidationError{Field: c.Field, Msg: "unknown filter field"}
	}

	switch c.Op {
	case listing.OpEquals:
		return c.Field + " = ?", []any{c.Text}, nil
	case listing.OpContains:
		return "LOWER(" + c.Field + ") LIKE ?", []any{"%" + strings.ToLower(c.Text) + "%"}, nil
	case listing.OpRange:
		var parts []string
		var args []any
		if c.Bounds.Min != nil {
			parts = append(parts, c.Field+" >= ?")
			args = append(args, *c.Bounds.Min)
		}
		if c.Bounds.Max != nil {
			parts = append(parts, c.Field+" <= ?")
			args = append(args, *c.Bounds.Max)
		}
		if len(parts) == 0 {
			return "", nil, domain.ValidationError{Field: c.Field, Msg: "range filter without bounds"}
		}
		if len(parts) == 1 {
			return parts[0], args, nil
		}
		return "(" + strings.Join(parts, " AND ") + ")", args, nil
	case listing.OpIn:
		if len(c.Values) == 0 {
			return "", nil, domain.ValidationError{Field: c.Field, Msg: "membership filter without values"}
		}
		args := make([]any, 0, len(c.Values))
		marks := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			marks = append(marks, "?")
			args = append(args, v)
		}
		return c.Field + " IN (" + strings.Join(marks, ",") + ")", args, nil
	default:
		return "", nil, domain.ValidationError{Field: c.Field, Msg: fmt.Sprintf("unsupported filter operator %q", c.Op)}
	}
}

// orderBy renders the sort clause; an unset field falls back to newest-first.
func orderBy(s listing.Sort) (string, error) {
	if s.Field == "" {
		return " ORDER BY id DESC", nil
	}
	if !identRe.MatchString(s.Field) {
		return "", domain.ValidationError{Field: s.Field, Msg: "unknown sort field"}
	}
	dir := " ASC"
	if s.Desc {
		dir = " DESC"
	}
	return " ORDER BY " + s.Field + dir, nil
}
