package archway

import (
	"fmt"
	"strings"
)

// NameResolver maps a registered component's handle to the name it was
// registered under, and back. The world's component registry satisfies
// this, but TypeToExpr/TypeFromExpr take it as an explicit parameter so
// they stay pure functions of (type, name table), the same shape the
// signature-text parser uses.
type NameResolver interface {
	NameOf(id Handle) (string, bool)
	HandleOf(name string) (Handle, bool)
}

// worldNames adapts a *World's component registry to NameResolver.
type worldNames struct{ w *World }

func (n worldNames) NameOf(id Handle) (string, bool) {
	info, ok := n.w.components.byID(id)
	if !ok {
		return "", false
	}
	return info.name, true
}

func (n worldNames) HandleOf(name string) (Handle, bool) {
	info, ok := n.w.components.byNameLookup(name)
	if !ok {
		return 0, false
	}
	return info.handle, true
}

// Names returns a NameResolver backed by w's component registry.
func (w *World) Names() NameResolver { return worldNames{w} }

// TypeToExpr renders t as a comma-separated expression of registered
// names, the inverse of TypeFromExpr. Relation ids render as
// "INSTANCEOF|target" / "CHILDOF|target" using the raw target handle,
// since relation targets are not necessarily registered components.
func TypeToExpr(t Type, names NameResolver) (string, error) {
	var b strings.Builder
	for i, id := range t {
		if i > 0 {
			b.WriteByte(',')
		}
		switch {
		case id.IsInstanceOf():
			fmt.Fprintf(&b, "INSTANCEOF|%d", uint64(id.Target()))
		case id.IsChildOf():
			fmt.Fprintf(&b, "CHILDOF|%d", uint64(id.Target()))
		default:
			name, ok := names.NameOf(id)
			if !ok {
				return "", fmt.Errorf("archway: type contains unregistered component id %d", uint64(id))
			}
			b.WriteString(name)
		}
	}
	return b.String(), nil
}

// TypeFromExpr parses the inverse of TypeToExpr, producing a
// sort-deduped Type ready for archetypeGraph.FindOrCreate.
func TypeFromExpr(expr string, names NameResolver) (Type, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	parts := strings.Split(expr, ",")
	ids := make([]Handle, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("archway: empty element in type expression %q", expr)
		}
		if rel, target, ok := strings.Cut(part, "|"); ok {
			targetID, err := parseTargetHandle(target)
			if err != nil {
				return nil, err
			}
			switch strings.ToUpper(rel) {
			case "INSTANCEOF":
				ids = append(ids, InstanceOf(targetID))
			case "CHILDOF":
				ids = append(ids, ChildOf(targetID))
			default:
				return nil, fmt.Errorf("archway: unknown relation %q in type expression", rel)
			}
			continue
		}
		id, ok := names.HandleOf(part)
		if !ok {
			return nil, fmt.Errorf("archway: unknown component name %q in type expression", part)
		}
		ids = append(ids, id)
	}
	return NewType(ids...), nil
}

func parseTargetHandle(s string) (Handle, error) {
	var v uint64
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return 0, fmt.Errorf("archway: invalid relation target %q", s)
	}
	return Handle(v), nil
}
