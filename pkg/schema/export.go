package schema

import "sort"

// SnapshotEntry is the serializable projection of one element schema.
type SnapshotEntry struct {
	Content  bool                  `json:"content"`
	Children bool                  `json:"children"`
	Props    map[string]PropSchema `json:"props,omitempty"`
}

// RegistrySnapshot is a read-only projection of the registry intended for
// external tooling (editors, documentation generators). It is not a
// mutation surface: maps are copied on every call.
type RegistrySnapshot struct {
	Elements     map[string]SnapshotEntry `json:"elements"`
	OverlayProps map[string]PropSchema    `json:"overlayProps"`
}

// Snapshot builds a fresh RegistrySnapshot.
func Snapshot() RegistrySnapshot {
	out := RegistrySnapshot{
		Elements:     make(map[string]SnapshotEntry, len(elements)),
		OverlayProps: copyProps(overlayProps),
	}
	for name, s := range elements {
		out.Elements[name] = SnapshotEntry{
			Content:  s.AcceptsContent,
			Children: s.AcceptsChildren,
			Props:    copyProps(s.Props),
		}
	}
	return out
}

// ElementNames returns the registered element names in sorted order.
func ElementNames() []string {
	names := make([]string, 0, len(elements))
	for name := range elements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func copyProps(props map[string]PropSchema) map[string]PropSchema {
	if props == nil {
		return nil
	}
	out := make(map[string]PropSchema, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
