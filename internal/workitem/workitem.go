package workitem

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Well-known field reference names.
const (
	FieldID            = "System.Id"
	FieldTitle         = "System.Title"
	FieldType          = "System.WorkItemType"
	FieldState         = "System.State"
	FieldParent        = "System.Parent"
	FieldAssignedTo    = "System.AssignedTo"
	FieldIterationPath = "System.IterationPath"
	FieldAreaPath      = "System.AreaPath"
)

// Synthetic fields written by enrichment.
const (
	FieldParentRef     = "Parent"
	FieldInitialSprint = "Initial Sprint"
	parentTypePrefix   = "Parent "
)

// Relation kinds for the parent/child hierarchy.
const (
	RelHierarchyForward = "System.LinkTypes.Hierarchy-Forward" // child
	RelHierarchyReverse = "System.LinkTypes.Hierarchy-Reverse" // parent
)

// ErrInvalid is returned when a decoded work item fails validation.
var ErrInvalid = errors.New("invalid work item")

// WorkItem is a single card as returned by the backend.
type WorkItem struct {
	ID        int        `json:"id"`
	Rev       int        `json:"rev,omitempty"`
	Fields    Fields     `json:"fields"`
	Relations []Relation `json:"relations,omitempty"`
	URL       string     `json:"url,omitempty"`
}

// Relation links a work item to another resource.
type Relation struct {
	Rel        string         `json:"rel"`
	URL        string         `json:"url"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Ref is the {Id, Title} pair stored in synthetic parent fields.
type Ref struct {
	ID    int    `json:"Id"`
	Title string `json:"Title"`
}

// Identity is a backend user reference (System.AssignedTo and friends).
type Identity struct {
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName,omitempty"`
	ID          string `json:"id,omitempty"`
}

// FirstName returns the first word of the display name.
func (i Identity) FirstName() string {
	if f := strings.Fields(i.DisplayName); len(f) > 0 {
		return f[0]
	}
	return ""
}

// Validate checks the invariants every decoded work item must satisfy.
// It also normalises System.Parent to an int.
func (w *WorkItem) Validate() error {
	if w == nil {
		return fmt.Errorf("%w: nil", ErrInvalid)
	}
	if w.ID <= 0 {
		return fmt.Errorf("%w: id %d", ErrInvalid, w.ID)
	}
	if w.Fields == nil {
		return fmt.Errorf("%w: item %d has no fields", ErrInvalid, w.ID)
	}
	if raw, ok := w.Fields[FieldParent]; ok {
		if raw == nil {
			delete(w.Fields, FieldParent)
			return nil
		}
		id, ok := toInt(raw)
		if !ok {
			return fmt.Errorf("%w: item %d has non-numeric %s %v", ErrInvalid, w.ID, FieldParent, raw)
		}
		w.Fields[FieldParent] = id
	}
	return nil
}

// Clone returns a copy whose field map and relations can be modified
// without touching the original. Field values are shared.
func (w *WorkItem) Clone() *WorkItem {
	c := *w
	c.Fields = maps.Clone(w.Fields)
	if c.Fields == nil {
		c.Fields = Fields{}
	}
	if w.Relations != nil {
		c.Relations = make([]Relation, len(w.Relations))
		copy(c.Relations, w.Relations)
	}
	return &c
}

// Name returns the relation's attribute name ("Parent", "Child", ...).
func (r Relation) Name() string {
	if r.Attributes == nil {
		return ""
	}
	s, _ := r.Attributes["name"].(string)
	return s
}

// TargetID parses the work item id at the end of the relation URL.
func (r Relation) TargetID() (int, bool) {
	i := strings.LastIndex(r.URL, "/")
	if i < 0 || i == len(r.URL)-1 {
		return 0, false
	}
	id, err := strconv.Atoi(r.URL[i+1:])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (r Relation) isChild() bool {
	return r.Rel == RelHierarchyForward || r.Name() == "Child"
}

func (r Relation) isParent() bool {
	return r.Rel == RelHierarchyReverse || r.Name() == "Parent"
}

// ChildIDs returns the ids of all child relations, in relation order.
func (w *WorkItem) ChildIDs() []int {
	var ids []int
	for _, r := range w.Relations {
		if !r.isChild() {
			continue
		}
		if id, ok := r.TargetID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// ParentIDFromRelations returns the parent id taken from the relation list.
// Used when System.Parent is absent from a field-restricted fetch.
func (w *WorkItem) ParentIDFromRelations() (int, bool) {
	for _, r := range w.Relations {
		if r.isParent() {
			return r.TargetID()
		}
	}
	return 0, false
}

// Fields is the work item field bag.
type Fields map[string]any

// String returns a string field, or "" when absent or not a string.
func (f Fields) String(key string) string {
	s, _ := f[key].(string)
	return s
}

func (f Fields) Title() string         { return f.String(FieldTitle) }
func (f Fields) Type() string          { return f.String(FieldType) }
func (f Fields) State() string         { return f.String(FieldState) }
func (f Fields) IterationPath() string { return f.String(FieldIterationPath) }
func (f Fields) AreaPath() string      { return f.String(FieldAreaPath) }
func (f Fields) InitialSprint() string { return f.String(FieldInitialSprint) }

// Parent returns the System.Parent id.
func (f Fields) Parent() (int, bool) {
	raw, ok := f[FieldParent]
	if !ok || raw == nil {
		return 0, false
	}
	id, ok := toInt(raw)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// AssignedTo decodes System.AssignedTo. Older API versions send a plain
// "Name <email>" string instead of an identity object.
func (f Fields) AssignedTo() (Identity, bool) {
	switch v := f[FieldAssignedTo].(type) {
	case map[string]any:
		var id Identity
		id.DisplayName, _ = v["displayName"].(string)
		id.UniqueName, _ = v["uniqueName"].(string)
		id.ID, _ = v["id"].(string)
		return id, id.DisplayName != ""
	case Identity:
		return v, v.DisplayName != ""
	case string:
		name := strings.TrimSpace(v)
		if i := strings.Index(name, "<"); i > 0 {
			name = strings.TrimSpace(name[:i])
		}
		return Identity{DisplayName: name}, name != ""
	}
	return Identity{}, false
}

// Ref reads a synthetic {Id, Title} field.
func (f Fields) Ref(key string) (Ref, bool) {
	switch v := f[key].(type) {
	case Ref:
		return v, true
	case map[string]any:
		id, _ := toInt(v["Id"])
		title, _ := v["Title"].(string)
		return Ref{ID: id, Title: title}, id > 0
	}
	return Ref{}, false
}

// SetParentRef records an ancestor of the given work item type.
func (f Fields) SetParentRef(workItemType string, ref Ref) {
	f[ParentTypeKey(workItemType)] = ref
}

// ParentTypeKey returns the synthetic field name for an ancestor type,
// e.g. "Parent Feature".
func ParentTypeKey(workItemType string) string {
	return parentTypePrefix + workItemType
}

// SyntheticKeys returns the enrichment-added keys present in f, sorted.
func (f Fields) SyntheticKeys() []string {
	var keys []string
	for k := range f {
		if k == FieldParentRef || k == FieldInitialSprint || strings.HasPrefix(k, parentTypePrefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}
