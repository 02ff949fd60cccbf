package boards

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/raphi011/abt/internal/workitem"
)

// MaxBatchSize is the backend's per-call id limit for batched retrieval.
const MaxBatchSize = 200

// Expand selects which optional parts of a work item the backend returns.
type Expand string

const (
	ExpandNone      Expand = ""
	ExpandRelations Expand = "relations"
	ExpandFields    Expand = "fields"
	ExpandLinks     Expand = "links"
	ExpandAll       Expand = "all"
)

// String returns the expand mode as used in cache keys and logs.
func (e Expand) String() string {
	if e == ExpandNone {
		return "none"
	}
	return string(e)
}

// allowsFields reports whether the backend accepts a field list together
// with this expand mode.
func (e Expand) allowsFields() bool {
	return e == ExpandNone || e == ExpandLinks
}

// Op is a single JSON patch operation.
type Op struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// GetWorkItem fetches one work item.
func (c *Client) GetWorkItem(ctx context.Context, id int, expand Expand) (*workitem.WorkItem, error) {
	q := url.Values{}
	if expand != ExpandNone {
		q.Set("$expand", string(expand))
	}

	var w workitem.WorkItem
	err := c.do(ctx, request{
		op:     fmt.Sprintf("get work item %d", id),
		method: http.MethodGet,
		url:    c.projectURL("wit/workitems/" + strconv.Itoa(id)),
		query:  q,
	}, &w)
	if err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("get work item %d: %w", id, err)
	}
	return &w, nil
}

// GetWorkItemsBatch fetches up to MaxBatchSize work items in one call.
// The result order is unspecified and ids that no longer exist are
// omitted; callers must re-associate by id.
func (c *Client) GetWorkItemsBatch(ctx context.Context, ids []int, fields []string, expand Expand) ([]*workitem.WorkItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxBatchSize {
		return nil, fmt.Errorf("get work items batch: %w: %d > %d", errBatchTooLarge, len(ids), MaxBatchSize)
	}
	if len(fields) > 0 && !expand.allowsFields() {
		return nil, fmt.Errorf("get work items batch: fields cannot be combined with expand=%s", expand)
	}

	body := struct {
		IDs         []int    `json:"ids"`
		Fields      []string `json:"fields,omitempty"`
		Expand      string   `json:"$expand,omitempty"`
		ErrorPolicy string   `json:"errorPolicy"`
	}{
		IDs:         ids,
		Fields:      fields,
		Expand:      string(expand),
		ErrorPolicy: "omit",
	}

	var resp struct {
		Count int                  `json:"count"`
		Value []*workitem.WorkItem `json:"value"`
	}
	err := c.do(ctx, request{
		op:     fmt.Sprintf("get work items batch (%d ids)", len(ids)),
		method: http.MethodPost,
		url:    c.projectURL("wit/workitemsbatch"),
		body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}

	items := make([]*workitem.WorkItem, 0, len(resp.Value))
	for _, w := range resp.Value {
		// errorPolicy=omit yields null entries for missing ids
		if w == nil {
			continue
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("get work items batch: %w", err)
		}
		items = append(items, w)
	}
	return items, nil
}

// UpdateWorkItemField replaces a single field with a JSON patch and returns
// the updated work item. fieldPath is a reference name like "System.State".
func (c *Client) UpdateWorkItemField(ctx context.Context, id int, fieldPath string, value any) (*workitem.WorkItem, error) {
	fieldPath = strings.TrimPrefix(fieldPath, "/fields/")
	if fieldPath == "" {
		return nil, fmt.Errorf("update work item %d: empty field path", id)
	}

	ops := []Op{{Op: "replace", Path: "/fields/" + fieldPath, Value: value}}

	var w workitem.WorkItem
	err := c.do(ctx, request{
		op:          fmt.Sprintf("update work item %d field %s", id, fieldPath),
		method:      http.MethodPatch,
		url:         c.projectURL("wit/workitems/" + strconv.Itoa(id)),
		body:        ops,
		contentType: "application/json-patch+json",
	}, &w)
	if err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("update work item %d: %w", id, err)
	}
	return &w, nil
}

// QueryByWIQL runs a WIQL query in the team's context and returns the
// matching ids in result order.
func (c *Client) QueryByWIQL(ctx context.Context, query string) ([]int, error) {
	var resp struct {
		WorkItems []struct {
			ID int `json:"id"`
		} `json:"workItems"`
	}
	err := c.do(ctx, request{
		op:     "query work items",
		method: http.MethodPost,
		url:    c.teamURL("wit/wiql"),
		body:   map[string]string{"query": query},
	}, &resp)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(resp.WorkItems))
	for _, w := range resp.WorkItems {
		ids = append(ids, w.ID)
	}
	return ids, nil
}

// Chunk splits ids into consecutive slices of at most size elements.
func Chunk(ids []int, size int) [][]int {
	if size <= 0 {
		size = MaxBatchSize
	}
	var chunks [][]int
	for len(ids) > 0 {
		n := min(size, len(ids))
		chunks = append(chunks, ids[:n:n])
		ids = ids[n:]
	}
	return chunks
}
