package boards

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/raphi011/abt/internal/workitem"
)

// GetTeamIterations returns the team's sprints in backend order (oldest
// first). The result is never cached; membership changes between sessions.
func (c *Client) GetTeamIterations(ctx context.Context) ([]workitem.Sprint, error) {
	if c.team == "" {
		return nil, fmt.Errorf("list sprints: team is not configured")
	}

	var resp struct {
		Count int               `json:"count"`
		Value []workitem.Sprint `json:"value"`
	}
	err := c.do(ctx, request{
		op:     "list sprints",
		method: http.MethodGet,
		url:    c.teamURL("work/teamsettings/iterations"),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// GetIterationWorkItems returns the work item references scheduled in a
// sprint, in backend order.
func (c *Client) GetIterationWorkItems(ctx context.Context, sprintID string) ([]workitem.CardRef, error) {
	if sprintID == "" {
		return nil, fmt.Errorf("list sprint work items: empty sprint id")
	}

	var resp struct {
		WorkItemRelations []struct {
			Rel    string `json:"rel"`
			Source *struct {
				ID int `json:"id"`
			} `json:"source"`
			Target *struct {
				ID int `json:"id"`
			} `json:"target"`
		} `json:"workItemRelations"`
	}
	err := c.do(ctx, request{
		op:     fmt.Sprintf("list work items of sprint %s", sprintID),
		method: http.MethodGet,
		url:    c.teamURL("work/teamsettings/iterations/" + url.PathEscape(sprintID) + "/workitems"),
	}, &resp)
	if err != nil {
		return nil, err
	}

	refs := make([]workitem.CardRef, 0, len(resp.WorkItemRelations))
	for _, r := range resp.WorkItemRelations {
		if r.Target == nil || r.Target.ID <= 0 {
			continue
		}
		ref := workitem.CardRef{SprintID: sprintID, WorkItemID: r.Target.ID}
		if r.Source != nil {
			ref.ParentID = r.Source.ID
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
