package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

type activityAdapter struct {
	container mono.ServiceContainer
}

// NewActivityAdapter creates an ActivityPort from the activity module's
// ServiceContainer.
func NewActivityAdapter(container mono.ServiceContainer) ActivityPort {
	if container == nil {
		panic("activity adapter requires non-nil ServiceContainer")
	}
	return &activityAdapter{container: container}
}

// Recent fetches the newest entries via the recent service.
func (a *activityAdapter) Recent(ctx context.Context, limit int) (*RecentResponse, error) {
	var resp RecentResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"recent",
		json.Marshal,
		json.Unmarshal,
		&RecentRequest{Limit: limit},
		&resp,
	); err != nil {
		return nil, fmt.Errorf("recent service call failed: %w", err)
	}
	return &resp, nil
}
