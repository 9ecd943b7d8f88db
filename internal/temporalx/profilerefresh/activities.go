package profilerefresh

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"

	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
	"github.com/yungbote/glucobridge-backend/internal/services"
)

// Refresher is the part of MetabolicProfileService the activity needs.
type Refresher interface {
	RefreshBatch(ctx context.Context, userIDs []uuid.UUID, force bool, trigger string) services.BatchResult
}

type Activities struct {
	Log      *logger.Logger
	Profiles Refresher
}

func (a *Activities) RefreshChunk(ctx context.Context, in ChunkInput) (Result, error) {
	var res Result
	if a == nil || a.Profiles == nil {
		return res, fmt.Errorf("profilerefresh: activity not configured")
	}
	ids := make([]uuid.UUID, 0, len(in.UserIDs))
	for _, raw := range in.UserIDs {
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			res.Invalid++
			continue
		}
		ids = append(ids, id)
	}
	activity.RecordHeartbeat(ctx, len(ids))
	res.BatchResult = a.Profiles.RefreshBatch(ctx, ids, in.Force, services.TriggerBatch)
	if a.Log != nil {
		a.Log.Info("Refreshed profile chunk",
			"users", len(ids),
			"refreshed", res.Refreshed,
			"cached", res.Cached,
			"failed", res.Failed,
			"invalid", res.Invalid,
		)
	}
	return res, nil
}
