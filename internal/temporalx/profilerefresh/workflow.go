package profilerefresh

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Workflow fans a batch of users out into chunk activities and sums their results.
func Workflow(ctx workflow.Context, in Input) (Result, error) {
	var out Result
	size := in.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	})

	var futures []workflow.Future
	for start := 0; start < len(in.UserIDs); start += size {
		end := min(start+size, len(in.UserIDs))
		chunk := ChunkInput{UserIDs: in.UserIDs[start:end], Force: in.Force}
		futures = append(futures, workflow.ExecuteActivity(ctx, ActivityRefreshChunk, chunk))
	}

	logger := workflow.GetLogger(ctx)
	for _, f := range futures {
		var r Result
		if err := f.Get(ctx, &r); err != nil {
			logger.Warn("profile refresh chunk failed", "error", err)
			out.Failed++
			continue
		}
		out.Refreshed += r.Refreshed
		out.Cached += r.Cached
		out.Failed += r.Failed
		out.Invalid += r.Invalid
	}
	out.Chunks = len(futures)
	return out, nil
}
