package profilerefresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"
)

// Dispatcher starts one workflow per batch. The workflow id is bucketed by hour so a retried
// tick never doubles up on the same batch.
type Dispatcher struct {
	tc        temporalsdkclient.Client
	taskQueue string
	now       func() time.Time
}

func NewDispatcher(tc temporalsdkclient.Client, taskQueue string) *Dispatcher {
	return &Dispatcher{tc: tc, taskQueue: taskQueue, now: time.Now}
}

func (d *Dispatcher) DispatchRefresh(ctx context.Context, userIDs []uuid.UUID, force bool) error {
	if d == nil || d.tc == nil {
		return fmt.Errorf("profilerefresh: temporal client not configured")
	}
	in := Input{UserIDs: make([]string, 0, len(userIDs)), Force: force}
	for _, id := range userIDs {
		in.UserIDs = append(in.UserIDs, id.String())
	}
	opts := temporalsdkclient.StartWorkflowOptions{
		ID:                    WorkflowID(d.now()),
		TaskQueue:             d.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,

		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	_, err := d.tc.ExecuteWorkflow(ctx, opts, WorkflowName, in)
	var already *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &already) {
		return nil
	}
	return err
}

func WorkflowID(at time.Time) string {
	return WorkflowName + ":" + at.UTC().Truncate(time.Hour).Format("2006-01-02T15")
}
