package temporal

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/clintrovert/firstissue/internal/temporal/workflows"
)

// ErrCurationNotFound is returned for unknown workflow IDs
var ErrCurationNotFound = errors.New("curation not found")

// CurationStatus describes a curation workflow and, once it has
// completed, its result
type CurationStatus struct {
	WorkflowID string                    `json:"workflow_id"`
	Status     string                    `json:"status"`
	Result     *workflows.CurationOutput `json:"result,omitempty"`
}

// Client wraps Temporal client functionality
type Client struct {
	temporalClient client.Client
	logger         *zap.Logger
	taskQueue      string
}

// NewClient creates a new Temporal client
func NewClient(address, namespace, taskQueue string, logger *zap.Logger) (*Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  address,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create temporal client: %w", err)
	}

	return NewClientWithSDK(c, taskQueue, logger), nil
}

// NewClientWithSDK wraps an existing SDK client
func NewClientWithSDK(c client.Client, taskQueue string, logger *zap.Logger) *Client {
	return &Client{
		temporalClient: c,
		logger:         logger,
		taskQueue:      taskQueue,
	}
}

// StartCuration starts a new curation workflow and returns its ID
func (c *Client) StartCuration(ctx context.Context, input workflows.CurationInput) (string, error) {
	workflowOptions := client.StartWorkflowOptions{
		ID:        "curation-" + uuid.NewString(),
		TaskQueue: c.taskQueue,
	}

	we, err := c.temporalClient.ExecuteWorkflow(ctx, workflowOptions, workflows.CurationWorkflow, input)
	if err != nil {
		return "", fmt.Errorf("failed to start workflow: %w", err)
	}

	c.logger.Info("started curation workflow",
		zap.String("workflow_id", we.GetID()),
		zap.String("run_id", we.GetRunID()),
		zap.Strings("languages", input.Languages),
	)

	return we.GetID(), nil
}

// GetCuration retrieves the status of a curation workflow
func (c *Client) GetCuration(ctx context.Context, workflowID string) (*CurationStatus, error) {
	resp, err := c.temporalClient.DescribeWorkflowExecution(ctx, workflowID, "")
	if err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", ErrCurationNotFound, workflowID)
		}
		return nil, fmt.Errorf("failed to describe workflow: %w", err)
	}

	status := resp.GetWorkflowExecutionInfo().GetStatus()
	result := &CurationStatus{
		WorkflowID: workflowID,
		Status:     statusName(status),
	}

	if status != enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED {
		return result, nil
	}

	var output workflows.CurationOutput
	if err := c.temporalClient.GetWorkflow(ctx, workflowID, "").Get(ctx, &output); err != nil {
		return nil, fmt.Errorf("failed to get workflow result: %w", err)
	}
	result.Result = &output

	return result, nil
}

// Close closes the Temporal client
func (c *Client) Close() {
	c.temporalClient.Close()
}

func statusName(status enumspb.WorkflowExecutionStatus) string {
	switch status {
	case enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING:
		return "running"
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		return "completed"
	case enumspb.WORKFLOW_EXECUTION_STATUS_FAILED:
		return "failed"
	case enumspb.WORKFLOW_EXECUTION_STATUS_CANCELED:
		return "canceled"
	case enumspb.WORKFLOW_EXECUTION_STATUS_TERMINATED:
		return "terminated"
	case enumspb.WORKFLOW_EXECUTION_STATUS_CONTINUED_AS_NEW:
		return "continued_as_new"
	case enumspb.WORKFLOW_EXECUTION_STATUS_TIMED_OUT:
		return "timed_out"
	default:
		return "unknown"
	}
}
