package temporal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	workflowpb "go.temporal.io/api/workflow/v1"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
	"go.uber.org/zap"

	"github.com/clintrovert/firstissue/internal/temporal/workflows"
	"github.com/clintrovert/firstissue/pkg/types"
)

func describeResponse(status enumspb.WorkflowExecutionStatus) *workflowservice.DescribeWorkflowExecutionResponse {
	return &workflowservice.DescribeWorkflowExecutionResponse{
		WorkflowExecutionInfo: &workflowpb.WorkflowExecutionInfo{Status: status},
	}
}

func TestClient_StartCuration(t *testing.T) {
	sdk := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	run.On("GetID").Return("curation-abc")
	run.On("GetRunID").Return("run-1")

	input := workflows.CurationInput{Languages: []string{"go"}, MaxCurated: 5, Workers: 2}
	sdk.On("ExecuteWorkflow", mock.Anything, mock.MatchedBy(func(opts client.StartWorkflowOptions) bool {
		return strings.HasPrefix(opts.ID, "curation-") && opts.TaskQueue == "curation-queue"
	}), mock.Anything, input).Return(run, nil)

	c := NewClientWithSDK(sdk, "curation-queue", zap.NewNop())
	id, err := c.StartCuration(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "curation-abc", id)
	sdk.AssertExpectations(t)
}

func TestClient_StartCuration_Error(t *testing.T) {
	sdk := &mocks.Client{}
	sdk.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("unavailable"))

	c := NewClientWithSDK(sdk, "q", zap.NewNop())
	_, err := c.StartCuration(context.Background(), workflows.CurationInput{Languages: []string{"go"}})
	assert.ErrorContains(t, err, "failed to start workflow")
}

func TestClient_GetCuration_Running(t *testing.T) {
	sdk := &mocks.Client{}
	sdk.On("DescribeWorkflowExecution", mock.Anything, "curation-1", "").
		Return(describeResponse(enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING), nil)

	c := NewClientWithSDK(sdk, "q", zap.NewNop())
	status, err := c.GetCuration(context.Background(), "curation-1")
	require.NoError(t, err)
	assert.Equal(t, &CurationStatus{WorkflowID: "curation-1", Status: "running"}, status)
	sdk.AssertNotCalled(t, "GetWorkflow", mock.Anything, mock.Anything, mock.Anything)
}

func TestClient_GetCuration_Completed(t *testing.T) {
	want := workflows.CurationOutput{
		Issues: []types.CuratedIssue{{Title: "Fix typo", RepoName: "acme/widgets"}},
		Stats:  workflows.CurationStats{IssuesFound: 1, Attempted: 1, Curated: 1},
	}

	run := &mocks.WorkflowRun{}
	run.On("Get", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		*args.Get(1).(*workflows.CurationOutput) = want
	}).Return(nil)

	sdk := &mocks.Client{}
	sdk.On("DescribeWorkflowExecution", mock.Anything, "curation-2", "").
		Return(describeResponse(enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED), nil)
	sdk.On("GetWorkflow", mock.Anything, "curation-2", "").Return(run)

	c := NewClientWithSDK(sdk, "q", zap.NewNop())
	status, err := c.GetCuration(context.Background(), "curation-2")
	require.NoError(t, err)
	assert.Equal(t, "completed", status.Status)
	require.NotNil(t, status.Result)
	assert.Equal(t, want, *status.Result)
}

func TestClient_GetCuration_NotFound(t *testing.T) {
	sdk := &mocks.Client{}
	sdk.On("DescribeWorkflowExecution", mock.Anything, "missing", "").
		Return(nil, serviceerror.NewNotFound("workflow not found"))

	c := NewClientWithSDK(sdk, "q", zap.NewNop())
	_, err := c.GetCuration(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCurationNotFound)
}

func TestStatusName(t *testing.T) {
	assert.Equal(t, "failed", statusName(enumspb.WORKFLOW_EXECUTION_STATUS_FAILED))
	assert.Equal(t, "timed_out", statusName(enumspb.WORKFLOW_EXECUTION_STATUS_TIMED_OUT))
	assert.Equal(t, "unknown", statusName(enumspb.WORKFLOW_EXECUTION_STATUS_UNSPECIFIED))
}
