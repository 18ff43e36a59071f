package intent

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gadminbot/clients/gemini"
	"gadminbot/models"
	"gadminbot/testutils"
)

func newTestService(runtime *models.BotRuntime) (*IntentService, *gemini.MockGenerativeClient) {
	mockGenerative := new(gemini.MockGenerativeClient)
	svc := NewIntentService(mockGenerative, testutils.StaticRuntime{Runtime: runtime})
	return svc, mockGenerative
}

func TestClassifyIntent_ParsesStructuredPayload(t *testing.T) {
	svc, mockGenerative := newTestService(testutils.LoadedRuntime(nil))
	ctx := context.Background()

	mockGenerative.On("Complete", ctx, mock.MatchedBy(func(prompt string) bool {
		return prompt == `Classify: "add jane to support" JSON Response:`
	}), mock.Anything).Return(`{"operation":"ADD_USER","users":["jane@"],"group":"support@"}`, nil)

	intent := svc.ClassifyIntent(ctx, "add jane to support")
	assert.Equal(t, models.OperationAdd, intent.Operation)
	assert.Equal(t, []string{"jane@"}, intent.RawUsers)
	assert.Equal(t, "support@", intent.RawGroup)
	assert.Empty(t, intent.ReplyText)
}

func TestClassifyIntent_StripsCodeFences(t *testing.T) {
	svc, mockGenerative := newTestService(testutils.LoadedRuntime(nil))
	ctx := context.Background()

	fenced := "```json\n{\"operation\":\"REMOVE_USER\",\"users\":[\"jane@\"],\"group\":\"support@\"}\n```"
	mockGenerative.On("Complete", ctx, mock.Anything, mock.Anything).Return(fenced, nil)

	intent := svc.ClassifyIntent(ctx, "remove jane from support")
	assert.Equal(t, models.OperationRemove, intent.Operation)
}

func TestClassifyIntent_BackendErrorYieldsApology(t *testing.T) {
	svc, mockGenerative := newTestService(testutils.LoadedRuntime(nil))
	ctx := context.Background()

	mockGenerative.On("Complete", ctx, mock.Anything, mock.Anything).
		Return("", fmt.Errorf("backend unreachable"))

	intent := svc.ClassifyIntent(ctx, "add jane to support")
	assert.Equal(t, models.OperationNone, intent.Operation)
	assert.NotEmpty(t, intent.ReplyText)
}

func TestClassifyIntent_UnparseablePayloadYieldsApology(t *testing.T) {
	svc, mockGenerative := newTestService(testutils.LoadedRuntime(nil))
	ctx := context.Background()

	mockGenerative.On("Complete", ctx, mock.Anything, mock.Anything).
		Return("this is not json", nil)

	intent := svc.ClassifyIntent(ctx, "add jane to support")
	assert.Equal(t, models.OperationNone, intent.Operation)
	assert.NotEmpty(t, intent.ReplyText)
}

func TestClassifyIntent_EmptyPayloadIsSilentNone(t *testing.T) {
	svc, mockGenerative := newTestService(testutils.LoadedRuntime(nil))
	ctx := context.Background()

	mockGenerative.On("Complete", ctx, mock.Anything, mock.Anything).Return("", nil)

	intent := svc.ClassifyIntent(ctx, "hmm")
	assert.Equal(t, models.OperationNone, intent.Operation)
	assert.Empty(t, intent.ReplyText)
}

func TestClassifyIntent_NotLoaded(t *testing.T) {
	svc, mockGenerative := newTestService(nil)

	intent := svc.ClassifyIntent(context.Background(), "add jane to support")
	assert.Equal(t, models.OperationNone, intent.Operation)
	assert.Equal(t, notReadyText, intent.ReplyText)
	mockGenerative.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestCanonicalOperation(t *testing.T) {
	tests := []struct {
		label    string
		expected models.Operation
	}{
		{"ADD_USER", models.OperationAdd},
		{"ADD_MEMBERS", models.OperationAdd}, // compound labels collapse on the verb prefix
		{"REMOVE_USER", models.OperationRemove},
		{"LIST_MEMBERS", models.OperationListMembers},
		{"LEAVE_GROUP", models.OperationLeave},
		{"MY_GROUPS", models.OperationListMyGroups},
		{"SOLICITAR_MANAGER", models.OperationRequestManager},
		{"CHANGE_ROLE_MANAGER", models.OperationChangeRoleManager},
		{"VER_TODOS_LOS_MIEMBROS", models.OperationListAllMembers},
		{"HELP_MENU", models.OperationHelpMenu},
		{"FAQ_QUERY", models.OperationFaqQuery},
		{"NONE", models.OperationNone},
		{"", models.OperationNone},
		{"SOMETHING_ELSE", models.OperationNone},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.expected, canonicalOperation(tt.label))
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}
