package dispatch

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gadminbot/clients/directory"
	"gadminbot/clients/gemini"
	"gadminbot/clients/mailer"
	"gadminbot/core"
	"gadminbot/models"
	"gadminbot/services/authz"
	"gadminbot/services/faq"
	"gadminbot/services/intent"
	"gadminbot/services/resolver"
	"gadminbot/testutils"
)

const (
	testDomain     = "example.com"
	supportEmail   = "admin_support@example.com"
	delegatedAdmin = "delegated.admin@example.com"
	managerEmail   = "manager@example.com"
	groupEmail     = "support@example.com"
)

type fixture struct {
	usecase    *DispatchUseCase
	directory  *directory.MockDirectoryClient
	generative *gemini.MockGenerativeClient
	mail       *mailer.MockMailClient
}

// newFixture wires the dispatch engine over real services and mocked
// collaborator clients, mirroring the production wiring.
func newFixture(rt *models.BotRuntime) *fixture {
	mockDirectory := new(directory.MockDirectoryClient)
	mockGenerative := new(gemini.MockGenerativeClient)
	mockMail := new(mailer.MockMailClient)
	runtime := testutils.StaticRuntime{Runtime: rt}

	resolverService := resolver.NewResolverService(mockDirectory, testDomain)
	intentService := intent.NewIntentService(mockGenerative, runtime)
	faqService := faq.NewFaqService(mockGenerative, runtime, supportEmail)
	authService := authz.NewAuthorizationService(mockDirectory, supportEmail)

	usecase := NewDispatchUseCase(
		mockDirectory, mockMail,
		resolverService, intentService, faqService, authService, runtime,
		testDomain, supportEmail, delegatedAdmin,
	)
	return &fixture{usecase: usecase, directory: mockDirectory, generative: mockGenerative, mail: mockMail}
}

func (f *fixture) expectManagerOf(sender, group string) {
	f.directory.On("GetMembership", mock.Anything, group, sender).
		Return(&models.Member{Email: sender, Role: models.MemberRoleManager}, nil)
}

func (f *fixture) expectGroup(group, name string) {
	f.directory.On("GetGroup", mock.Anything, group).
		Return(&models.Group{Email: group, Name: name}, nil)
}

func (f *fixture) expectUser(email, fullName string) {
	f.directory.On("GetUser", mock.Anything, email).
		Return(&models.User{PrimaryEmail: email, Name: models.UserName{FullName: fullName}}, nil)
}

func TestProcessEvent_AddedToSpaceShowsMenu(t *testing.T) {
	f := newFixture(nil)

	response := f.usecase.ProcessEvent(context.Background(), &models.ChatEvent{
		Type: models.ChatEventTypeAddedToSpace,
	})
	assert.Contains(t, response, "Bot G-Admin")
	assert.Contains(t, response, supportEmail)
}

func TestProcessEvent_AddCommand_PartialFailure(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.expectManagerOf(managerEmail, groupEmail)
	f.expectGroup(groupEmail, "Support")
	f.expectUser("user1@example.com", "User One")
	f.expectUser("user2@example.com", "User Two")

	f.directory.On("InsertMember", mock.Anything, groupEmail,
		models.Member{Email: "user1@example.com", Role: models.MemberRoleMember}).Return(nil)
	f.directory.On("InsertMember", mock.Anything, groupEmail,
		models.Member{Email: "user2@example.com", Role: models.MemberRoleMember}).
		Return(core.NewAPIError(http.StatusConflict, "duplicate"))

	event := testutils.SlashCommandEvent(managerEmail, "/añadir", "user1@ user2@ to support@example.com")
	response := f.usecase.ProcessEvent(context.Background(), event)

	lines := strings.Split(response, "\n")
	require.Len(t, lines, 2, "one outcome line per resolved target")
	assert.Equal(t, "✅ **User One** added to **Support**", lines[0])
	assert.Equal(t,
		"❌ Could not add **User Two**: The user **user2@example.com** is already a member.",
		lines[1])
}

func TestProcessEvent_FanOutPreservesInputOrderUnderLatency(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.expectManagerOf(managerEmail, groupEmail)
	f.expectGroup(groupEmail, "Support")

	users := []string{"a@example.com", "b@example.com", "c@example.com"}
	delays := []time.Duration{30 * time.Millisecond, time.Millisecond, 10 * time.Millisecond}
	for i, email := range users {
		f.expectUser(email, "User "+strings.ToUpper(email[:1]))
		delay := delays[i]
		f.directory.On("DeleteMember", mock.Anything, groupEmail, email).
			Run(func(mock.Arguments) { time.Sleep(delay) }).Return(nil)
	}

	event := testutils.SlashCommandEvent(managerEmail, "/eliminar", "a@ b@ c@ support@example.com")
	response := f.usecase.ProcessEvent(context.Background(), event)

	lines := strings.Split(response, "\n")
	require.Len(t, lines, len(users))
	assert.Equal(t, "✅ **User A** removed from **Support**", lines[0])
	assert.Equal(t, "✅ **User B** removed from **Support**", lines[1])
	assert.Equal(t, "✅ **User C** removed from **Support**", lines[2])
}

func TestProcessEvent_AddWithoutTargetsShowsUsageHint(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))

	event := testutils.SlashCommandEvent(managerEmail, "/añadir", "")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Contains(t, response, "indicate the emails and the group")
	f.directory.AssertNotCalled(t, "InsertMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEvent_AddDeniedForPlainMember(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.directory.On("GetMembership", mock.Anything, groupEmail, "member@example.com").
		Return(&models.Member{Email: "member@example.com", Role: models.MemberRoleMember}, nil)

	event := testutils.SlashCommandEvent("member@example.com", "/añadir", "user1@ support@example.com")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Contains(t, response, "You do not have MANAGER/OWNER permissions")
	f.directory.AssertNotCalled(t, "InsertMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEvent_AddToMissingGroup(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	notFound := core.NewAPIError(http.StatusNotFound, "not found")
	f.directory.On("GetMembership", mock.Anything, "ghost@example.com", managerEmail).Return(nil, notFound)
	f.directory.On("GetGroup", mock.Anything, "ghost@example.com").Return(nil, notFound)

	event := testutils.SlashCommandEvent(managerEmail, "/añadir", "user1@ ghost@example.com")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Equal(t, "❌ The specified group does not exist.", response)
}

func TestProcessEvent_SuperAdminBypassesAuthorization(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.expectGroup(groupEmail, "Support")
	f.expectUser("user1@example.com", "User One")
	f.directory.On("InsertMember", mock.Anything, groupEmail,
		models.Member{Email: "user1@example.com", Role: models.MemberRoleMember}).Return(nil)

	event := testutils.SlashCommandEvent(supportEmail, "/añadir", "user1@ support@example.com")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Equal(t, "✅ **User One** added to **Support**", response)
	f.directory.AssertNotCalled(t, "GetMembership", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEvent_FreeTextNoneWithNoFaqMatchReturnsFallback(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.generative.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"operation":"NONE"}`, nil)

	event := testutils.TextMessageEvent(managerEmail, "what is the meaning of life")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Equal(t, FallbackGeneralMessage, response)
}

func TestProcessEvent_FreeTextFaqMatchSkipsGenerativeFallback(t *testing.T) {
	entries := []models.FaqEntry{{
		Category:       "Password",
		Questions:      []string{"how do I reset my password"},
		StandardAnswer: "Use the account portal",
		Keywords:       []string{"password"},
	}}
	f := newFixture(testutils.LoadedRuntime(entries))
	f.generative.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"operation":"FAQ_QUERY"}`, nil).Once()

	event := testutils.TextMessageEvent(managerEmail, "how do I reset my password")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Contains(t, response, "Use the account portal")
	// Only the classification call - the tier-1 match never hits the backend.
	f.generative.AssertNumberOfCalls(t, "Complete", 1)
}

func TestProcessEvent_FreeTextClassifiedAdd(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.generative.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"operation":"ADD_USER","users":["user1@"],"group":"support@"}`, nil)
	f.expectManagerOf(managerEmail, groupEmail)
	f.expectGroup(groupEmail, "Support")
	f.expectUser("user1@example.com", "User One")
	f.directory.On("InsertMember", mock.Anything, groupEmail,
		models.Member{Email: "user1@example.com", Role: models.MemberRoleMember}).Return(nil)

	event := testutils.TextMessageEvent(managerEmail, "please add user1 to support")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Equal(t, "✅ **User One** added to **Support**", response)
}

func TestProcessEvent_HelpMenuViaClassifier(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.generative.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"operation":"HELP_MENU"}`, nil)

	event := testutils.TextMessageEvent(managerEmail, "menu")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Contains(t, response, "Bot G-Admin")
}

func TestProcessEvent_FreeTextBeforeConfigLoaded(t *testing.T) {
	f := newFixture(nil)

	event := testutils.TextMessageEvent(managerEmail, "add someone somewhere")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Equal(t, startingUpText, response)
	f.generative.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEvent_SlashCommandServedBeforeConfigLoaded(t *testing.T) {
	f := newFixture(nil)

	event := testutils.SlashCommandEvent(managerEmail, "/abandonar", "")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Equal(t, "Indicate the group you wish to leave. Example:\n`/abandonar group@example.com`", response)
}

func TestProcessEvent_LeaveSuccess(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.expectGroup(groupEmail, "Support Team")
	f.directory.On("DeleteMember", mock.Anything, groupEmail, managerEmail).Return(nil)

	event := testutils.SlashCommandEvent(managerEmail, "/abandonar", "support@example.com")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Equal(t, "👋 You have left the group **Support Team**", response)
}

func TestProcessEvent_ListMembers(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.expectManagerOf(managerEmail, groupEmail)
	f.expectGroup(groupEmail, "Support")
	f.directory.On("ListMembers", mock.Anything, groupEmail).Return([]models.Member{
		{Email: "owner@example.com", Role: models.MemberRoleOwner},
		{Email: "user1@example.com", Role: models.MemberRoleMember},
	}, nil)
	f.expectUser("owner@example.com", "The Owner")
	f.expectUser("user1@example.com", "User One")

	event := testutils.SlashCommandEvent(managerEmail, "/miembros", "support@example.com")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Equal(t,
		"👥 Members of **Support**:\n• The Owner (OWNER)\n• User One (MEMBER)",
		response)
}

func TestProcessEvent_ListMembersEmptyGroup(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.expectManagerOf(managerEmail, groupEmail)
	f.expectGroup(groupEmail, "Support")
	f.directory.On("ListMembers", mock.Anything, groupEmail).Return([]models.Member{}, nil)

	event := testutils.SlashCommandEvent(managerEmail, "/miembros", "support@example.com")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Equal(t, "⚠️ The group **Support** has no members.", response)
}

func TestProcessEvent_ListMyGroups(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.directory.On("ListGroupsForUser", mock.Anything, managerEmail).Return([]models.Group{
		{Email: "support@example.com", Name: "Support"},
		{Email: "dev@example.com", Name: "Developers"},
	}, nil)
	f.directory.On("GetMembership", mock.Anything, "support@example.com", managerEmail).
		Return(&models.Member{Email: managerEmail, Role: models.MemberRoleManager}, nil)
	f.directory.On("GetMembership", mock.Anything, "dev@example.com", managerEmail).
		Return(nil, core.NewAPIError(http.StatusNotFound, "not found"))

	event := testutils.SlashCommandEvent(managerEmail, "/misgrupos", "")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Equal(t,
		"👥 Groups you belong to:\n• Support [**Manager**]\n• Developers [**Member (Unverified)**]",
		response)
}

func TestProcessEvent_ManagerRequest(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.expectGroup(groupEmail, "Support")
	f.expectUser(managerEmail, "Max Manager")
	f.mail.On("Send", mock.Anything, supportEmail, delegatedAdmin, "📞 Manager Role Request 📞",
		mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "Max Manager") && strings.Contains(body, "Support")
		})).Return(nil)

	event := testutils.SlashCommandEvent(managerEmail, "/solicitar_manager", "support@example.com")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Contains(t, response, "✅ Request sent.")
	assert.Contains(t, response, "Max Manager")
	assert.Contains(t, response, "**Support**")
}

func TestProcessEvent_ManagerRequestMailFailure(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.expectGroup(groupEmail, "Support")
	f.expectUser(managerEmail, "Max Manager")
	f.mail.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(core.NewAPIError(http.StatusInternalServerError, "smtp down"))

	event := testutils.SlashCommandEvent(managerEmail, "/solicitar_manager", "support@example.com")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Contains(t, response, "error sending the notification")
}

func TestProcessEvent_ManagerRequestForMissingGroup(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.directory.On("GetGroup", mock.Anything, "ghost@example.com").
		Return(nil, core.NewAPIError(http.StatusNotFound, "not found"))

	event := testutils.SlashCommandEvent(managerEmail, "/solicitar_manager", "ghost@example.com")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Contains(t, response, "does not exist in the Directory")
	f.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEvent_ChangeRoleManager(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.expectManagerOf(managerEmail, groupEmail)
	f.expectGroup(groupEmail, "Support")
	f.expectUser("user1@example.com", "User One")
	f.directory.On("UpdateMemberRole", mock.Anything, groupEmail, "user1@example.com", models.MemberRoleManager).
		Return(nil)

	event := testutils.SlashCommandEvent(managerEmail, "/cambiar_rol_manager", "user1@ support@example.com")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Equal(t, "👑 **User One** is now a **Manager** in **Support**", response)
}

func TestProcessEvent_ListAllMembersIsSuperAdminOnly(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))

	denied := f.usecase.ProcessEvent(context.Background(),
		testutils.SlashCommandEvent(managerEmail, "/ver_todos_los_miembros", ""))
	assert.Contains(t, denied, "Access denied")

	allowed := f.usecase.ProcessEvent(context.Background(),
		testutils.SlashCommandEvent(supportEmail, "/ver_todos_los_miembros", ""))
	assert.Contains(t, allowed, "Global listing logic not implemented")
}

func TestProcessEvent_UnknownSlashCommandIsIgnored(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))

	response := f.usecase.ProcessEvent(context.Background(),
		testutils.SlashCommandEvent(managerEmail, "/unknown", "whatever"))
	assert.Empty(t, response)
}

func TestProcessEvent_AppCommandAdd(t *testing.T) {
	f := newFixture(testutils.LoadedRuntime(nil))
	f.expectManagerOf(managerEmail, groupEmail)
	f.expectGroup(groupEmail, "Support")
	f.expectUser("user1@example.com", "User One")
	f.directory.On("InsertMember", mock.Anything, groupEmail,
		models.Member{Email: "user1@example.com", Role: models.MemberRoleMember}).Return(nil)

	event := testutils.AppCommandEvent(managerEmail, "1", "user1@ support@example.com")
	response := f.usecase.ProcessEvent(context.Background(), event)

	assert.Equal(t, "✅ **User One** added to **Support**", response)
}
