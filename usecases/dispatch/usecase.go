package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"gadminbot/clients"
	"gadminbot/core"
	"gadminbot/models"
	"gadminbot/services"
	"gadminbot/utils"
)

const startingUpText = "⏳ The bot is still starting and loading configuration. Please try again in a few seconds."

// DispatchUseCase is the top-level state machine: it merges parsed or
// classified intent, resolves identifiers, checks authorization, fans out
// directory calls per target and composes a single response text.
type DispatchUseCase struct {
	directoryClient clients.DirectoryClient
	mailClient      clients.MailClient
	resolverService services.ResolverService
	intentService   services.IntentService
	faqService      services.FaqService
	authService     services.AuthorizationService
	runtime         services.RuntimeProvider
	domain          string
	// supportEmail receives manager-request notifications and is the
	// super-admin address.
	supportEmail        string
	delegatedAdminEmail string
}

func NewDispatchUseCase(
	directoryClient clients.DirectoryClient,
	mailClient clients.MailClient,
	resolverService services.ResolverService,
	intentService services.IntentService,
	faqService services.FaqService,
	authService services.AuthorizationService,
	runtime services.RuntimeProvider,
	domain, supportEmail, delegatedAdminEmail string,
) *DispatchUseCase {
	return &DispatchUseCase{
		directoryClient:     directoryClient,
		mailClient:          mailClient,
		resolverService:     resolverService,
		intentService:       intentService,
		faqService:          faqService,
		authService:         authService,
		runtime:             runtime,
		domain:              domain,
		supportEmail:        supportEmail,
		delegatedAdminEmail: delegatedAdminEmail,
	}
}

// ProcessEvent handles one inbound chat event and returns the reply text. An
// empty reply means the event is silently ignored. Every failure is rendered
// as response text - no error ever reaches the chat surface.
func (u *DispatchUseCase) ProcessEvent(ctx context.Context, event *models.ChatEvent) string {
	if event.Type == models.ChatEventTypeAddedToSpace {
		return WelcomeMenu(u.supportEmail)
	}

	sender := event.SenderEmail()
	intent, terminal := u.resolveIntent(ctx, event)
	if intent == nil {
		return terminal
	}

	response, err := u.execute(ctx, sender, intent)
	if err != nil {
		log.Printf("❌ Dispatch failed for operation %s: %v", intent.Operation, err)
		return responseForError(err)
	}
	return response
}

// resolveIntent produces the operation intent from an explicit command or the
// classifier. A nil intent means the returned text (possibly empty) is the
// terminal response.
func (u *DispatchUseCase) resolveIntent(ctx context.Context, event *models.ChatEvent) (*models.OperationIntent, string) {
	if event.AppCommandMetadata != nil {
		op, ok := utils.OperationForAppCommand(event.AppCommandMetadata.AppCommandID.String())
		if !ok {
			return nil, ""
		}
		argumentText := ""
		if event.Message != nil {
			argumentText = event.Message.ArgumentText
		}
		return utils.ParseCommandIntent(op, argumentText), ""
	}

	if event.Type != models.ChatEventTypeMessage || event.Message == nil {
		return nil, ""
	}

	if event.Message.SlashCommand != nil {
		name := strings.TrimPrefix(event.Message.SlashCommand.CommandName, "/")
		op, ok := utils.OperationForSlashCommand(name)
		if !ok {
			return nil, ""
		}
		return utils.ParseCommandIntent(op, event.Message.ArgumentText), ""
	}

	// Free text needs the classifier, which needs the startup configuration.
	if _, loaded := u.runtime.Current(); !loaded {
		return nil, startingUpText
	}
	intent := u.intentService.ClassifyIntent(ctx, event.Message.Text)

	switch intent.Operation {
	case models.OperationHelpMenu:
		return nil, WelcomeMenu(u.supportEmail)
	case models.OperationFaqQuery, models.OperationNone:
		return nil, u.answerQuestion(ctx, event.Message.Text, intent.ReplyText)
	}
	return intent, ""
}

// answerQuestion runs the FAQ resolver and falls back to the classifier's
// apology (if any) or the fixed general fallback.
func (u *DispatchUseCase) answerQuestion(ctx context.Context, question, apology string) string {
	if answer, ok := u.faqService.Answer(ctx, question).Get(); ok {
		return answer
	}
	if apology != "" {
		return apology
	}
	return FallbackGeneralMessage
}

func (u *DispatchUseCase) execute(ctx context.Context, sender string, intent *models.OperationIntent) (string, error) {
	group := u.resolverService.CompleteEmail(intent.RawGroup)
	users := make([]string, 0, len(intent.RawUsers))
	for _, raw := range intent.RawUsers {
		if completed := u.resolverService.CompleteEmail(raw); completed != "" {
			users = append(users, completed)
		}
	}

	// Self-service operations default to the acting user.
	if (intent.Operation == models.OperationLeave || intent.Operation == models.OperationListMyGroups) &&
		len(users) == 0 {
		users = []string{sender}
	}

	switch intent.Operation {
	case models.OperationAdd, models.OperationRemove:
		return u.handleMembershipChange(ctx, sender, intent.Operation, users, group)
	case models.OperationChangeRoleManager:
		return u.handleChangeRole(ctx, sender, users, group)
	case models.OperationListMembers:
		return u.handleListMembers(ctx, sender, group)
	case models.OperationLeave:
		return u.handleLeave(ctx, sender, group)
	case models.OperationListMyGroups:
		return u.handleListMyGroups(ctx, sender)
	case models.OperationRequestManager:
		return u.handleManagerRequest(ctx, sender, group)
	case models.OperationListAllMembers:
		return u.handleListAllMembers(sender), nil
	}
	return "", nil
}

// fanOut runs one call per target concurrently and returns one line per
// target in input order, regardless of completion order. Each line is
// independent - a failing target never aborts the rest.
func (u *DispatchUseCase) fanOut(ctx context.Context, targets []string, run func(ctx context.Context, target string) string) []string {
	lines := make([]string, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			lines[i] = run(ctx, target)
			return nil
		})
	}
	_ = g.Wait()
	return lines
}

func (u *DispatchUseCase) handleMembershipChange(
	ctx context.Context,
	sender string,
	op models.Operation,
	users []string,
	group string,
) (string, error) {
	verb := "add"
	if op == models.OperationRemove {
		verb = "remove"
	}
	if group == "" || len(users) == 0 {
		return fmt.Sprintf(
			"To %s users, indicate the emails and the group. Example:\n`/%s user1@%s group@%s`",
			verb, verb, u.domain, u.domain,
		), nil
	}

	allowed, err := u.authService.CanMutate(ctx, group, sender)
	if err != nil {
		return "", err
	}
	if !allowed {
		return fmt.Sprintf(
			"❌ You do not have MANAGER/OWNER permissions for this action in the group **%s**.",
			group,
		), nil
	}

	groupName, err := u.resolverService.GroupName(ctx, group)
	if err != nil {
		return "", err
	}

	lines := u.fanOut(ctx, users, func(ctx context.Context, target string) string {
		userEmail := u.resolverService.ResolveUserEmail(ctx, target)
		displayName := u.resolverService.UserDisplayName(ctx, userEmail)

		var opErr error
		if op == models.OperationAdd {
			opErr = u.directoryClient.InsertMember(ctx, group, models.Member{
				Email: userEmail,
				Role:  models.MemberRoleMember,
			})
		} else {
			opErr = u.directoryClient.DeleteMember(ctx, group, userEmail)
		}
		if opErr == nil {
			if op == models.OperationAdd {
				return fmt.Sprintf("✅ **%s** added to **%s**", displayName, groupName)
			}
			return fmt.Sprintf("✅ **%s** removed from **%s**", displayName, groupName)
		}

		cause := "Unknown error."
		switch {
		case core.IsNotFound(opErr):
			cause = fmt.Sprintf("The user **%s** or the group **%s** does not exist.", userEmail, group)
		case core.IsConflict(opErr) && op == models.OperationAdd:
			cause = fmt.Sprintf("The user **%s** is already a member.", userEmail)
		case core.IsBadRequest(opErr):
			cause = "Incorrect request. Verify the emails."
		}
		return fmt.Sprintf("❌ Could not %s **%s**: %s", verb, displayName, cause)
	})
	return strings.Join(lines, "\n"), nil
}

func (u *DispatchUseCase) handleChangeRole(
	ctx context.Context,
	sender string,
	users []string,
	group string,
) (string, error) {
	if group == "" || len(users) == 0 {
		return "To change the role to Manager, indicate the user and the group. Example:\n`make user@ manager of group@`", nil
	}

	allowed, err := u.authService.CanMutate(ctx, group, sender)
	if err != nil {
		return "", err
	}
	if !allowed {
		return fmt.Sprintf(
			"❌ You do not have Manager/Owner permissions to change roles in the group **%s**.",
			group,
		), nil
	}

	groupName, err := u.resolverService.GroupName(ctx, group)
	if err != nil {
		return "", err
	}

	lines := u.fanOut(ctx, users, func(ctx context.Context, target string) string {
		userEmail := u.resolverService.ResolveUserEmail(ctx, target)
		displayName := u.resolverService.UserDisplayName(ctx, userEmail)

		opErr := u.directoryClient.UpdateMemberRole(ctx, group, userEmail, models.MemberRoleManager)
		if opErr == nil {
			return fmt.Sprintf("👑 **%s** is now a **Manager** in **%s**", displayName, groupName)
		}

		cause := "Unknown error."
		switch {
		case core.IsNotFound(opErr):
			cause = fmt.Sprintf(
				"The user **%s** is not a member of **%s** or the group does not exist.",
				displayName, groupName,
			)
		case core.IsBadRequest(opErr):
			cause = "Incorrect request. Verify if the user already is Owner/Manager or if the email is correct."
		}
		return fmt.Sprintf("❌ Could not make **%s** Manager: %s", displayName, cause)
	})
	return strings.Join(lines, "\n"), nil
}

func (u *DispatchUseCase) handleListMembers(ctx context.Context, sender, group string) (string, error) {
	if group == "" {
		return fmt.Sprintf("Indicate the group to see its members. Example:\n`/miembros group@%s`", u.domain), nil
	}

	allowed, err := u.authService.CanMutate(ctx, group, sender)
	if err != nil {
		return "", err
	}
	if !allowed {
		return fmt.Sprintf(
			"❌ You do not have MANAGER/OWNER permissions to query members of the group **%s**.",
			group,
		), nil
	}

	members, err := u.directoryClient.ListMembers(ctx, group)
	if err != nil {
		return "", err
	}
	groupName, err := u.resolverService.GroupName(ctx, group)
	if err != nil {
		return "", err
	}

	if len(members) == 0 {
		return fmt.Sprintf("⚠️ The group **%s** has no members.", groupName), nil
	}

	emails := make([]string, len(members))
	rolesByEmail := make(map[string]models.MemberRole, len(members))
	for i, member := range members {
		emails[i] = member.Email
		rolesByEmail[member.Email] = member.Role
	}
	lines := u.fanOut(ctx, emails, func(ctx context.Context, email string) string {
		return fmt.Sprintf("• %s (%s)", u.resolverService.UserDisplayName(ctx, email), rolesByEmail[email])
	})
	return fmt.Sprintf("👥 Members of **%s**:\n%s", groupName, strings.Join(lines, "\n")), nil
}

func (u *DispatchUseCase) handleLeave(ctx context.Context, sender, group string) (string, error) {
	if group == "" {
		return fmt.Sprintf("Indicate the group you wish to leave. Example:\n`/abandonar group@%s`", u.domain), nil
	}

	// A user may always remove their own membership - no authorization check.
	groupName, err := u.resolverService.GroupName(ctx, group)
	if err != nil {
		return "", err
	}
	if err := u.directoryClient.DeleteMember(ctx, group, sender); err != nil {
		return "", err
	}
	return fmt.Sprintf("👋 You have left the group **%s**", groupName), nil
}

func (u *DispatchUseCase) handleListMyGroups(ctx context.Context, sender string) (string, error) {
	groups, err := u.directoryClient.ListGroupsForUser(ctx, sender)
	if err != nil {
		return "", err
	}
	if len(groups) == 0 {
		return "⚠️ You do not belong to any groups.", nil
	}

	emails := make([]string, len(groups))
	namesByEmail := make(map[string]string, len(groups))
	for i, group := range groups {
		emails[i] = group.Email
		namesByEmail[group.Email] = group.Name
	}

	lines := u.fanOut(ctx, emails, func(ctx context.Context, groupEmail string) string {
		name := namesByEmail[groupEmail]
		if name == "" {
			name = groupEmail
		}

		role := "Member"
		member, err := u.directoryClient.GetMembership(ctx, groupEmail, sender)
		switch {
		case err != nil:
			role = "Member (Unverified)"
		case member.Role == models.MemberRoleOwner:
			role = "Owner"
		case member.Role == models.MemberRoleManager:
			role = "Manager"
		}
		return fmt.Sprintf("• %s [**%s**]", name, role)
	})
	return "👥 Groups you belong to:\n" + strings.Join(lines, "\n"), nil
}

func (u *DispatchUseCase) handleManagerRequest(ctx context.Context, sender, group string) (string, error) {
	if group == "" {
		return "Please indicate the group you want to be manager of. Example: `solicitar ser manager del grupo support@`", nil
	}

	groupName, err := u.resolverService.GroupName(ctx, group)
	if err != nil {
		if errors.Is(err, core.ErrGroupNotFound) {
			return fmt.Sprintf(
				"❌ The group **%s** does not exist in the Directory. Please verify the address.",
				group,
			), nil
		}
		return "❌ An error occurred.", nil
	}

	requesterName := u.resolverService.UserDisplayName(ctx, sender)
	body := fmt.Sprintf(
		"The user %s has requested to be a MANAGER of the group %s.\n\n"+
			"Request Details:\n- Requester: %s (%s)\n- Group: %s (%s)\n\n"+
			"Please access the administration console to review and approve the request.",
		requesterName, groupName, requesterName, sender, groupName, group,
	)

	if err := u.mailClient.Send(ctx, u.supportEmail, u.delegatedAdminEmail, "📞 Manager Role Request 📞", body); err != nil {
		log.Printf("❌ Failed to send manager request email: %v", err)
		return "❌ There was an error sending the notification. Please contact support manually.", nil
	}
	return fmt.Sprintf(
		"✅ Request sent. %s has been notified that %s wishes to be a Manager of the group **%s**.",
		u.supportEmail, requesterName, groupName,
	), nil
}

// handleListAllMembers is a super-admin-only stub: global membership
// reporting is out of scope.
func (u *DispatchUseCase) handleListAllMembers(sender string) string {
	if sender != u.supportEmail {
		return fmt.Sprintf("❌ Access denied. This command is only for %s.", u.supportEmail)
	}
	return "Global listing logic not implemented or only available for the super-admin."
}

// responseForError renders the terminal error taxonomy as plain response
// text.
func responseForError(err error) string {
	switch {
	case errors.Is(err, core.ErrGroupNotFound):
		return "❌ The specified group does not exist."
	case errors.Is(err, core.ErrMissingActingUser):
		return "❌ Internal error: Could not identify your user email to verify permissions."
	case core.IsForbidden(err):
		return "❌ You do not have the appropriate permissions for this action."
	case core.IsNotFound(err):
		return "❌ Group or user does not exist."
	case core.IsBadRequest(err):
		return "❌ Incorrect request. Verify the email format."
	default:
		return "❌ An error occurred while processing the request."
	}
}
