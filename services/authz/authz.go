package authz

import (
	"context"
	"log"

	"gadminbot/clients"
	"gadminbot/core"
	"gadminbot/models"
)

// AuthorizationService decides whether an acting user may mutate a group.
type AuthorizationService struct {
	directoryClient clients.DirectoryClient
	superAdminEmail string
}

func NewAuthorizationService(directoryClient clients.DirectoryClient, superAdminEmail string) *AuthorizationService {
	return &AuthorizationService{directoryClient: directoryClient, superAdminEmail: superAdminEmail}
}

// CanMutate reports whether actingUser holds a MANAGER or OWNER role in the
// group. The configured super admin always passes without a lookup. A missing
// membership is an ordinary denial as long as the group exists; a missing
// group is core.ErrGroupNotFound. An empty acting user is an input error, not
// a denial.
func (s *AuthorizationService) CanMutate(ctx context.Context, groupKey, actingUser string) (bool, error) {
	if actingUser == "" {
		return false, core.ErrMissingActingUser
	}
	if actingUser == s.superAdminEmail {
		return true, nil
	}

	member, err := s.directoryClient.GetMembership(ctx, groupKey, actingUser)
	if err == nil {
		return member.Role == models.MemberRoleManager || member.Role == models.MemberRoleOwner, nil
	}
	if !core.IsNotFound(err) {
		return false, err
	}

	// No membership record. Distinguish "not a member" from "no such group".
	if _, groupErr := s.directoryClient.GetGroup(ctx, groupKey); groupErr != nil {
		if core.IsNotFound(groupErr) {
			return false, core.ErrGroupNotFound
		}
		return false, groupErr
	}

	log.Printf("🔒 %s is not a member of %s, denying mutation", actingUser, groupKey)
	return false, nil
}
