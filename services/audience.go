package services

import (
	"context"
	"fmt"

	"github.com/thecoder877/Vrticko/models"
)

// UserDirectory is the slice of the user store the resolver needs.
// Implemented by database.UserRepository.
type UserDirectory interface {
	FindIDsByRoles(ctx context.Context, roles []string) ([]string, error)
	FindByID(id string) (*models.User, error)
	FindRolesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

// AudienceResolver maps a target descriptor to a concrete, snapshotted
// set of recipient user IDs. Resolution happens once, before the fan-out
// transaction; users joining the audience later never receive the
// notification.
type AudienceResolver struct {
	users UserDirectory
}

// NewAudienceResolver creates a new AudienceResolver
func NewAudienceResolver(users UserDirectory) *AudienceResolver {
	return &AudienceResolver{users: users}
}

// Resolve returns the deduplicated, order-stable recipient set for a
// target descriptor. An individual target that does not exist fails with
// ErrUserNotFound.
func (r *AudienceResolver) Resolve(ctx context.Context, target, individualUserID string) ([]string, error) {
	switch target {
	case models.TargetAll:
		return r.users.FindIDsByRoles(ctx, []string{models.RoleParent, models.RoleTeacher, models.RoleAdmin})

	case models.TargetParents:
		return r.users.FindIDsByRoles(ctx, []string{models.RoleParent})

	case models.TargetTeachers:
		return r.users.FindIDsByRoles(ctx, []string{models.RoleTeacher})

	case models.TargetIndividual:
		user, err := r.users.FindByID(individualUserID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve individual target: %w", err)
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
		return []string{user.ID.Hex()}, nil

	default:
		return nil, fmt.Errorf("unknown target %q", target)
	}
}

// ExcludeRole filters the given recipient set down to users whose role is
// not the excluded one. Used to keep admins out of push delivery while
// they still receive recipient rows and feed events.
func (r *AudienceResolver) ExcludeRole(ctx context.Context, userIDs []string, role string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	roles, err := r.users.FindRolesByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up recipient roles: %w", err)
	}

	filtered := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if roles[id] == role {
			continue
		}
		filtered = append(filtered, id)
	}

	return filtered, nil
}
