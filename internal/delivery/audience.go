package delivery

import (
	"context"
	"fmt"

	"alerting-platform/internal/models"
)

// Resolver turns an alert's visibility configuration into the concrete set
// of target users. Resolution happens at send time, so membership changes
// retroactively affect who a re-sent alert reaches.
type Resolver struct {
	users UserDirectory
}

func NewResolver(users UserDirectory) *Resolver {
	return &Resolver{users: users}
}

// Resolve returns the de-duplicated audience. An alert with an empty team
// or user set resolves to an empty audience, not an error.
func (r *Resolver) Resolve(ctx context.Context, alert *models.Alert) ([]models.User, error) {
	var (
		found []models.User
		err   error
	)

	switch alert.Visibility {
	case models.VisibilityOrganization:
		found, err = r.users.ActiveUsers(ctx)
	case models.VisibilityTeams:
		if len(alert.TeamIDs) == 0 {
			return nil, nil
		}
		found, err = r.users.ActiveTeamMembers(ctx, alert.TeamIDs)
	case models.VisibilityUsers:
		if len(alert.UserIDs) == 0 {
			return nil, nil
		}
		found, err = r.users.ActiveUsersByIDs(ctx, alert.UserIDs)
	default:
		return nil, fmt.Errorf("%w: unknown visibility %q", models.ErrInvalidInput, alert.Visibility)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve audience for alert %d: %w", alert.ID, err)
	}

	// A user reachable through two teams counts once.
	seen := make(map[int64]struct{}, len(found))
	audience := make([]models.User, 0, len(found))
	for _, u := range found {
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		audience = append(audience, u)
	}
	return audience, nil
}
