package service

import (
	"context"
	"errors"

	"github.com/alecgard/taskboard/internal/model"
	"github.com/alecgard/taskboard/internal/store"
	"github.com/google/uuid"
)

// Teams manages teams and keeps the lead's membership in sync with lead_id.
type Teams struct {
	s *Service
}

// Create creates a team. When a lead is given the lead becomes a member with
// the leader role in the same transaction.
func (t *Teams) Create(ctx context.Context, in model.CreateTeamInput) (*model.TeamDetail, error) {
	name, err := requireText("name", in.Name)
	if err != nil {
		return nil, err
	}
	team := &model.Team{
		ID:          uuid.New(),
		Name:        name,
		Description: in.Description,
		LeadID:      in.LeadID,
		CreatedAt:   t.s.clock(),
	}

	var detail *model.TeamDetail
	err = t.s.tx(ctx, func(tx store.Tx) error {
		if err := requireUser(ctx, tx, team.LeadID); err != nil {
			return err
		}
		if err := tx.CreateTeam(ctx, team); err != nil {
			return storeErr(err, "team")
		}
		if err := syncLeader(ctx, tx, team.ID, nil, team.LeadID); err != nil {
			return err
		}
		detail, err = loadDetail(ctx, tx, team.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// Get returns a team with its memberships.
func (t *Teams) Get(ctx context.Context, rawID string) (*model.TeamDetail, error) {
	id, err := parseID(rawID, "team")
	if err != nil {
		return nil, err
	}
	var detail *model.TeamDetail
	err = t.s.tx(ctx, func(tx store.Tx) error {
		var err error
		detail, err = loadDetail(ctx, tx, id)
		return err
	})
	return detail, err
}

// List returns every team without members.
func (t *Teams) List(ctx context.Context) ([]*model.Team, error) {
	var teams []*model.Team
	err := t.s.tx(ctx, func(tx store.Tx) error {
		var err error
		teams, err = tx.ListTeams(ctx)
		return err
	})
	return teams, err
}

// Update applies a partial update. Changing or clearing lead_id promotes the
// new lead and demotes the previous one.
func (t *Teams) Update(ctx context.Context, rawID string, in model.UpdateTeamInput) (*model.TeamDetail, error) {
	id, err := parseID(rawID, "team")
	if err != nil {
		return nil, err
	}
	if err := requireSet("name", in.Name); err != nil {
		return nil, err
	}

	var detail *model.TeamDetail
	err = t.s.tx(ctx, func(tx store.Tx) error {
		team, err := tx.GetTeam(ctx, id)
		if err != nil {
			return storeErr(err, "team")
		}
		oldLead := team.LeadID

		if in.Name.Set {
			if team.Name, err = requireText("name", *in.Name.Value); err != nil {
				return err
			}
		}
		team.Description = in.Description.Apply(team.Description)
		team.LeadID = in.LeadID.Apply(team.LeadID)

		if err := requireUser(ctx, tx, team.LeadID); err != nil {
			return err
		}
		if err := tx.UpdateTeam(ctx, team); err != nil {
			return storeErr(err, "team")
		}
		if !sameID(oldLead, team.LeadID) {
			if err := syncLeader(ctx, tx, team.ID, oldLead, team.LeadID); err != nil {
				return err
			}
		}
		detail, err = loadDetail(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// Delete removes a team together with its projects, their tasks and all
// memberships.
func (t *Teams) Delete(ctx context.Context, rawID string) (*model.Team, error) {
	id, err := parseID(rawID, "team")
	if err != nil {
		return nil, err
	}
	var team *model.Team
	err = t.s.tx(ctx, func(tx store.Tx) error {
		var err error
		if team, err = tx.GetTeam(ctx, id); err != nil {
			return storeErr(err, "team")
		}
		return storeErr(tx.DeleteTeam(ctx, id), "team")
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func loadDetail(ctx context.Context, tx store.Tx, id uuid.UUID) (*model.TeamDetail, error) {
	team, err := tx.GetTeam(ctx, id)
	if err != nil {
		return nil, storeErr(err, "team")
	}
	members, err := tx.ListMemberships(ctx, id)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []*model.TeamMembership{}
	}
	return &model.TeamDetail{Team: *team, Members: members}, nil
}

// syncLeader demotes the previous lead's membership to member and upserts the
// new lead's membership with the leader role.
func syncLeader(ctx context.Context, tx store.Tx, teamID uuid.UUID, oldLead, newLead *uuid.UUID) error {
	if oldLead != nil && !sameID(oldLead, newLead) {
		m, err := tx.GetMembership(ctx, teamID, *oldLead)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return err
		case m.Role == model.MembershipLeader:
			m.Role = model.MembershipMember
			if err := tx.UpdateMembership(ctx, m); err != nil {
				return storeErr(err, "membership")
			}
		}
	}

	if newLead == nil {
		return nil
	}
	m, err := tx.GetMembership(ctx, teamID, *newLead)
	if errors.Is(err, store.ErrNotFound) {
		return storeErr(tx.CreateMembership(ctx, &model.TeamMembership{
			ID:     uuid.New(),
			TeamID: teamID,
			UserID: *newLead,
			Role:   model.MembershipLeader,
		}), "membership")
	}
	if err != nil {
		return err
	}
	if m.Role != model.MembershipLeader {
		m.Role = model.MembershipLeader
		return storeErr(tx.UpdateMembership(ctx, m), "membership")
	}
	return nil
}
