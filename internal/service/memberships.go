package service

import (
	"context"
	"errors"

	"github.com/alecgard/taskboard/internal/model"
	"github.com/alecgard/taskboard/internal/store"
	"github.com/google/uuid"
)

// Memberships manages team members. The leader role is reserved for the user
// named by the team's lead_id.
type Memberships struct {
	s *Service
}

// Add adds a user to a team.
func (m *Memberships) Add(ctx context.Context, rawTeamID string, in model.AddMemberInput) (*model.TeamMembership, error) {
	teamID, err := parseID(rawTeamID, "team")
	if err != nil {
		return nil, err
	}
	if err := m.s.checkRole(in.Role); err != nil {
		return nil, err
	}

	membership := &model.TeamMembership{
		ID:     uuid.New(),
		TeamID: teamID,
		UserID: in.UserID,
		Role:   in.Role,
	}
	err = m.s.tx(ctx, func(tx store.Tx) error {
		team, err := tx.GetTeam(ctx, teamID)
		if err != nil {
			return storeErr(err, "team")
		}
		if err := requireUser(ctx, tx, &in.UserID); err != nil {
			return err
		}
		if in.Role == model.MembershipLeader && !sameID(team.LeadID, &in.UserID) {
			return invalid("role", "the 'leader' role is reserved for the team lead; set lead_id on the team instead")
		}

		_, err = tx.GetMembership(ctx, teamID, in.UserID)
		switch {
		case err == nil:
			return conflict("user_id", "user is already a member of this team")
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		return storeErr(tx.CreateMembership(ctx, membership), "membership")
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// List returns the members of a team.
func (m *Memberships) List(ctx context.Context, rawTeamID string) ([]*model.TeamMembership, error) {
	teamID, err := parseID(rawTeamID, "team")
	if err != nil {
		return nil, err
	}
	var members []*model.TeamMembership
	err = m.s.tx(ctx, func(tx store.Tx) error {
		if err := requireTeam(ctx, tx, &teamID); err != nil {
			return err
		}
		var err error
		members, err = tx.ListMemberships(ctx, teamID)
		return err
	})
	return members, err
}

// Get returns a single membership.
func (m *Memberships) Get(ctx context.Context, rawTeamID, rawUserID string) (*model.TeamMembership, error) {
	var membership *model.TeamMembership
	err := m.within(ctx, rawTeamID, rawUserID, func(tx store.Tx, _ *model.Team, mm *model.TeamMembership) error {
		membership = mm
		return nil
	})
	return membership, err
}

// Update changes a member's role. The lead cannot be moved off the leader
// role while they are the lead.
func (m *Memberships) Update(ctx context.Context, rawTeamID, rawUserID string, in model.UpdateMemberInput) (*model.TeamMembership, error) {
	if err := m.s.checkRole(in.Role); err != nil {
		return nil, err
	}
	var membership *model.TeamMembership
	err := m.within(ctx, rawTeamID, rawUserID, func(tx store.Tx, team *model.Team, mm *model.TeamMembership) error {
		isLead := sameID(team.LeadID, &mm.UserID)
		switch {
		case isLead && in.Role != model.MembershipLeader:
			return invariant("team leader must keep the 'leader' role; reassign lead_id first")
		case !isLead && in.Role == model.MembershipLeader:
			return invalid("role", "the 'leader' role is reserved for the team lead; set lead_id on the team instead")
		}
		mm.Role = in.Role
		membership = mm
		return storeErr(tx.UpdateMembership(ctx, mm), "membership")
	})
	return membership, err
}

// Remove deletes a membership. The current lead cannot be removed.
func (m *Memberships) Remove(ctx context.Context, rawTeamID, rawUserID string) (*model.TeamMembership, error) {
	var membership *model.TeamMembership
	err := m.within(ctx, rawTeamID, rawUserID, func(tx store.Tx, team *model.Team, mm *model.TeamMembership) error {
		if sameID(team.LeadID, &mm.UserID) {
			return invariant("team leader must be reassigned before removal")
		}
		membership = mm
		return storeErr(tx.DeleteMembership(ctx, mm.ID), "membership")
	})
	return membership, err
}

// within resolves the team and membership named by the path and runs fn in
// the same transaction.
func (m *Memberships) within(ctx context.Context, rawTeamID, rawUserID string, fn func(tx store.Tx, team *model.Team, mm *model.TeamMembership) error) error {
	teamID, err := parseID(rawTeamID, "team")
	if err != nil {
		return err
	}
	userID, err := parseID(rawUserID, "membership")
	if err != nil {
		return err
	}
	return m.s.tx(ctx, func(tx store.Tx) error {
		team, err := tx.GetTeam(ctx, teamID)
		if err != nil {
			return storeErr(err, "team")
		}
		mm, err := tx.GetMembership(ctx, teamID, userID)
		if err != nil {
			return storeErr(err, "membership")
		}
		return fn(tx, team, mm)
	})
}
