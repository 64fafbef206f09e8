package postgres

import (
	"context"

	"github.com/alecgard/taskboard/internal/model"
	"github.com/google/uuid"
)

const teamColumns = `id, name, description, lead_id, created_at`

func scanTeam(scan func(dest ...any) error) (*model.Team, error) {
	t := &model.Team{}
	if err := scan(&t.ID, &t.Name, &t.Description, &t.LeadID, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (x *tx) CreateTeam(ctx context.Context, t *model.Team) error {
	_, err := x.q.Exec(ctx,
		`INSERT INTO teams (id, name, description, lead_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Name, t.Description, t.LeadID, t.CreatedAt,
	)
	return mapErr("creating team", err)
}

func (x *tx) GetTeam(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	t, err := scanTeam(x.q.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id).Scan)
	if err != nil {
		return nil, mapErr("getting team", err)
	}
	return t, nil
}

func (x *tx) ListTeams(ctx context.Context) ([]*model.Team, error) {
	rows, err := x.q.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY created_at, id`)
	if err != nil {
		return nil, mapErr("listing teams", err)
	}
	defer rows.Close()

	var teams []*model.Team
	for rows.Next() {
		t, err := scanTeam(rows.Scan)
		if err != nil {
			return nil, mapErr("scanning team row", err)
		}
		teams = append(teams, t)
	}
	return teams, mapErr("listing teams", rows.Err())
}

func (x *tx) UpdateTeam(ctx context.Context, t *model.Team) error {
	return x.execOne(ctx, "updating team",
		`UPDATE teams SET name = $2, description = $3, lead_id = $4 WHERE id = $1`,
		t.ID, t.Name, t.Description, t.LeadID,
	)
}

func (x *tx) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	return x.execOne(ctx, "deleting team", `DELETE FROM teams WHERE id = $1`, id)
}

const membershipColumns = `id, team_id, user_id, role`

func scanMembership(scan func(dest ...any) error) (*model.TeamMembership, error) {
	m := &model.TeamMembership{}
	if err := scan(&m.ID, &m.TeamID, &m.UserID, &m.Role); err != nil {
		return nil, err
	}
	return m, nil
}

func (x *tx) CreateMembership(ctx context.Context, m *model.TeamMembership) error {
	_, err := x.q.Exec(ctx,
		`INSERT INTO team_memberships (id, team_id, user_id, role) VALUES ($1, $2, $3, $4)`,
		m.ID, m.TeamID, m.UserID, m.Role,
	)
	return mapErr("creating membership", err)
}

func (x *tx) GetMembership(ctx context.Context, teamID, userID uuid.UUID) (*model.TeamMembership, error) {
	m, err := scanMembership(x.q.QueryRow(ctx,
		`SELECT `+membershipColumns+` FROM team_memberships WHERE team_id = $1 AND user_id = $2`,
		teamID, userID,
	).Scan)
	if err != nil {
		return nil, mapErr("getting membership", err)
	}
	return m, nil
}

func (x *tx) ListMemberships(ctx context.Context, teamID uuid.UUID) ([]*model.TeamMembership, error) {
	rows, err := x.q.Query(ctx,
		`SELECT `+membershipColumns+` FROM team_memberships WHERE team_id = $1 ORDER BY created_at, id`,
		teamID,
	)
	if err != nil {
		return nil, mapErr("listing memberships", err)
	}
	defer rows.Close()

	var members []*model.TeamMembership
	for rows.Next() {
		m, err := scanMembership(rows.Scan)
		if err != nil {
			return nil, mapErr("scanning membership row", err)
		}
		members = append(members, m)
	}
	return members, mapErr("listing memberships", rows.Err())
}

func (x *tx) UpdateMembership(ctx context.Context, m *model.TeamMembership) error {
	return x.execOne(ctx, "updating membership",
		`UPDATE team_memberships SET role = $2 WHERE id = $1`, m.ID, m.Role)
}

func (x *tx) DeleteMembership(ctx context.Context, id uuid.UUID) error {
	return x.execOne(ctx, "deleting membership", `DELETE FROM team_memberships WHERE id = $1`, id)
}
