package postgresdb

import (
	"context"

	"resume-matcher/internal/models"
)

func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	sql := `SELECT id, role, name, email FROM users WHERE id = $1`

	var (
		u    models.User
		role string
	)
	if err := s.Pool.QueryRow(ctx, sql, id).Scan(&u.ID, &role, &u.Name, &u.Email); err != nil {
		return nil, notFoundOr(err, "user not found", "select user")
	}
	u.Role = models.Role(role)

	return &u, nil
}

func (s *Store) OnboardingByUserID(ctx context.Context, userID int64) (*models.HROnboarding, error) {
	sql := `
		SELECT user_id, company_size, hiring_timeline, industry_focus
		FROM hr_onboarding
		WHERE user_id = $1
		`

	var o models.HROnboarding
	err := s.Pool.QueryRow(ctx, sql, userID).Scan(&o.UserID, &o.CompanySize, &o.HiringTimeline, &o.IndustryFocus)
	if err != nil {
		return nil, notFoundOr(err, "hr onboarding data not found", "select hr onboarding")
	}

	return &o, nil
}

// CreateUser inserts u and sets its id.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	sql := `INSERT INTO users (name, email, role) VALUES ($1, $2, $3) RETURNING id`

	if err := s.Pool.QueryRow(ctx, sql, u.Name, u.Email, string(u.Role)).Scan(&u.ID); err != nil {
		return notFoundOr(err, "user not found", "insert user")
	}
	return nil
}

func (s *Store) SaveOnboarding(ctx context.Context, o *models.HROnboarding) error {
	sql := `
		INSERT INTO hr_onboarding (user_id, company_size, hiring_timeline, industry_focus)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET company_size = EXCLUDED.company_size,
			hiring_timeline = EXCLUDED.hiring_timeline,
			industry_focus = EXCLUDED.industry_focus
		`

	if _, err := s.Pool.Exec(ctx, sql, o.UserID, o.CompanySize, o.HiringTimeline, o.IndustryFocus); err != nil {
		return notFoundOr(err, "user not found", "save hr onboarding")
	}
	return nil
}
