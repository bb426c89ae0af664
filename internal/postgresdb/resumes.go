package postgresdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	apperrors "resume-matcher/internal/errors"
	"resume-matcher/internal/models"
)

const resumeColumns = `r.id, r.user_id, r.name, r.email, r.phone, r.linkedin, r.github, r.summary,
	r.total_experience, r.technical_skills, r.soft_skills, r.programming_languages, r.languages, r.created_at`

// SaveResume stores a parsed resume with its sub-entities and embedding in
// one transaction.
func (s *Store) SaveResume(ctx context.Context, ownerID int64, parsed *models.ParsedResume, embedding []float32) (*models.ResumeRecord, error) {
	var rec *models.ResumeRecord

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		rec, err = insertResume(ctx, tx, ownerID, parsed, embedding)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func insertResume(ctx context.Context, tx pgx.Tx, ownerID int64, parsed *models.ParsedResume, embedding []float32) (*models.ResumeRecord, error) {
	var vec *pgvector.Vector
	if len(embedding) > 0 {
		v := pgvector.NewVector(embedding)
		vec = &v
	}

	rec := &models.ResumeRecord{
		OwnerID:        ownerID,
		Profile:        parsed.Profile,
		Experiences:    parsed.Experiences,
		Educations:     parsed.Educations,
		Projects:       parsed.Projects,
		Certifications: parsed.Certifications,
		Embedding:      embedding,
	}

	sql := `
		INSERT INTO resumes (user_id, name, email, phone, linkedin, github, summary, total_experience,
			technical_skills, soft_skills, programming_languages, languages, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
		`
	p := parsed.Profile
	err := tx.QueryRow(ctx, sql,
		ownerID, p.Name, p.Email, p.Phone, p.LinkedIn, p.GitHub, p.Summary, p.TotalExperience,
		textArray(p.TechnicalSkills), textArray(p.SoftSkills), textArray(p.ProgrammingLanguages), textArray(p.Languages),
		vec,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, apperrors.Persistence("insert resume", err)
	}

	batch := &pgx.Batch{}
	for i, e := range parsed.Experiences {
		batch.Queue(`INSERT INTO resume_experience (resume_id, position, title, summary, start_date, end_date, organization)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			rec.ID, i, e.Title, e.Summary, e.StartDate, e.EndDate, e.Organization)
	}
	for i, e := range parsed.Educations {
		batch.Queue(`INSERT INTO resume_education (resume_id, position, title, start_date, end_date, organization, grade, percentage)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			rec.ID, i, e.Title, e.StartDate, e.EndDate, e.Organization, e.Grade, e.Percentage)
	}
	for i, p := range parsed.Projects {
		batch.Queue(`INSERT INTO resume_project (resume_id, position, title, summary, start_date, end_date, technologies, programming_languages)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			rec.ID, i, p.Title, p.Summary, p.StartDate, p.EndDate, textArray(p.Technologies), textArray(p.ProgrammingLanguages))
	}
	for i, c := range parsed.Certifications {
		batch.Queue(`INSERT INTO resume_certification (resume_id, position, title, organization, end_date)
			VALUES ($1, $2, $3, $4, $5)`,
			rec.ID, i, c.Title, c.Organization, c.EndDate)
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return nil, apperrors.Persistence("insert resume details", err)
		}
	}

	return rec, nil
}

// ResumeByID returns the full record including sub-entities.
func (s *Store) ResumeByID(ctx context.Context, id int64) (*models.ResumeRecord, error) {
	sql := `SELECT ` + resumeColumns + ` FROM resumes r WHERE r.id = $1`

	rec, err := scanResume(s.Pool.QueryRow(ctx, sql, id))
	if err != nil {
		return nil, notFoundOr(err, "resume not found", "select resume")
	}

	if err := s.loadDetails(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ResumesByOwner lists summary records of one owner.
func (s *Store) ResumesByOwner(ctx context.Context, ownerID int64) ([]models.ResumeRecord, error) {
	sql := `SELECT ` + resumeColumns + ` FROM resumes r WHERE r.user_id = $1 ORDER BY r.id`

	return s.queryResumes(ctx, sql, ownerID)
}

// PublicResumes lists summary records owned by candidate users.
func (s *Store) PublicResumes(ctx context.Context) ([]models.ResumeRecord, error) {
	sql := `
		SELECT ` + resumeColumns + `
		FROM resumes r
		JOIN users u ON u.id = r.user_id
		WHERE u.role = $1
		ORDER BY r.id
		`

	return s.queryResumes(ctx, sql, string(models.RoleCandidate))
}

// EmbeddedResumes lists summary records with their embedding, skipping any
// resume that has none. Order is by id so ranking ties are stable.
func (s *Store) EmbeddedResumes(ctx context.Context) ([]models.ResumeRecord, error) {
	sql := `SELECT ` + resumeColumns + `, r.embedding FROM resumes r WHERE r.embedding IS NOT NULL ORDER BY r.id`

	rows, err := s.Pool.Query(ctx, sql)
	if err != nil {
		return nil, apperrors.Persistence("select embedded resumes", err)
	}
	defer rows.Close()

	resumes := []models.ResumeRecord{}
	for rows.Next() {
		var (
			rec models.ResumeRecord
			vec pgvector.Vector
		)
		dest := append(resumeDest(&rec), &vec)
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.Persistence("scan embedded resume", err)
		}
		rec.Embedding = vec.Slice()
		resumes = append(resumes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence("select embedded resumes", err)
	}
	return resumes, nil
}

func (s *Store) loadDetails(ctx context.Context, rec *models.ResumeRecord) error {
	rec.Experiences = []models.Experience{}
	rec.Educations = []models.Education{}
	rec.Projects = []models.Project{}
	rec.Certifications = []models.Certification{}

	rows, err := s.Pool.Query(ctx, `
		SELECT id, title, summary, start_date, end_date, organization
		FROM resume_experience WHERE resume_id = $1 ORDER BY position`, rec.ID)
	if err != nil {
		return apperrors.Persistence("select experience", err)
	}
	experiences, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Experience, error) {
		var e models.Experience
		err := row.Scan(&e.ID, &e.Title, &e.Summary, &e.StartDate, &e.EndDate, &e.Organization)
		return e, err
	})
	if err != nil {
		return apperrors.Persistence("scan experience", err)
	}
	rec.Experiences = append(rec.Experiences, experiences...)

	rows, err = s.Pool.Query(ctx, `
		SELECT id, title, start_date, end_date, organization, grade, percentage
		FROM resume_education WHERE resume_id = $1 ORDER BY position`, rec.ID)
	if err != nil {
		return apperrors.Persistence("select education", err)
	}
	educations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Education, error) {
		var e models.Education
		err := row.Scan(&e.ID, &e.Title, &e.StartDate, &e.EndDate, &e.Organization, &e.Grade, &e.Percentage)
		return e, err
	})
	if err != nil {
		return apperrors.Persistence("scan education", err)
	}
	rec.Educations = append(rec.Educations, educations...)

	rows, err = s.Pool.Query(ctx, `
		SELECT id, title, summary, start_date, end_date, technologies, programming_languages
		FROM resume_project WHERE resume_id = $1 ORDER BY position`, rec.ID)
	if err != nil {
		return apperrors.Persistence("select projects", err)
	}
	projects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Project, error) {
		var p models.Project
		err := row.Scan(&p.ID, &p.Title, &p.Summary, &p.StartDate, &p.EndDate, &p.Technologies, &p.ProgrammingLanguages)
		return p, err
	})
	if err != nil {
		return apperrors.Persistence("scan projects", err)
	}
	rec.Projects = append(rec.Projects, projects...)

	rows, err = s.Pool.Query(ctx, `
		SELECT id, title, organization, end_date
		FROM resume_certification WHERE resume_id = $1 ORDER BY position`, rec.ID)
	if err != nil {
		return apperrors.Persistence("select certifications", err)
	}
	certifications, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Certification, error) {
		var c models.Certification
		err := row.Scan(&c.ID, &c.Title, &c.Organization, &c.EndDate)
		return c, err
	})
	if err != nil {
		return apperrors.Persistence("scan certifications", err)
	}
	rec.Certifications = append(rec.Certifications, certifications...)

	return nil
}

func (s *Store) queryResumes(ctx context.Context, sql string, args ...any) ([]models.ResumeRecord, error) {
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.Persistence("select resumes", err)
	}
	defer rows.Close()

	resumes := []models.ResumeRecord{}
	for rows.Next() {
		rec, err := scanResume(rows)
		if err != nil {
			return nil, apperrors.Persistence("scan resume", err)
		}
		resumes = append(resumes, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence("select resumes", err)
	}
	return resumes, nil
}

func resumeDest(rec *models.ResumeRecord) []any {
	return []any{
		&rec.ID,
		&rec.OwnerID,
		&rec.Name,
		&rec.Email,
		&rec.Phone,
		&rec.LinkedIn,
		&rec.GitHub,
		&rec.Summary,
		&rec.TotalExperience,
		&rec.TechnicalSkills,
		&rec.SoftSkills,
		&rec.ProgrammingLanguages,
		&rec.Languages,
		&rec.CreatedAt,
	}
}

func scanResume(row pgx.Row) (*models.ResumeRecord, error) {
	var rec models.ResumeRecord
	if err := row.Scan(resumeDest(&rec)...); err != nil {
		return nil, err
	}
	return &rec, nil
}

// textArray keeps NOT NULL text[] columns from receiving NULL.
func textArray(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
