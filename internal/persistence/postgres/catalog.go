package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/inno-sport-inh/backend/internal/domain"
)

// ListSports lists every sport discipline.
func (r *Repository) ListSports(ctx context.Context) ([]domain.Sport, error) {
	const query = `SELECT id, name, description FROM sports ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Sport
	for rows.Next() {
		var s domain.Sport
		if err := rows.Scan(&s.ID, &s.Name, &s.Description); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSport loads one sport.
func (r *Repository) GetSport(ctx context.Context, sportID int) (*domain.Sport, error) {
	const query = `SELECT id, name, description FROM sports WHERE id=$1`

	var s domain.Sport
	err := r.pool.QueryRow(ctx, query, sportID).Scan(&s.ID, &s.Name, &s.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Semesters lists semesters, optionally only the current one.
func (r *Repository) Semesters(ctx context.Context, currentOnly bool) ([]domain.Semester, error) {
	query := `SELECT id, name, starts_on, ends_on, required_hours,
        now()::date BETWEEN starts_on AND ends_on FROM semesters`
	if currentOnly {
		query += ` WHERE now()::date BETWEEN starts_on AND ends_on`
	}
	query += ` ORDER BY starts_on DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Semester
	for rows.Next() {
		var s domain.Semester
		if err := rows.Scan(&s.ID, &s.Name, &s.Start, &s.End, &s.Hours, &s.Current); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CurrentSemester loads the semester containing today.
func (r *Repository) CurrentSemester(ctx context.Context) (*domain.Semester, error) {
	const query = `SELECT id, name, starts_on, ends_on, required_hours, true
        FROM semesters WHERE now()::date BETWEEN starts_on AND ends_on
        ORDER BY starts_on DESC LIMIT 1`

	var s domain.Semester
	err := r.pool.QueryRow(ctx, query).Scan(&s.ID, &s.Name, &s.Start, &s.End, &s.Hours, &s.Current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSemesterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// MedicalGroups lists the medical group dictionary.
func (r *Repository) MedicalGroups(ctx context.Context) ([]domain.MedicalGroup, error) {
	const query = `SELECT id, name, description FROM medical_groups ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MedicalGroup
	for rows.Next() {
		var m domain.MedicalGroup
		if err := rows.Scan(&m.ID, &m.Name, &m.Description); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveReference stores an uploaded medical reference and returns its id.
func (r *Repository) SaveReference(ctx context.Context, ref domain.Reference) (int, error) {
	const stmt = `INSERT INTO medical_references (student_id, link, hours, starts_on, ends_on, uploaded_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var id int
	err := r.pool.QueryRow(ctx, stmt, ref.StudentID, ref.Link, ref.Hours, ref.Start, ref.End, ref.UploadedAt).Scan(&id)
	return id, err
}

// SelfSportTypes lists accepted self-sport categories.
func (r *Repository) SelfSportTypes(ctx context.Context) ([]domain.SelfSportType, error) {
	const query = `SELECT id, name, max_hours FROM self_sport_types ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SelfSportType
	for rows.Next() {
		var t domain.SelfSportType
		if err := rows.Scan(&t.ID, &t.Name, &t.MaxHours); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveSelfSportReport stores a self-sport claim and returns its id.
func (r *Repository) SaveSelfSportReport(ctx context.Context, report domain.SelfSportReport) (int, error) {
	const stmt = `INSERT INTO self_sport_reports (student_id, type_id, link, hours, status, uploaded_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var id int
	err := r.pool.QueryRow(ctx, stmt,
		report.StudentID, report.TypeID, report.Link, report.Hours, report.Status, report.UploadedAt).Scan(&id)
	return id, err
}

// FitnessTestExercises lists the fitness test exercise dictionary.
func (r *Repository) FitnessTestExercises(ctx context.Context) ([]domain.FitnessTestExercise, error) {
	const query = `SELECT id, name, unit, max_score FROM fitness_test_exercises ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FitnessTestExercise
	for rows.Next() {
		var e domain.FitnessTestExercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Unit, &e.MaxScore); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// FitnessTestSessions lists every fitness test session.
func (r *Repository) FitnessTestSessions(ctx context.Context) ([]domain.FitnessTestSession, error) {
	const query = `SELECT id, semester, held_on, retake FROM fitness_test_sessions ORDER BY held_on DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FitnessTestSession
	for rows.Next() {
		var s domain.FitnessTestSession
		if err := rows.Scan(&s.ID, &s.Semester, &s.Date, &s.Retake); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FitnessTestSession loads one session.
func (r *Repository) FitnessTestSession(ctx context.Context, sessionID int) (*domain.FitnessTestSession, error) {
	const query = `SELECT id, semester, held_on, retake FROM fitness_test_sessions WHERE id=$1`

	var s domain.FitnessTestSession
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(&s.ID, &s.Semester, &s.Date, &s.Retake)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FitnessTestResults lists a student's results across sessions.
func (r *Repository) FitnessTestResults(ctx context.Context, studentID int) ([]domain.FitnessTestResult, error) {
	const query = `SELECT res.session_id, res.exercise_id, ex.name, ex.unit, res.student_id, res.value, res.score
        FROM fitness_test_results res
        JOIN fitness_test_exercises ex ON ex.id = res.exercise_id
        WHERE res.student_id=$1
        ORDER BY res.session_id DESC, res.exercise_id`

	return r.queryFitnessResults(ctx, query, studentID)
}

func (r *Repository) queryFitnessResults(ctx context.Context, query string, args ...interface{}) ([]domain.FitnessTestResult, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FitnessTestResult
	for rows.Next() {
		var res domain.FitnessTestResult
		if err := rows.Scan(&res.SessionID, &res.ExerciseID, &res.Exercise, &res.Unit, &res.StudentID, &res.Value, &res.Score); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// CreateFitnessTestSession stores a new session and returns its id.
func (r *Repository) CreateFitnessTestSession(ctx context.Context, session domain.FitnessTestSession) (int, error) {
	const stmt = `INSERT INTO fitness_test_sessions (semester, held_on, retake)
        VALUES ($1, $2, $3) RETURNING id`

	var id int
	err := r.pool.QueryRow(ctx, stmt, session.Semester, session.Date, session.Retake).Scan(&id)
	return id, err
}

// SaveFitnessTestResults upserts the session's results in one transaction.
func (r *Repository) SaveFitnessTestResults(ctx context.Context, sessionID int, results []domain.FitnessTestResult) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const stmt = `INSERT INTO fitness_test_results (session_id, exercise_id, student_id, value, score)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (session_id, exercise_id, student_id)
        DO UPDATE SET value = EXCLUDED.value, score = EXCLUDED.score`

	for _, res := range results {
		if _, err := tx.Exec(ctx, stmt, sessionID, res.ExerciseID, res.StudentID, res.Value, res.Score); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Measurements lists the tracked measurement dictionary.
func (r *Repository) Measurements(ctx context.Context) ([]domain.Measurement, error) {
	const query = `SELECT id, name, unit FROM measurements ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Measurement
	for rows.Next() {
		var m domain.Measurement
		if err := rows.Scan(&m.ID, &m.Name, &m.Unit); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MeasurementResults lists a student's recorded samples.
func (r *Repository) MeasurementResults(ctx context.Context, studentID int) ([]domain.MeasurementResult, error) {
	const query = `SELECT res.measurement_id, m.name, m.unit, res.student_id, res.value, res.approved_at
        FROM measurement_results res
        JOIN measurements m ON m.id = res.measurement_id
        WHERE res.student_id=$1
        ORDER BY res.approved_at DESC`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MeasurementResult
	for rows.Next() {
		var res domain.MeasurementResult
		if err := rows.Scan(&res.MeasurementID, &res.Measurement, &res.Unit, &res.StudentID, &res.Value, &res.ApprovedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// SaveMeasurementResult stores one measurement sample.
func (r *Repository) SaveMeasurementResult(ctx context.Context, result domain.MeasurementResult) error {
	const stmt = `INSERT INTO measurement_results (measurement_id, student_id, value, approved_at)
        VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, stmt, result.MeasurementID, result.StudentID, result.Value, result.ApprovedAt)
	return err
}

// AttendanceAnalytics aggregates attendance figures over one semester.
func (r *Repository) AttendanceAnalytics(ctx context.Context, semesterID int) (domain.AttendanceAnalytics, error) {
	out := domain.AttendanceAnalytics{SemesterID: semesterID}

	const query = `WITH totals AS (
            SELECT e.student_id, COALESCE(sum(a.hours), 0) AS hours,
                count(a.training_id) AS checkins
            FROM enrollments e
            JOIN groups g ON g.id = e.group_id
            LEFT JOIN trainings t ON t.group_id = g.id
            LEFT JOIN attendance a ON a.training_id = t.id AND a.student_id = e.student_id
            WHERE g.semester_id=$1
            GROUP BY e.student_id
        )
        SELECT count(*),
            (SELECT count(*) FROM trainings t JOIN groups g ON g.id = t.group_id WHERE g.semester_id=$1),
            COALESCE(sum(checkins), 0),
            COALESCE(avg(hours), 0),
            COALESCE(percentile_cont(0.5) WITHIN GROUP (ORDER BY hours), 0),
            CASE WHEN count(*) = 0 THEN 0
                ELSE count(*) FILTER (WHERE hours > 0)::float / count(*) END
        FROM totals`

	err := r.pool.QueryRow(ctx, query, semesterID).Scan(
		&out.Students, &out.TrainingsHeld, &out.CheckIns, &out.AverageHours, &out.MedianHours, &out.AttendanceShare,
	)
	if err != nil {
		return out, err
	}
	return out, nil
}
