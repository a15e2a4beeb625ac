package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/inno-sport-inh/backend/internal/domain"
)

// SuggestStudents searches the group's enrolled students by email or name.
func (r *Repository) SuggestStudents(ctx context.Context, groupID int, term string) ([]domain.Suggestion, error) {
	const query = `SELECT s.id, s.email, s.first_name || ' ' || s.last_name
        FROM students s
        JOIN enrollments e ON e.student_id = s.id
        WHERE e.group_id=$1
          AND (s.email ILIKE '%' || $2 || '%' OR s.first_name || ' ' || s.last_name ILIKE '%' || $2 || '%')
        ORDER BY s.last_name, s.first_name
        LIMIT 20`

	rows, err := r.pool.Query(ctx, query, groupID, term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Suggestion
	for rows.Next() {
		var s domain.Suggestion
		if err := rows.Scan(&s.StudentID, &s.Email, &s.FullName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// TrainingGrades lists the group's students with their hours for one
// training. Students without a mark appear with zero hours.
func (r *Repository) TrainingGrades(ctx context.Context, trainingID int) ([]domain.Grade, error) {
	const query = `SELECT s.id, s.email, s.first_name || ' ' || s.last_name, COALESCE(a.hours, 0)
        FROM trainings t
        JOIN enrollments e ON e.group_id = t.group_id
        JOIN students s ON s.id = e.student_id
        LEFT JOIN attendance a ON a.training_id = t.id AND a.student_id = s.id
        WHERE t.id=$1
        ORDER BY s.last_name, s.first_name`

	return r.queryGrades(ctx, query, trainingID)
}

// MarkHours upserts the submitted hours in one transaction.
func (r *Repository) MarkHours(ctx context.Context, trainingID int, marks []domain.Mark) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const stmt = `INSERT INTO attendance (training_id, student_id, hours)
        VALUES ($1, $2, $3)
        ON CONFLICT (training_id, student_id) DO UPDATE SET hours = EXCLUDED.hours`

	for _, mark := range marks {
		if _, err := tx.Exec(ctx, stmt, trainingID, mark.StudentID, mark.Hours); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// GroupReport sums each enrolled student's hours over the group's trainings.
func (r *Repository) GroupReport(ctx context.Context, groupID int) ([]domain.Grade, error) {
	const query = `SELECT s.id, s.email, s.first_name || ' ' || s.last_name,
            COALESCE((SELECT sum(a.hours) FROM attendance a
                JOIN trainings t ON t.id = a.training_id
                WHERE a.student_id = s.id AND t.group_id = e.group_id), 0)
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        WHERE e.group_id=$1
        ORDER BY s.last_name, s.first_name`

	return r.queryGrades(ctx, query, groupID)
}

func (r *Repository) queryGrades(ctx context.Context, query string, args ...interface{}) ([]domain.Grade, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Grade
	for rows.Next() {
		var g domain.Grade
		if err := rows.Scan(&g.StudentID, &g.Email, &g.FullName, &g.Hours); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// SemesterHours summarises the student's standing within one semester.
func (r *Repository) SemesterHours(ctx context.Context, studentID, semesterID int) (domain.HoursInfo, error) {
	info := domain.HoursInfo{StudentID: studentID, SemesterID: semesterID}

	const semesterQuery = `SELECT name, required_hours FROM semesters WHERE id=$1`
	err := r.pool.QueryRow(ctx, semesterQuery, semesterID).Scan(&info.SemesterName, &info.Required)
	if errors.Is(err, pgx.ErrNoRows) {
		return info, domain.ErrSemesterNotFound
	}
	if err != nil {
		return info, err
	}

	const earnedQuery = `SELECT COALESCE(sum(a.hours), 0)
        FROM attendance a
        JOIN trainings t ON t.id = a.training_id
        JOIN groups g ON g.id = t.group_id
        WHERE a.student_id=$1 AND g.semester_id=$2`
	if err := r.pool.QueryRow(ctx, earnedQuery, studentID, semesterID).Scan(&info.Earned); err != nil {
		return info, err
	}

	const selfQuery = `SELECT COALESCE(sum(r.hours), 0)
        FROM self_sport_reports r
        JOIN semesters s ON s.id=$2
        WHERE r.student_id=$1 AND r.status='approved'
          AND r.uploaded_at::date BETWEEN s.starts_on AND s.ends_on`
	if err := r.pool.QueryRow(ctx, selfQuery, studentID, semesterID).Scan(&info.SelfSport); err != nil {
		return info, err
	}

	debt, err := r.NegativeHours(ctx, studentID)
	if err != nil {
		return info, err
	}
	info.DebtFromPrior = debt
	return info, nil
}

// NegativeHours sums the student's unmet required hours over finished
// semesters.
func (r *Repository) NegativeHours(ctx context.Context, studentID int) (float64, error) {
	const query = `SELECT COALESCE(sum(GREATEST(sem.required_hours - earned.hours, 0)), 0)
        FROM semesters sem
        JOIN LATERAL (
            SELECT COALESCE(sum(a.hours), 0) AS hours
            FROM attendance a
            JOIN trainings t ON t.id = a.training_id
            JOIN groups g ON g.id = t.group_id
            WHERE a.student_id=$1 AND g.semester_id = sem.id
        ) earned ON true
        WHERE sem.ends_on < now()::date
          AND EXISTS (
              SELECT 1 FROM enrollments e
              JOIN groups g ON g.id = e.group_id
              WHERE e.student_id=$1 AND g.semester_id = sem.id)`

	var debt float64
	if err := r.pool.QueryRow(ctx, query, studentID).Scan(&debt); err != nil {
		return 0, err
	}
	return debt, nil
}

// BetterThan returns the fraction of the semester's students whose earned
// hours are strictly below the given student's.
func (r *Repository) BetterThan(ctx context.Context, studentID, semesterID int) (float64, error) {
	const query = `WITH totals AS (
            SELECT e.student_id, COALESCE(sum(a.hours), 0) AS hours
            FROM enrollments e
            JOIN groups g ON g.id = e.group_id
            LEFT JOIN trainings t ON t.group_id = g.id
            LEFT JOIN attendance a ON a.training_id = t.id AND a.student_id = e.student_id
            WHERE g.semester_id=$2
            GROUP BY e.student_id
        )
        SELECT CASE WHEN count(*) = 0 THEN 0
            ELSE count(*) FILTER (WHERE hours < (SELECT hours FROM totals WHERE student_id=$1))::float / count(*)
        END
        FROM totals`

	var fraction float64
	if err := r.pool.QueryRow(ctx, query, studentID, semesterID).Scan(&fraction); err != nil {
		return 0, err
	}
	return fraction, nil
}
