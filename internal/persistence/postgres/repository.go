// Package postgres provides the Postgres-backed persistence layer of the
// sport API.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inno-sport-inh/backend/internal/domain"
)

// Repository implements domain.Repository on top of a pgx pool.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetStudent loads one student profile.
func (r *Repository) GetStudent(ctx context.Context, studentID int) (*domain.Student, error) {
	const query = `SELECT id, email, first_name, last_name, gender, medical_group_id, sport_id, has_qr
        FROM students WHERE id=$1`

	var s domain.Student
	err := r.pool.QueryRow(ctx, query, studentID).Scan(
		&s.ID, &s.Email, &s.FirstName, &s.LastName, &s.Gender, &s.MedicalGroupID, &s.SportID, &s.HasQR,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SetHasQR updates the QR opt-in flag.
func (r *Repository) SetHasQR(ctx context.Context, studentID int, hasQR bool) error {
	return r.updateStudent(ctx, `UPDATE students SET has_qr=$2 WHERE id=$1`, studentID, hasQR)
}

// SetGender updates the stored gender.
func (r *Repository) SetGender(ctx context.Context, studentID int, gender string) error {
	return r.updateStudent(ctx, `UPDATE students SET gender=$2 WHERE id=$1`, studentID, gender)
}

// SetSport records the student's selected sport.
func (r *Repository) SetSport(ctx context.Context, studentID, sportID int) error {
	return r.updateStudent(ctx, `UPDATE students SET sport_id=$2 WHERE id=$1`, studentID, sportID)
}

func (r *Repository) updateStudent(ctx context.Context, stmt string, studentID int, value interface{}) error {
	tag, err := r.pool.Exec(ctx, stmt, studentID, value)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}

// HoursHistory lists the student's marked hours for a semester, optionally
// merged with approved self-sport reports.
func (r *Repository) HoursHistory(ctx context.Context, studentID, semesterID int, includeSelf bool) ([]domain.TrainingHours, error) {
	query := `SELECT t.id, g.name, t.custom_name, t.start_at::date, a.hours, false
        FROM attendance a
        JOIN trainings t ON t.id = a.training_id
        JOIN groups g ON g.id = t.group_id
        WHERE a.student_id=$1 AND g.semester_id=$2`
	if includeSelf {
		query += `
        UNION ALL
        SELECT r.id, st.name, '', r.uploaded_at::date, r.hours, true
        FROM self_sport_reports r
        JOIN self_sport_types st ON st.id = r.type_id
        JOIN semesters s ON s.id=$2
        WHERE r.student_id=$1 AND r.status='approved'
          AND r.uploaded_at::date BETWEEN s.starts_on AND s.ends_on`
	}
	query += ` ORDER BY 4 DESC, 1 DESC`

	return r.queryHours(ctx, query, studentID, semesterID)
}

// HoursHistoryByDate lists marked hours between two dates, inclusive.
func (r *Repository) HoursHistoryByDate(ctx context.Context, studentID int, from, to time.Time) ([]domain.TrainingHours, error) {
	const query = `SELECT t.id, g.name, t.custom_name, t.start_at::date, a.hours, false
        FROM attendance a
        JOIN trainings t ON t.id = a.training_id
        JOIN groups g ON g.id = t.group_id
        WHERE a.student_id=$1 AND t.start_at::date BETWEEN $2 AND $3
        ORDER BY t.start_at DESC, t.id DESC`

	return r.queryHours(ctx, query, studentID, from, to)
}

func (r *Repository) queryHours(ctx context.Context, query string, args ...interface{}) ([]domain.TrainingHours, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TrainingHours
	for rows.Next() {
		var h domain.TrainingHours
		if err := rows.Scan(&h.TrainingID, &h.GroupName, &h.CustomName, &h.Date, &h.Hours, &h.SelfSport); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// GetGroup loads a group together with its occupancy, allowed medical
// groups and trainer list.
func (r *Repository) GetGroup(ctx context.Context, groupID int) (*domain.Group, error) {
	const query = `SELECT g.id, g.name, g.sport_id, g.semester_id, g.capacity, g.is_club, g.accredited, g.requires_qr,
            (SELECT count(*) FROM enrollments e WHERE e.group_id = g.id)
        FROM groups g WHERE g.id=$1`

	var g domain.Group
	err := r.pool.QueryRow(ctx, query, groupID).Scan(
		&g.ID, &g.Name, &g.SportID, &g.SemesterID, &g.Capacity, &g.IsClub, &g.Accredited, &g.RequiresQR, &g.Enrolled,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	if g.AllowedMedicalGroups, err = r.queryInts(ctx,
		`SELECT medical_group_id FROM group_allowed_medical WHERE group_id=$1 ORDER BY medical_group_id`, groupID); err != nil {
		return nil, err
	}
	if g.TrainerIDs, err = r.queryInts(ctx,
		`SELECT trainer_id FROM group_trainers WHERE group_id=$1 ORDER BY trainer_id`, groupID); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Repository) queryInts(ctx context.Context, query string, args ...interface{}) ([]int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// IsEnrolled reports an active enrollment of the student in the group.
func (r *Repository) IsEnrolled(ctx context.Context, studentID, groupID int) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id=$1 AND group_id=$2)`

	var enrolled bool
	if err := r.pool.QueryRow(ctx, query, studentID, groupID).Scan(&enrolled); err != nil {
		return false, err
	}
	return enrolled, nil
}

// CountEnrollments counts the student's groups within a semester.
func (r *Repository) CountEnrollments(ctx context.Context, studentID, semesterID int) (int, error) {
	const query = `SELECT count(*) FROM enrollments e
        JOIN groups g ON g.id = e.group_id
        WHERE e.student_id=$1 AND g.semester_id=$2`

	var n int
	if err := r.pool.QueryRow(ctx, query, studentID, semesterID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Enroll inserts the enrollment while holding the group row lock so that
// concurrent enrollments cannot overshoot capacity.
func (r *Repository) Enroll(ctx context.Context, studentID, groupID int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var capacity, enrolled int
	err = tx.QueryRow(ctx,
		`SELECT capacity, (SELECT count(*) FROM enrollments WHERE group_id=$1)
         FROM groups WHERE id=$1 FOR UPDATE`, groupID).Scan(&capacity, &enrolled)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrGroupNotFound
	}
	if err != nil {
		return err
	}
	if capacity > 0 && enrolled >= capacity {
		return domain.ErrGroupFull
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO enrollments (student_id, group_id) VALUES ($1, $2)`, studentID, groupID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Unenroll removes the enrollment, reporting whether a row was removed.
func (r *Repository) Unenroll(ctx context.Context, studentID, groupID int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM enrollments WHERE student_id=$1 AND group_id=$2`, studentID, groupID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetTraining loads one training session with its check-in occupancy.
func (r *Repository) GetTraining(ctx context.Context, trainingID int) (*domain.Training, error) {
	const query = `SELECT t.id, t.group_id, g.name, t.start_at, t.end_at, t.place, t.capacity, t.custom_name,
            (SELECT count(*) FROM checkins c WHERE c.training_id = t.id)
        FROM trainings t
        JOIN groups g ON g.id = t.group_id
        WHERE t.id=$1`

	var t domain.Training
	err := r.pool.QueryRow(ctx, query, trainingID).Scan(
		&t.ID, &t.GroupID, &t.GroupName, &t.Start, &t.End, &t.Place, &t.Capacity, &t.CustomName, &t.CheckedIn,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTrainingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CheckIn inserts the check-in while holding the training row lock so
// concurrent check-ins cannot overshoot capacity.
func (r *Repository) CheckIn(ctx context.Context, studentID, trainingID int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var capacity, checkedIn int
	err = tx.QueryRow(ctx,
		`SELECT capacity, (SELECT count(*) FROM checkins WHERE training_id=$1)
         FROM trainings WHERE id=$1 FOR UPDATE`, trainingID).Scan(&capacity, &checkedIn)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrTrainingNotFound
	}
	if err != nil {
		return err
	}
	if capacity > 0 && checkedIn >= capacity {
		return domain.ErrGroupFull
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO checkins (student_id, training_id) VALUES ($1, $2)`, studentID, trainingID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CancelCheckIn removes the check-in, reporting whether a row was removed.
func (r *Repository) CancelCheckIn(ctx context.Context, studentID, trainingID int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM checkins WHERE student_id=$1 AND training_id=$2`, studentID, trainingID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SportSchedule lists the weekly slots for a sport in the current semester.
func (r *Repository) SportSchedule(ctx context.Context, sportID int) ([]domain.ScheduleEntry, error) {
	const query = `SELECT s.group_id, g.name, s.weekday, to_char(s.start_time, 'HH24:MI'), to_char(s.end_time, 'HH24:MI'), s.place
        FROM schedule s
        JOIN groups g ON g.id = s.group_id
        JOIN semesters sem ON sem.id = g.semester_id
        WHERE g.sport_id=$1 AND now()::date BETWEEN sem.starts_on AND sem.ends_on
        ORDER BY s.weekday, s.start_time`

	rows, err := r.pool.Query(ctx, query, sportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScheduleEntry
	for rows.Next() {
		var e domain.ScheduleEntry
		if err := rows.Scan(&e.GroupID, &e.GroupName, &e.Weekday, &e.Start, &e.End, &e.Place); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// StudentTrainings lists the trainings of the student's groups in a window.
func (r *Repository) StudentTrainings(ctx context.Context, studentID int, from, to time.Time) ([]domain.Training, error) {
	const query = `SELECT t.id, t.group_id, g.name, t.start_at, t.end_at, t.place, t.capacity, t.custom_name,
            (SELECT count(*) FROM checkins c WHERE c.training_id = t.id)
        FROM trainings t
        JOIN groups g ON g.id = t.group_id
        JOIN enrollments e ON e.group_id = g.id
        WHERE e.student_id=$1 AND t.start_at >= $2 AND t.start_at < $3
        ORDER BY t.start_at`

	rows, err := r.pool.Query(ctx, query, studentID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Training
	for rows.Next() {
		var t domain.Training
		if err := rows.Scan(&t.ID, &t.GroupID, &t.GroupName, &t.Start, &t.End, &t.Place, &t.Capacity, &t.CustomName, &t.CheckedIn); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
