package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/garnizeh/helpermatch/pkg/models"
	"github.com/garnizeh/helpermatch/pkg/repository"
)

// workerFields are the profile columns written by register and edit. id,
// user_id, photo_url, status and the timestamps are managed separately.
var workerFields = append(append([]string{
	"name", "nationality", "gender", "date_of_birth", "marital_status",
	"education", "religion", "height_cm", "weight_kg", "birth_order",
	"num_brothers", "num_sisters", "num_sons", "son_ages", "num_daughters",
	"daughter_ages", "hkid", "hk_mobile", "contract_end_date",
}, models.SkillColumns...),
	"lang_mandarin", "lang_cantonese", "lang_english",
	"eats_pork", "available_sundays", "can_share_room", "share_room_notes",
	"has_tattoo", "smokes", "afraid_of_pets", "had_surgery", "surgery_details",
	"has_allergies", "allergy_details", "remark",
)

var workerSelect = `SELECT id, user_id, photo_url, ` + strings.Join(workerFields, ", ") + `, status, created_at, updated_at FROM workers`

func workerArgs(w *models.Worker) []any {
	args := []any{
		w.Name, nullString(w.Nationality), nullString(w.Gender), nullString(w.DateOfBirth), nullString(w.MaritalStatus),
		nullString(w.Education), nullString(w.Religion), nullInt(w.HeightCM), nullInt(w.WeightKG), nullInt(w.BirthOrder),
		w.NumBrothers, w.NumSisters, w.NumSons, nullString(w.SonAges), w.NumDaughters,
		nullString(w.DaughterAges), nullString(w.HKID), nullString(w.HKMobile), nullString(w.ContractEndDate),
	}
	args = append(args, w.Skills.Values()...)
	return append(args,
		nullString(w.LangMandarin), nullString(w.LangCantonese), nullString(w.LangEnglish),
		w.EatsPork, w.AvailableSundays, w.CanShareRoom, nullString(w.ShareRoomNotes),
		w.HasTattoo, w.Smokes, w.AfraidOfPets, w.HadSurgery, nullString(w.SurgeryDetails),
		w.HasAllergies, nullString(w.AllergyDetails), nullString(w.Remark),
	)
}

func workerDest(w *models.Worker) []any {
	dest := []any{
		&w.ID, &w.UserID, &w.PhotoURL,
		&w.Name, &w.Nationality, &w.Gender, &w.DateOfBirth, &w.MaritalStatus,
		&w.Education, &w.Religion, &w.HeightCM, &w.WeightKG, &w.BirthOrder,
		&w.NumBrothers, &w.NumSisters, &w.NumSons, &w.SonAges, &w.NumDaughters,
		&w.DaughterAges, &w.HKID, &w.HKMobile, &w.ContractEndDate,
	}
	dest = append(dest, w.Skills.Ptrs()...)
	return append(dest,
		&w.LangMandarin, &w.LangCantonese, &w.LangEnglish,
		&w.EatsPork, &w.AvailableSundays, &w.CanShareRoom, &w.ShareRoomNotes,
		&w.HasTattoo, &w.Smokes, &w.AfraidOfPets, &w.HadSurgery, &w.SurgeryDetails,
		&w.HasAllergies, &w.AllergyDetails, &w.Remark,
		&w.Status, &w.Created, &w.Updated,
	)
}

// RegisterWorker inserts a new worker with status pending together with its
// overseas experiences and previous duties in a single transaction.
func (r *SQLiteRepo) RegisterWorker(ctx context.Context, w *models.Worker, overseas []models.OverseasExperience, duties []models.PreviousDuty) (string, error) {
	if w == nil {
		return "", fmt.Errorf("worker is nil")
	}
	w.ID = newID()
	w.Status = models.StatusPending
	w.Created = now()
	w.Updated = w.Created

	cols := "id, user_id, photo_url, " + strings.Join(workerFields, ", ") + ", status, created_at, updated_at"
	args := append([]any{w.ID, w.UserID, nullString(w.PhotoURL)}, workerArgs(w)...)
	args = append(args, string(w.Status), w.Created, w.Updated)

	err := r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO workers (`+cols+`) VALUES (`+placeholders(len(args))+`)`, args...); err != nil {
			if isUniqueViolation(err) {
				return repository.ErrConflict
			}
			return fmt.Errorf("insert worker: %w", err)
		}
		return insertChildren(ctx, tx, w.ID, overseas, duties)
	})
	if err != nil {
		return "", err
	}

	r.logger.Debug("worker registered", slog.String("worker_id", w.ID), slog.Int("overseas", len(overseas)), slog.Int("duties", len(duties)))
	return w.ID, nil
}

// UpdateWorker rewrites the profile columns of w and replaces both child
// collections in a single transaction. Status and photo_url are untouched.
func (r *SQLiteRepo) UpdateWorker(ctx context.Context, w *models.Worker, overseas []models.OverseasExperience, duties []models.PreviousDuty) error {
	if w == nil {
		return fmt.Errorf("worker is nil")
	}
	w.Updated = now()

	set := strings.Join(workerFields, " = ?, ") + " = ?, updated_at = ?"
	args := append(workerArgs(w), w.Updated, w.ID)

	err := r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE workers SET `+set+` WHERE id = ?`, args...)
		if err != nil {
			return fmt.Errorf("update worker: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return repository.ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM overseas_experiences WHERE worker_id = ?`, w.ID); err != nil {
			return fmt.Errorf("clear overseas experiences: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM previous_duties WHERE worker_id = ?`, w.ID); err != nil {
			return fmt.Errorf("clear previous duties: %w", err)
		}
		return insertChildren(ctx, tx, w.ID, overseas, duties)
	})
	if err != nil {
		return err
	}

	r.logger.Debug("worker updated", slog.String("worker_id", w.ID), slog.Int("overseas", len(overseas)), slog.Int("duties", len(duties)))
	return nil
}

var dutyFields = append(append([]string{
	"working_country", "duration_from", "duration_to", "salary",
	"reason_to_leave", "employer_family_info",
}, models.SkillColumns...), "baby_age_range", "toddler_age_range", "children_age_range")

func insertChildren(ctx context.Context, tx *sql.Tx, workerID string, overseas []models.OverseasExperience, duties []models.PreviousDuty) error {
	for _, o := range overseas {
		if _, err := tx.ExecContext(ctx, `INSERT INTO overseas_experiences (id, worker_id, country, duration, display_order) VALUES (?, ?, ?, ?, ?)`,
			newID(), workerID, o.Country, nullString(o.Duration), o.DisplayOrder); err != nil {
			return fmt.Errorf("insert overseas experience: %w", err)
		}
	}

	dutyInsert := `INSERT INTO previous_duties (id, worker_id, job_order, ` + strings.Join(dutyFields, ", ") + `) VALUES (` + placeholders(3+len(dutyFields)) + `)`
	for _, d := range duties {
		args := []any{
			newID(), workerID, d.JobOrder,
			nullString(d.WorkingCountry), nullString(d.DurationFrom), nullString(d.DurationTo), nullString(d.Salary),
			nullString(d.ReasonToLeave), nullString(d.EmployerFamilyInfo),
		}
		args = append(args, d.Skills.Values()...)
		args = append(args, nullString(d.BabyAgeRange), nullString(d.ToddlerAgeRange), nullString(d.ChildrenAgeRange))
		if _, err := tx.ExecContext(ctx, dutyInsert, args...); err != nil {
			return fmt.Errorf("insert previous duty: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepo) getWorker(ctx context.Context, where string, arg any) (*models.Worker, error) {
	var w models.Worker
	if err := r.conn.QueryRow(ctx, workerSelect+` WHERE `+where+` = ?`, arg).Scan(workerDest(&w)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *SQLiteRepo) GetWorkerByID(ctx context.Context, id string) (*models.Worker, error) {
	return r.getWorker(ctx, "id", id)
}

func (r *SQLiteRepo) GetWorkerByUserID(ctx context.Context, userID string) (*models.Worker, error) {
	return r.getWorker(ctx, "user_id", userID)
}

func (r *SQLiteRepo) ListOverseas(ctx context.Context, workerID string) ([]models.OverseasExperience, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, worker_id, country, duration, display_order FROM overseas_experiences WHERE worker_id = ? ORDER BY display_order, rowid`, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OverseasExperience
	for rows.Next() {
		var o models.OverseasExperience
		if err := rows.Scan(&o.ID, &o.WorkerID, &o.Country, &o.Duration, &o.DisplayOrder); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) ListDuties(ctx context.Context, workerID string) ([]models.PreviousDuty, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, worker_id, job_order, `+strings.Join(dutyFields, ", ")+` FROM previous_duties WHERE worker_id = ? ORDER BY job_order, rowid`, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PreviousDuty
	for rows.Next() {
		var d models.PreviousDuty
		dest := []any{
			&d.ID, &d.WorkerID, &d.JobOrder,
			&d.WorkingCountry, &d.DurationFrom, &d.DurationTo, &d.Salary,
			&d.ReasonToLeave, &d.EmployerFamilyInfo,
		}
		dest = append(dest, d.Skills.Ptrs()...)
		dest = append(dest, &d.BabyAgeRange, &d.ToddlerAgeRange, &d.ChildrenAgeRange)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListWorkersByStatus returns workers in any of the given statuses, newest first.
func (r *SQLiteRepo) ListWorkersByStatus(ctx context.Context, statuses []models.WorkerStatus) ([]models.Worker, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}

	rows, err := r.conn.QueryRows(ctx, workerSelect+` WHERE status IN (`+placeholders(len(args))+`) ORDER BY created_at DESC, rowid DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Worker
	for rows.Next() {
		var w models.Worker
		if err := rows.Scan(workerDest(&w)...); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdatePhotoURL(ctx context.Context, workerID, url string) error {
	res, err := r.conn.Exec(ctx, `UPDATE workers SET photo_url = ?, updated_at = ? WHERE id = ?`, url, now(), workerID)
	if err != nil {
		return fmt.Errorf("update photo url: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
