package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hospital-ops-api/internal/models"
)

// DoctorRepository reads the doctor directory. Doctors are reference data for
// calendar selection; ownership lives in the staff system.
type DoctorRepository struct {
	db *sqlx.DB
}

// NewDoctorRepository constructs a doctor repository.
func NewDoctorRepository(db *sqlx.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

// List returns doctors matching the filter plus the total count.
func (r *DoctorRepository) List(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, int, error) {
	base := "FROM doctors"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Specialty != "" {
		where = append(where, fmt.Sprintf("specialty = $%d", len(args)+1))
		args = append(args, filter.Specialty)
	}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	whereClause := ""
	for i, cond := range where {
		if i == 0 {
			whereClause = " WHERE " + cond
			continue
		}
		whereClause += " AND " + cond
	}

	countQuery := "SELECT COUNT(*) " + base + whereClause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count doctors: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	query := fmt.Sprintf(
		"SELECT id, name, specialty, active, created_at, updated_at %s%s ORDER BY name ASC LIMIT $%d OFFSET $%d",
		base, whereClause, len(args)+1, len(args)+2,
	)
	args = append(args, size, (page-1)*size)

	var doctors []models.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, total, nil
}

// FindByID returns one doctor.
func (r *DoctorRepository) FindByID(ctx context.Context, id string) (*models.Doctor, error) {
	const query = `SELECT id, name, specialty, active, created_at, updated_at FROM doctors WHERE id = $1`
	var doctor models.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, id); err != nil {
		return nil, err
	}
	return &doctor, nil
}
