package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smart-edu-api/internal/models"
)

var accountColumns = []string{"id", "email", "password_hash", "department", "profile_image", "created_at", "updated_at"}

// DirectoryTable describes where one kind of directory record lives.
type DirectoryTable struct {
	Name string
	// Columns lists the profile columns stored next to the account columns.
	Columns []string
	// NameColumn is matched by free text search together with email.
	NameColumn string
}

// Directory tables.
var (
	StudentsTable = DirectoryTable{Name: "students", Columns: []string{"name", "father_name", "gender", "dob", "address"}, NameColumn: "name"}
	TeachersTable = DirectoryTable{Name: "teachers", Columns: []string{"name", "phone", "position"}, NameColumn: "name"}
	AdminsTable   = DirectoryTable{Name: "admins", Columns: []string{"full_name", "phone", "employee_id"}, NameColumn: "full_name"}
)

func (t DirectoryTable) allColumns() []string {
	return append(append([]string{}, accountColumns...), t.Columns...)
}

type directoryRecord[T any] interface {
	*T
	models.DirectoryRecord
}

// DirectoryRepository persists one kind of directory record.
type DirectoryRepository[T any, PT directoryRecord[T]] struct {
	db    *sqlx.DB
	table DirectoryTable
}

// NewDirectoryRepository constructs a DirectoryRepository over table.
func NewDirectoryRepository[T any, PT directoryRecord[T]](db *sqlx.DB, table DirectoryTable) *DirectoryRepository[T, PT] {
	return &DirectoryRepository[T, PT]{db: db, table: table}
}

// NewStudentRepository constructs the students repository.
func NewStudentRepository(db *sqlx.DB) *DirectoryRepository[models.Student, *models.Student] {
	return NewDirectoryRepository[models.Student](db, StudentsTable)
}

// NewTeacherRepository constructs the teachers repository.
func NewTeacherRepository(db *sqlx.DB) *DirectoryRepository[models.Teacher, *models.Teacher] {
	return NewDirectoryRepository[models.Teacher](db, TeachersTable)
}

// NewAdminRepository constructs the admins repository.
func NewAdminRepository(db *sqlx.DB) *DirectoryRepository[models.Admin, *models.Admin] {
	return NewDirectoryRepository[models.Admin](db, AdminsTable)
}

// List returns records newest first, optionally narrowed by a case-insensitive match on name or email.
func (r *DirectoryRepository[T, PT]) List(ctx context.Context, search string) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(r.table.allColumns(), ", "), r.table.Name)
	var args []interface{}
	if search = strings.TrimSpace(search); search != "" {
		query += fmt.Sprintf(" WHERE (LOWER(%s) LIKE $1 OR LOWER(email) LIKE $1)", r.table.NameColumn)
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	query += " ORDER BY created_at DESC"

	records := []T{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table.Name, err)
	}
	return records, nil
}

// FindByID fetches a record by ID. A missing record yields sql.ErrNoRows.
func (r *DirectoryRepository[T, PT]) FindByID(ctx context.Context, id string) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", strings.Join(r.table.allColumns(), ", "), r.table.Name)
	var record T
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// ExistsByEmail checks if another record uses the same email.
func (r *DirectoryRepository[T, PT]) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE LOWER(email) = LOWER($1)", r.table.Name)
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check %s email: %w", r.table.Name, err)
	}
	return true, nil
}

// Create inserts a record, assigning its ID and timestamps.
func (r *DirectoryRepository[T, PT]) Create(ctx context.Context, record *T) error {
	account := PT(record).Base()
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	columns := r.table.allColumns()
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)", r.table.Name, strings.Join(columns, ", "), strings.Join(columns, ", :"))
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create %s: %w", r.table.Name, err)
	}
	return nil
}

// Update overwrites every stored column of the record.
func (r *DirectoryRepository[T, PT]) Update(ctx context.Context, record *T) error {
	PT(record).Base().UpdatedAt = time.Now().UTC()

	assignments := make([]string, 0, len(r.table.Columns)+5)
	for _, column := range append([]string{"email", "password_hash", "department", "profile_image", "updated_at"}, r.table.Columns...) {
		assignments = append(assignments, fmt.Sprintf("%s = :%s", column, column))
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", r.table.Name, strings.Join(assignments, ", "))
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update %s: %w", r.table.Name, err)
	}
	return nil
}

// Delete removes a record and reports whether it existed.
func (r *DirectoryRepository[T, PT]) Delete(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.table.Name)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", r.table.Name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", r.table.Name, err)
	}
	return affected > 0, nil
}

// Count returns the number of stored records.
func (r *DirectoryRepository[T, PT]) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM %s", r.table.Name)); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.table.Name, err)
	}
	return total, nil
}
