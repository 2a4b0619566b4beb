package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-edu-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var studentColumns = []string{"id", "email", "password_hash", "department", "profile_image", "created_at", "updated_at", "name", "father_name", "gender", "dob", "address"}

func TestDirectoryRepositoryListWithSearch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentColumns).
		AddRow("s1", "alice@example.com", "hash", "Science", "", now, now, "Alice", "Bob", "F", "2008-01-02", "Main St")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, department, profile_image, created_at, updated_at, name, father_name, gender, dob, address FROM students WHERE (LOWER(name) LIKE $1 OR LOWER(email) LIKE $1) ORDER BY created_at DESC")).
		WithArgs("%ali%").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), " Ali ")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Alice", list[0].Name)
	assert.Equal(t, "alice@example.com", list[0].Email)
	assert.Equal(t, "hash", list[0].PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepositoryListAdminsWithoutSearch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, department, profile_image, created_at, updated_at, full_name, phone, employee_id FROM admins ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	list, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery("FROM teachers WHERE id = \\$1").WithArgs("t1").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "t1")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE LOWER(email) = LOWER($1) AND id <> $2 LIMIT 1")).
		WithArgs("a@example.com", "t1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("b@example.com").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByEmail(context.Background(), "a@example.com", "t1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(context.Background(), "b@example.com", "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepositoryCreateAssignsIdentity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec("INSERT INTO teachers \\(id, email, password_hash, department, profile_image, created_at, updated_at, name, phone, position\\)").
		WithArgs(sqlmock.AnyArg(), "t@example.com", "hash", "", "", sqlmock.AnyArg(), sqlmock.AnyArg(), "Prof. John", "", "Lecturer").
		WillReturnResult(sqlmock.NewResult(1, 1))

	teacher := &models.Teacher{Account: models.Account{Email: "t@example.com", PasswordHash: "hash"}, Name: "Prof. John", Position: "Lecturer"}
	require.NoError(t, repo.Create(context.Background(), teacher))
	assert.NotEmpty(t, teacher.ID)
	assert.False(t, teacher.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepositoryUpdateDeleteCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE admins SET email = ?, password_hash = ?, department = ?, profile_image = ?, updated_at = ?, full_name = ?, phone = ?, employee_id = ? WHERE id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM admins WHERE id = $1")).WithArgs("a1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM admins WHERE id = $1")).WithArgs("a2").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM admins")).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	admin := &models.Admin{Account: models.Account{ID: "a1", Email: "a@example.com"}, FullName: "Admin"}
	require.NoError(t, repo.Update(context.Background(), admin))

	deleted, err := repo.Delete(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), "a2")
	require.NoError(t, err)
	assert.False(t, deleted)

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
