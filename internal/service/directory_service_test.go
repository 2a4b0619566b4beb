package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/smart-edu-api/internal/models"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

type mockStudentRepo struct {
	items   map[string]models.Student
	order   []string
	listErr error
	updated int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{items: map[string]models.Student{}}
}

func (m *mockStudentRepo) List(_ context.Context, search string) ([]models.Student, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []models.Student{}
	for _, id := range m.order {
		s, ok := m.items[id]
		if !ok {
			continue
		}
		if search == "" || strings.Contains(strings.ToLower(s.Name), strings.ToLower(search)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (m *mockStudentRepo) ExistsByEmail(_ context.Context, email, excludeID string) (bool, error) {
	for id, s := range m.items {
		if s.Email == email && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(_ context.Context, record *models.Student) error {
	record.ID = "s" + string(rune('0'+len(m.order)+1))
	m.items[record.ID] = *record
	m.order = append(m.order, record.ID)
	return nil
}

func (m *mockStudentRepo) Update(_ context.Context, record *models.Student) error {
	m.items[record.ID] = *record
	m.updated++
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

func (m *mockStudentRepo) Count(_ context.Context) (int, error) {
	return len(m.items), nil
}

func newStudentService(repo *mockStudentRepo) *DirectoryService[models.Student, *models.Student] {
	svc := NewDirectoryService[models.Student](repo, "students", NewMetricsService(), nil)
	svc.hashCost = bcrypt.MinCost
	return svc
}

func TestDirectoryServiceRegisterHashesPassword(t *testing.T) {
	repo := newMockStudentRepo()
	svc := newStudentService(repo)

	created, err := svc.Register(context.Background(), &models.Student{
		Account: models.Account{Email: " Alice@Example.com ", Password: "secret"},
		Name:    "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.Empty(t, created.Password)
	assert.NotEmpty(t, created.PasswordHash)
	assert.True(t, passwordMatches(created.Base(), "secret"))
	assert.False(t, passwordMatches(created.Base(), "wrong"))
	assert.Equal(t, "students", svc.Kind())
}

func TestDirectoryServiceRegisterValidation(t *testing.T) {
	repo := newMockStudentRepo()
	svc := newStudentService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, &models.Student{Name: "Alice"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Register(ctx, &models.Student{Account: models.Account{Email: "not-an-email"}, Name: "Alice"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Register(ctx, &models.Student{Account: models.Account{Email: "a@example.com"}})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Register(ctx, &models.Student{Account: models.Account{Email: "a@example.com"}, Name: "A"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, &models.Student{Account: models.Account{Email: "A@example.com"}, Name: "B"})
	require.Error(t, err)
	assert.Equal(t, "email already registered", appErrors.FromError(err).Message)
}

func TestDirectoryServiceUpdateMergesPatch(t *testing.T) {
	repo := newMockStudentRepo()
	svc := newStudentService(repo)
	ctx := context.Background()

	created, err := svc.Register(ctx, &models.Student{
		Account: models.Account{Email: "a@example.com", Password: "secret", Department: "Science"},
		Name:    "Alice", Address: "Main St",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, []byte(`{"address":"Second St","id":"hijack"}`))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Second St", updated.Address)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "Science", updated.Department)
	assert.True(t, passwordMatches(updated.Base(), "secret"), "password hash must survive a patch")

	updated, err = svc.Update(ctx, created.ID, []byte(`{"password":"changed"}`))
	require.NoError(t, err)
	assert.True(t, passwordMatches(updated.Base(), "changed"))
	assert.Equal(t, 2, repo.updated)
}

func TestDirectoryServiceUpdateErrors(t *testing.T) {
	repo := newMockStudentRepo()
	svc := newStudentService(repo)
	ctx := context.Background()

	_, err := svc.Update(ctx, "missing", []byte(`{}`))
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)

	first, err := svc.Register(ctx, &models.Student{Account: models.Account{Email: "a@example.com"}, Name: "A"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, &models.Student{Account: models.Account{Email: "b@example.com"}, Name: "B"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, first.ID, []byte(`not json`))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Update(ctx, first.ID, []byte(`{"email":"b@example.com"}`))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Update(ctx, first.ID, []byte(`{"name":""}`))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestDirectoryServiceListDeleteCount(t *testing.T) {
	repo := newMockStudentRepo()
	svc := newStudentService(repo)
	ctx := context.Background()

	for _, name := range []string{"Alice", "Bob"} {
		_, err := svc.Register(ctx, &models.Student{Account: models.Account{Email: strings.ToLower(name) + "@example.com"}, Name: name})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, "ali")
	require.NoError(t, err)
	require.Len(t, list, 1)

	total, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	require.NoError(t, svc.Delete(ctx, list[0].ID))
	err = svc.Delete(ctx, list[0].ID)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)

	repo.listErr = errors.New("db down")
	_, err = svc.List(ctx, "")
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
}

func passwordMatches(account *models.Account, password string) bool {
	return account.PasswordHash != "" &&
		bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) == nil
}
