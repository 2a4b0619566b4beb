package models

import "time"

// Account carries the fields shared by every directory record.
type Account struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Password     string    `json:"password,omitempty" db:"-"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Department   string    `json:"department" db:"department"`
	ProfileImage string    `json:"profileImage" db:"profile_image"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Base returns the account itself so generic code can reach the shared fields.
func (a *Account) Base() *Account { return a }

// DirectoryRecord is implemented by *Student, *Teacher and *Admin.
type DirectoryRecord interface {
	Base() *Account
	DisplayName() string
}

// Student is a directory entry for an enrolled learner.
type Student struct {
	Account
	Name       string `json:"name" db:"name"`
	FatherName string `json:"fatherName" db:"father_name"`
	Gender     string `json:"gender" db:"gender"`
	DOB        string `json:"dob" db:"dob"`
	Address    string `json:"address" db:"address"`
}

// DisplayName implements DirectoryRecord.
func (s *Student) DisplayName() string { return s.Name }

// Teacher is a directory entry for teaching staff.
type Teacher struct {
	Account
	Name     string `json:"name" db:"name"`
	Phone    string `json:"phone" db:"phone"`
	Position string `json:"position" db:"position"`
}

// DisplayName implements DirectoryRecord.
func (t *Teacher) DisplayName() string { return t.Name }

// Admin is a directory entry for administrative staff.
type Admin struct {
	Account
	FullName   string `json:"fullName" db:"full_name"`
	Phone      string `json:"phone" db:"phone"`
	EmployeeID string `json:"employeeId" db:"employee_id"`
}

// DisplayName implements DirectoryRecord.
func (a *Admin) DisplayName() string { return a.FullName }

// DirectoryCounts is the head count per directory.
type DirectoryCounts struct {
	Students int `json:"students"`
	Teachers int `json:"teachers"`
	Admins   int `json:"admins"`
}
