package models

import "github.com/google/uuid"

// Student is a person enrolled (or waiting to be enrolled) at a faculty.
type Student struct {
	ID        uuid.UUID `db:"id"`
	Surname   string    `db:"surname"`
	GivenName string    `db:"given_name"`
	Email     string    `db:"email"`
	BirthDate Date      `db:"birth_date"`
	Graduated bool      `db:"graduated"`

	// FacultyName is the faculty label recorded in storage. Unassigned
	// students keep the label they were loaded with.
	FacultyName string `db:"faculty_name"`
}

// NewStudent creates a student that has not graduated yet.
func NewStudent(surname, givenName, email string, birthDate Date) *Student {
	return &Student{
		ID:        uuid.New(),
		Surname:   surname,
		GivenName: givenName,
		Email:     email,
		BirthDate: birthDate,
	}
}

// MarkGraduated flags the student as graduated. Calling it again has no effect.
func (s *Student) MarkGraduated() {
	s.Graduated = true
}

// DisplayName renders "Surname GivenName - email" for listings.
func (s Student) DisplayName() string {
	return s.Surname + " " + s.GivenName + " - " + s.Email
}
