package models

// Faculty represents a faculty at the university together with its roster
type Faculty struct {
	Name         string `db:"name"`
	Abbreviation string `db:"abbreviation"`
	Domain       string `db:"domain"`

	students []*Student
}

// NewFaculty creates a faculty with an empty roster
func NewFaculty(name, abbreviation, domain string) *Faculty {
	return &Faculty{
		Name:         name,
		Abbreviation: abbreviation,
		Domain:       domain,
	}
}

// AddStudent appends s to the roster. Duplicates are not checked.
func (f *Faculty) AddStudent(s *Student) {
	s.FacultyName = f.Name
	f.students = append(f.students, s)
}

// Students returns a copy of the roster in insertion order.
func (f *Faculty) Students() []Student {
	out := make([]Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, *s)
	}
	return out
}

// Roster exposes the owned students for persistence code that must not copy them.
func (f *Faculty) Roster() []*Student {
	return f.students
}

// Len returns the roster size.
func (f *Faculty) Len() int {
	return len(f.students)
}

// FindBySurname returns the first student with the exact surname and the
// number of students sharing it.
func (f *Faculty) FindBySurname(surname string) (*Student, int) {
	var first *Student
	matches := 0
	for _, s := range f.students {
		if s.Surname != surname {
			continue
		}
		if first == nil {
			first = s
		}
		matches++
	}
	return first, matches
}
