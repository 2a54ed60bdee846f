package identity

import (
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
)

// Directory indexes users by their natural keys. Insertion order is kept
// for listings.
type Directory struct {
	students    map[string]*Student
	instructors map[string]*Instructor
	admins      map[string]*Admin

	studentOrder    []*Student
	instructorOrder []*Instructor
}

func NewDirectory() *Directory {
	return &Directory{
		students:    make(map[string]*Student),
		instructors: make(map[string]*Instructor),
		admins:      make(map[string]*Admin),
	}
}

// Add stores a user under its role and key.
func (d *Directory) Add(u User) error {
	if u.Key() == "" {
		return apperr.New(apperr.CodeMissingField, "user key is required")
	}
	if _, err := d.Lookup(u.Role(), u.Key()); err == nil {
		return apperr.WithMetadata(apperr.CodeDuplicateUser,
			"user already exists: "+u.Key(), map[string]string{"detail": u.Key()})
	}
	switch v := u.(type) {
	case *Student:
		d.students[v.NIM] = v
		d.studentOrder = append(d.studentOrder, v)
	case *Instructor:
		d.instructors[v.NIDN] = v
		d.instructorOrder = append(d.instructorOrder, v)
	case *Admin:
		d.admins[v.Username] = v
	}
	return nil
}

func (d *Directory) StudentByNIM(nim string) (*Student, error) {
	if s, ok := d.students[nim]; ok {
		return s, nil
	}
	return nil, notFound("student", nim)
}

func (d *Directory) InstructorByNIDN(nidn string) (*Instructor, error) {
	if i, ok := d.instructors[nidn]; ok {
		return i, nil
	}
	return nil, notFound("instructor", nidn)
}

// InstructorByID resolves the foreign key stored with courses and sessions.
func (d *Directory) InstructorByID(id int) (*Instructor, error) {
	for _, i := range d.instructorOrder {
		if i.ID == id {
			return i, nil
		}
	}
	return nil, apperr.Newf(apperr.CodeUserNotFound, "instructor id %d not found", id)
}

// StudentByID resolves the foreign key stored with enrollment and grade rows.
func (d *Directory) StudentByID(id int) (*Student, error) {
	for _, s := range d.studentOrder {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, apperr.Newf(apperr.CodeUserNotFound, "student id %d not found", id)
}

func (d *Directory) AdminByUsername(username string) (*Admin, error) {
	if a, ok := d.admins[username]; ok {
		return a, nil
	}
	return nil, notFound("admin", username)
}

// Lookup resolves a key within one role.
func (d *Directory) Lookup(role Role, key string) (User, error) {
	switch role {
	case RoleStudent:
		if s, ok := d.students[key]; ok {
			return s, nil
		}
	case RoleInstructor:
		if i, ok := d.instructors[key]; ok {
			return i, nil
		}
	default:
		if a, ok := d.admins[key]; ok {
			return a, nil
		}
	}
	return nil, notFound(string(role), key)
}

func (d *Directory) Students() []*Student {
	out := make([]*Student, len(d.studentOrder))
	copy(out, d.studentOrder)
	return out
}

func (d *Directory) Instructors() []*Instructor {
	out := make([]*Instructor, len(d.instructorOrder))
	copy(out, d.instructorOrder)
	return out
}

func (d *Directory) CountStudents() int    { return len(d.studentOrder) }
func (d *Directory) CountInstructors() int { return len(d.instructorOrder) }

func notFound(kind, key string) error {
	return apperr.WithMetadata(apperr.CodeUserNotFound, kind+" not found: "+key, map[string]string{"detail": key})
}
