package identity

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// Profile is the identity data every role shares.
type Profile struct {
	ID           int
	Name         string
	Email        string
	PasswordHash string
}

// User is implemented by *Student, *Instructor and *Admin.
type User interface {
	Base() *Profile
	Role() Role
	// Key is the natural login key: NIM, NIDN or username.
	Key() string
}

type Student struct {
	Profile
	NIM     string
	Program string
	Cohort  int
}

func (s *Student) Base() *Profile { return &s.Profile }
func (s *Student) Role() Role     { return RoleStudent }
func (s *Student) Key() string    { return s.NIM }

type Instructor struct {
	Profile
	NIDN       string
	Department string
}

func (i *Instructor) Base() *Profile { return &i.Profile }
func (i *Instructor) Role() Role     { return RoleInstructor }
func (i *Instructor) Key() string    { return i.NIDN }

type Admin struct {
	Profile
	Username string
}

func (a *Admin) Base() *Profile { return &a.Profile }
func (a *Admin) Role() Role     { return RoleAdmin }
func (a *Admin) Key() string    { return a.Username }
