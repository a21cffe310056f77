package user

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/chikoro/core"
)

// Roles
const (
	RoleSuperAdmin     = "SUPER_ADMIN"
	RoleAdminStaff     = "ADMIN_STAFF"
	RoleFinanceOfficer = "FINANCE_OFFICER"
	RoleTeacher        = "TEACHER"
	RoleParent         = "PARENT"
	RoleStudent        = "STUDENT"
)

var (
	AdminRoles   = []string{RoleSuperAdmin, RoleAdminStaff}
	StaffRoles   = []string{RoleSuperAdmin, RoleAdminStaff, RoleTeacher}
	FinanceRoles = []string{RoleSuperAdmin, RoleAdminStaff, RoleFinanceOfficer}
	AllRoles     = []string{RoleSuperAdmin, RoleAdminStaff, RoleFinanceOfficer, RoleTeacher, RoleParent, RoleStudent}

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleSuperAdmin: 30,
		RoleAdminStaff: 25,

		// Staff: 20 - 11
		RoleFinanceOfficer: 15,
		RoleTeacher:        11,

		// Families: 10 - 1
		RoleParent:  5,
		RoleStudent: 1,
	}

	Roles = []Role{
		{Name: "Super Admin", Value: RoleSuperAdmin},
		{Name: "Admin Staff", Value: RoleAdminStaff},
		{Name: "Finance Officer", Value: RoleFinanceOfficer},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Parent", Value: RoleParent},
		{Name: "Student", Value: RoleStudent},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func IsValidRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Role         string    `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"` // UTC
	LastLogin    null.Time `db:"last_login" json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd))
}

func (u User) HasRole(roles ...string) bool {
	return core.StringIn(u.Role, roles...)
}

func (u User) IsAdmin() bool {
	return u.HasRole(AdminRoles...)
}

// ProfileIDs links a user to the school records they act as.
type ProfileIDs struct {
	TeacherID string `db:"teacher_id" json:"teacher_id,omitempty"`
	StudentID string `db:"student_id" json:"student_id,omitempty"`
	ParentID  string `db:"parent_id" json:"parent_id,omitempty"`
}

// Profile is the current-user view returned by /auth/me and on login.
type Profile struct {
	User
	ProfileIDs
	FirstName string `db:"first_name" json:"first_name,omitempty"`
	LastName  string `db:"last_name" json:"last_name,omitempty"`
}

// Actor is the authenticated caller of an operation, as described by its access token.
type Actor struct {
	UserID string
	Email  string
	Role   string
	ProfileIDs
}

func (a Actor) HasRole(roles ...string) bool {
	return core.StringIn(a.Role, roles...)
}

func (a Actor) IsAdmin() bool {
	return a.HasRole(AdminRoles...)
}

func (a Actor) IsStaff() bool {
	return a.HasRole(StaffRoles...)
}

// Person is what gets attached to log entries about this actor.
func (a Actor) Person() core.Person {
	return core.Person{ID: a.UserID, Email: a.Email, Role: a.Role}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=SUPER_ADMIN ADMIN_STAFF FINANCE_OFFICER TEACHER PARENT STUDENT"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role)
	return validate.Struct(nu)
}

// UpdateUser defines what an admin may change on an existing User.
type UpdateUser struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	return validate.Struct(uu)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

type QueryFilter struct {
	Search   string
	Roles    []string
	IsActive *bool
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search, true /* lower */)
	roles := make([]string, 0, len(qf.Roles))
	for _, r := range qf.Roles {
		if r = core.CleanString(r); r != "" {
			roles = append(roles, r)
		}
	}
	sort.Strings(roles)
	if len(roles) == 0 {
		roles = nil
	}
	qf.Roles = roles
}
