package user

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/darasahq/darasa/core"
)

// Roles
const (
	RoleStudent   = "student"
	RoleProfessor = "professor"
	RoleAdmin     = "admin"
)

var Roles = []string{RoleStudent, RoleProfessor, RoleAdmin}

type User struct {
	ID           string      `json:"id"`
	FullName     string      `json:"full_name"`
	Email        string      `json:"email"`
	Role         string      `json:"role"`
	ClassName    null.String `json:"class_name"`
	IsActive     bool        `json:"is_active"`
	PasswordHash []byte      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	LastLogin    time.Time   `json:"last_login"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// IsProfessor reports whether the user can act on the professor surface;
// admins can do everything a professor can.
func (u *User) IsProfessor() bool {
	return u.Role == RoleProfessor || u.Role == RoleAdmin
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	FullName        string `json:"full_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role" validate:"required,role"`
	ClassName       string `json:"class_name"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.FullName = core.CleanString(nu.FullName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.ClassName = core.CleanString(nu.ClassName)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Pointer / empty fields are left untouched.
type UpdateUser struct {
	FullName        string      `json:"full_name"`
	Email           string      `json:"email" validate:"omitempty,email"`
	Role            string      `json:"role" validate:"omitempty,role"`
	ClassName       null.String `json:"class_name"`
	IsActive        *bool       `json:"is_active"`
	Password        string      `json:"password" validate:"omitempty,min=8,required_with=PasswordConfirm"`
	PasswordConfirm string      `json:"password_confirm" validate:"eqfield=Password"`
}

func (uu *UpdateUser) Validate(usr User, validate *validator.Validate, svc *Service) error {
	uu.FullName = core.CleanString(uu.FullName)
	uu.Email = core.CleanString(uu.Email, true /* lower */)

	if err := validate.Struct(uu); err != nil {
		return err
	}
	if uu.Email != "" && uu.Email != usr.Email {
		return svc.checkUniqueness(uu.Email, usr)
	}
	return nil
}

// ResetUserPassword confirms a password reset initiated via RequestPasswordReset.
type ResetUserPassword struct {
	UID             string `json:"uid" validate:"required"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

// QueryFilter applies AND on available fields; Search does a case-insensitive
// match on one of FullName or Email.
type QueryFilter struct {
	Search      string    `query:"search"`
	Role        string    `query:"role"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (f *QueryFilter) Clean() {
	f.Search = core.CleanString(f.Search, true /* lower */)
	f.Role = core.CleanString(f.Role, true /* lower */)
}

var (
	roleTag  = "role"
	roleText = "invalid role"
)

// RegisterValidators registers user-specific validation tags.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, role := range Roles {
			if val == role {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)
}
