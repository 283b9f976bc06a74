package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// requestValidate is the shared validator for request bodies.
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	requestValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = requestValidate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return Role(fl.Field().String()).Valid()
	})
	_ = requestValidate.RegisterValidation("projectstatus", func(fl validator.FieldLevel) bool {
		return ProjectStatus(fl.Field().String()).Valid()
	})
	// tips are bounded in characters, not bytes
	_ = requestValidate.RegisterValidation("maxrunes", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) <= MaxTipLength
	})
}

// ErrorResponse is the single error envelope returned by every endpoint.
type ErrorResponse struct {
	Message string `json:"message"`
}

// SignupRequest is the request body for account creation
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,max=100"`
	Role     Role   `json:"role" validate:"required,role"`
}

// Normalize trims and lowercases fields in place.
func (r *SignupRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.Role = Role(strings.ToLower(strings.TrimSpace(string(r.Role))))
}

// Validate checks the request against its schema.
func (r *SignupRequest) Validate() error {
	return validationError(requestValidate.Struct(r))
}

// SigninRequest is the request body for signin
type SigninRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Normalize trims and lowercases the email in place.
func (r *SigninRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate checks the request against its schema.
func (r *SigninRequest) Validate() error {
	return validationError(requestValidate.Struct(r))
}

// CreateTipRequest is the request body for posting a tip
type CreateTipRequest struct {
	Content string `json:"content" validate:"required,maxrunes"`
}

// Normalize trims surrounding whitespace from the content.
func (r *CreateTipRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
}

// Validate checks the request against its schema.
func (r *CreateTipRequest) Validate() error {
	return validationError(requestValidate.Struct(r))
}

// UpdateProfileRequest is the request body for editing a profile.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name   *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Bio    *string  `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Skills []string `json:"skills,omitempty" validate:"omitempty,max=30,dive,min=1,max=50"`
}

// Normalize trims fields in place.
func (r *UpdateProfileRequest) Normalize() {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
	if r.Bio != nil {
		bio := strings.TrimSpace(*r.Bio)
		r.Bio = &bio
	}
	for i := range r.Skills {
		r.Skills[i] = strings.TrimSpace(r.Skills[i])
	}
}

// Validate checks the request against its schema.
func (r *UpdateProfileRequest) Validate() error {
	return validationError(requestValidate.Struct(r))
}

// AnalyzeRequest is the request body for analyzing a project description
type AnalyzeRequest struct {
	ProjectDescription string `json:"projectDescription" validate:"required,max=5000"`
}

// Normalize trims the description in place.
func (r *AnalyzeRequest) Normalize() {
	r.ProjectDescription = strings.TrimSpace(r.ProjectDescription)
}

// Validate checks the request against its schema.
func (r *AnalyzeRequest) Validate() error {
	return validationError(requestValidate.Struct(r))
}

// UpdateRequirementsRequest is the request body for analyzing and saving requirements
type UpdateRequirementsRequest struct {
	Email              string `json:"email" validate:"required,email"`
	ProjectDescription string `json:"projectDescription" validate:"required,max=5000"`
	ProjectName        string `json:"projectName,omitempty" validate:"max=120"`
}

// Normalize trims fields in place.
func (r *UpdateRequirementsRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.ProjectDescription = strings.TrimSpace(r.ProjectDescription)
	r.ProjectName = strings.TrimSpace(r.ProjectName)
}

// Validate checks the request against its schema.
func (r *UpdateRequirementsRequest) Validate() error {
	return validationError(requestValidate.Struct(r))
}

// MatchDevelopersRequest is the request body for ranking developers
type MatchDevelopersRequest struct {
	ProjectDescription string `json:"projectDescription" validate:"required,max=5000"`
	Limit              int    `json:"limit,omitempty" validate:"omitempty,min=1,max=20"`
}

// Normalize trims the description and applies the default limit.
func (r *MatchDevelopersRequest) Normalize() {
	r.ProjectDescription = strings.TrimSpace(r.ProjectDescription)
	if r.Limit == 0 {
		r.Limit = 5
	}
}

// Validate checks the request against its schema.
func (r *MatchDevelopersRequest) Validate() error {
	return validationError(requestValidate.Struct(r))
}

// UpdateProjectRequest is the request body for changing a project.
// Nil fields are left unchanged.
type UpdateProjectRequest struct {
	Status      *ProjectStatus `json:"status,omitempty" validate:"omitempty,projectstatus"`
	Progress    *int           `json:"progress,omitempty" validate:"omitempty,min=0,max=100"`
	DeveloperID *string        `json:"developerId,omitempty" validate:"omitempty,len=24,hexadecimal"`
	Budget      *Budget        `json:"budget,omitempty"`

	Milestones []StatusChange `json:"milestones,omitempty" validate:"omitempty,max=50,dive"`
	Tasks      []StatusChange `json:"tasks,omitempty" validate:"omitempty,max=100,dive"`
}

// StatusChange sets the status of one milestone or task by ID
type StatusChange struct {
	ID     string `json:"id" validate:"required,len=24,hexadecimal"`
	Status string `json:"status" validate:"required"`
}

// Validate checks the request against its schema.
func (r *UpdateProjectRequest) Validate() error {
	if err := validationError(requestValidate.Struct(r)); err != nil {
		return err
	}
	if r.Budget != nil && (r.Budget.Min < 0 || r.Budget.Max < r.Budget.Min) {
		return errors.New("budget range is invalid")
	}
	for _, m := range r.Milestones {
		if !MilestoneStatus(m.Status).Valid() {
			return fmt.Errorf("milestone status %q is invalid", m.Status)
		}
	}
	for _, t := range r.Tasks {
		if !TaskStatus(t.Status).Valid() {
			return fmt.Errorf("task status %q is invalid", t.Status)
		}
	}
	return nil
}

// IsEmpty reports whether the request changes nothing.
func (r *UpdateProjectRequest) IsEmpty() bool {
	return r.Status == nil && r.Progress == nil && r.DeveloperID == nil && r.Budget == nil &&
		len(r.Milestones) == 0 && len(r.Tasks) == 0
}

// validationError turns validator output into a client-safe message.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.New("invalid request")
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "email":
		return fmt.Errorf("%s must be a valid email address", field)
	case "role":
		return fmt.Errorf("%s must be one of creator, developer, mentor", field)
	case "projectstatus":
		return fmt.Errorf("%s must be one of planning, in-progress, completed, on-hold", field)
	case "maxrunes":
		return fmt.Errorf("%s must be at most %d characters", field, MaxTipLength)
	case "max", "min", "len":
		return fmt.Errorf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}
