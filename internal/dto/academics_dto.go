package dto

// SemesterRequest creates or updates a semester.
type SemesterRequest struct {
	Number   uint   `json:"number" validate:"required,min=1"`
	Name     string `json:"name" validate:"max=100"`
	IsActive *bool  `json:"is_active"`
}

// ClassRequest creates or updates a school class.
type ClassRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	SemesterID  *uint  `json:"semester_id"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// SubjectRequest creates or updates a subject. A subject always belongs to a
// semester; the code is optional but unique when present.
type SubjectRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Code        *string `json:"code" validate:"omitempty,max=50"`
	SemesterID  uint    `json:"semester_id" validate:"required"`
	Credits     uint    `json:"credits" validate:"omitempty,min=1,max=30"`
	Description string  `json:"description"`
	IsActive    *bool   `json:"is_active"`
}
