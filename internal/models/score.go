package models

import "time"

// ExamType is the closed set of score categories.
type ExamType string

const (
	ExamMidterm    ExamType = "midterm"
	ExamFinal      ExamType = "final"
	ExamQuiz       ExamType = "quiz"
	ExamAssignment ExamType = "assignment"
)

// IsValid reports whether the exam type is one of the known values.
func (e ExamType) IsValid() bool {
	switch e {
	case ExamMidterm, ExamFinal, ExamQuiz, ExamAssignment:
		return true
	default:
		return false
	}
}

// StudentScore records one student's result for a subject and exam type.
// The (student, subject, exam_type) triple is the natural key; writes upsert
// against it. A nil Score means "not yet graded".
type StudentScore struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	StudentID   uint       `gorm:"not null;uniqueIndex:idx_score_key" json:"student_id"`
	Student     *Student   `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	SubjectID   uint       `gorm:"not null;uniqueIndex:idx_score_key" json:"subject_id"`
	Subject     *Subject   `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"subject,omitempty"`
	ExamType    ExamType   `gorm:"size:50;not null;uniqueIndex:idx_score_key" json:"exam_type"`
	Score       *int       `json:"score"`
	ExamDate    *time.Time `json:"exam_date"`
	Remarks     string     `gorm:"type:text" json:"remarks"`
	EnteredByID *uint      `json:"entered_by"`
	EnteredBy   *User      `gorm:"foreignKey:EnteredByID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// LetterGrade converts the numeric score to a letter, or "N/A" when ungraded.
func (s StudentScore) LetterGrade() string {
	if s.Score == nil {
		return "N/A"
	}
	switch {
	case *s.Score >= 90:
		return "A"
	case *s.Score >= 80:
		return "B"
	case *s.Score >= 70:
		return "C"
	case *s.Score >= 60:
		return "D"
	default:
		return "F"
	}
}

// IsPassing reports whether the score meets the passing threshold.
func (s StudentScore) IsPassing() bool {
	return s.Score != nil && *s.Score >= 60
}
