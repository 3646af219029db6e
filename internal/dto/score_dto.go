package dto

import (
	"time"

	"github.com/darsa-school/darsa-api/internal/models"
)

// ScoreRequest writes one score against the (student, subject, exam_type)
// natural key. A nil Score records "not yet graded".
type ScoreRequest struct {
	StudentID uint       `json:"student_id" validate:"required"`
	SubjectID uint       `json:"subject_id" validate:"required"`
	ExamType  string     `json:"exam_type" validate:"required"`
	Score     *int       `json:"score"`
	ExamDate  *time.Time `json:"exam_date"`
	Remarks   string     `json:"remarks"`
}

// ScoreBulkRequest writes several scores in one call. Items are validated and
// committed independently.
type ScoreBulkRequest struct {
	Scores []ScoreRequest `json:"scores" validate:"required,min=1"`
}

// ScoreBulkItemError reports one failed bulk item.
type ScoreBulkItemError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// ScoreBulkResponse summarises a bulk score write.
type ScoreBulkResponse struct {
	Created []ScoreResponse      `json:"created"`
	Errors  []ScoreBulkItemError `json:"errors"`
}

// ScoreResponse is the public shape of a score row, with the derived letter
// grade and passing flag.
type ScoreResponse struct {
	ID          uint       `json:"id"`
	StudentID   uint       `json:"student_id"`
	SubjectID   uint       `json:"subject_id"`
	ExamType    string     `json:"exam_type"`
	Score       *int       `json:"score"`
	LetterGrade string     `json:"letter_grade"`
	IsPassing   bool       `json:"is_passing"`
	ExamDate    *time.Time `json:"exam_date,omitempty"`
	Remarks     string     `json:"remarks,omitempty"`
	EnteredBy   *uint      `json:"entered_by,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ReportCardSubject groups one subject's scores with their average.
type ReportCardSubject struct {
	SubjectID uint            `json:"subject_id"`
	Scores    []ScoreResponse `json:"scores"`
	Average   *float64        `json:"average"`
}

// ReportCardResponse is a student's aggregated grade report. Ungraded rows
// (nil scores) are listed but excluded from the averages.
type ReportCardResponse struct {
	StudentID   uint                `json:"student_id"`
	Subjects    []ReportCardSubject `json:"subjects"`
	Average     *float64            `json:"overall_average"`
	LetterGrade string              `json:"letter_grade"`
	IsPassing   bool                `json:"is_passing"`
}

// NewReportCardResponse groups scores by subject and computes the averages.
func NewReportCardResponse(studentID uint, scores []ScoreResponse) ReportCardResponse {
	bySubject := make(map[uint]*ReportCardSubject)
	order := make([]uint, 0)

	for _, score := range scores {
		subject, ok := bySubject[score.SubjectID]
		if !ok {
			subject = &ReportCardSubject{SubjectID: score.SubjectID}
			bySubject[score.SubjectID] = subject
			order = append(order, score.SubjectID)
		}
		subject.Scores = append(subject.Scores, score)
	}

	report := ReportCardResponse{
		StudentID:   studentID,
		Subjects:    make([]ReportCardSubject, 0, len(order)),
		LetterGrade: "N/A",
	}

	var overallSum, overallCount float64
	for _, subjectID := range order {
		subject := bySubject[subjectID]
		var sum, count float64
		for _, score := range subject.Scores {
			if score.Score != nil {
				sum += float64(*score.Score)
				count++
			}
		}
		if count > 0 {
			average := sum / count
			subject.Average = &average
			overallSum += sum
			overallCount += count
		}
		report.Subjects = append(report.Subjects, *subject)
	}

	if overallCount > 0 {
		average := overallSum / overallCount
		report.Average = &average
		report.LetterGrade = letterForAverage(average)
		report.IsPassing = average >= 60
	}

	return report
}

func letterForAverage(average float64) string {
	switch {
	case average >= 90:
		return "A"
	case average >= 80:
		return "B"
	case average >= 70:
		return "C"
	case average >= 60:
		return "D"
	default:
		return "F"
	}
}

// NewScoreResponse maps a score model to its response shape.
func NewScoreResponse(score models.StudentScore) ScoreResponse {
	return ScoreResponse{
		ID:          score.ID,
		StudentID:   score.StudentID,
		SubjectID:   score.SubjectID,
		ExamType:    string(score.ExamType),
		Score:       score.Score,
		LetterGrade: score.LetterGrade(),
		IsPassing:   score.IsPassing(),
		ExamDate:    score.ExamDate,
		Remarks:     score.Remarks,
		EnteredBy:   score.EnteredByID,
		UpdatedAt:   score.UpdatedAt,
	}
}
