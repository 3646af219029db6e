package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/models"
	"github.com/darsa-school/darsa-api/internal/repository"
	"github.com/darsa-school/darsa-api/pkg/storage"
)

// Sentinel errors for document handling.
var (
	ErrDocumentNotFound      = errors.New("document not found")
	ErrDocumentOwnerConflict = errors.New("a document may belong to a student or a teacher, not both")
	ErrDocumentTooLarge      = errors.New("file exceeds the maximum allowed size")
	ErrInvalidDocumentType   = errors.New("invalid document type")
	ErrDocumentScopeDenied   = errors.New("not allowed to attach documents to this profile")
)

// DocumentService stores uploaded files and their metadata. The size ceiling
// and the single-owner invariant are checked before any byte reaches storage.
type DocumentService interface {
	Upload(ctx context.Context, req dto.DocumentUploadRequest, fileName string, data []byte, actor Actor) (dto.DocumentResponse, error)
	Get(ctx context.Context, id uint, actor authz.Actor) (dto.DocumentResponse, error)
	List(ctx context.Context, filter repository.DocumentFilter, actor authz.Actor) ([]dto.DocumentResponse, error)
	Verify(ctx context.Context, id uint, verified bool, actor Actor) (dto.DocumentResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type documentService struct {
	repo      repository.DocumentRepository
	students  repository.StudentRepository
	teachers  repository.TeacherRepository
	store     storage.Store
	maxBytes  int64
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewDocumentService constructs the document service.
func NewDocumentService(
	repo repository.DocumentRepository,
	students repository.StudentRepository,
	teachers repository.TeacherRepository,
	store storage.Store,
	maxBytes int64,
	validate *validator.Validate,
	activity ActivityRecorder,
	logger zerolog.Logger,
) DocumentService {
	return &documentService{
		repo:      repo,
		students:  students,
		teachers:  teachers,
		store:     store,
		maxBytes:  maxBytes,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "document_service").Logger(),
	}
}

func (s *documentService) Upload(ctx context.Context, req dto.DocumentUploadRequest, fileName string, data []byte, actor Actor) (dto.DocumentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DocumentResponse{}, err
	}

	if req.StudentID != nil && req.TeacherID != nil {
		return dto.DocumentResponse{}, ErrDocumentOwnerConflict
	}

	if err := s.pinOwner(ctx, &req, actor); err != nil {
		return dto.DocumentResponse{}, err
	}

	docType := models.DocumentType(req.DocumentType)
	if req.DocumentType == "" {
		docType = models.DocOther
	}
	if !docType.IsValid() {
		return dto.DocumentResponse{}, fmt.Errorf("%w: %s", ErrInvalidDocumentType, req.DocumentType)
	}

	if int64(len(data)) > s.maxBytes {
		return dto.DocumentResponse{}, ErrDocumentTooLarge
	}

	if req.StudentID != nil {
		if _, err := s.students.GetByID(ctx, *req.StudentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.DocumentResponse{}, ErrStudentNotFound
			}
			return dto.DocumentResponse{}, err
		}
	}
	if req.TeacherID != nil {
		if _, err := s.teachers.GetByID(ctx, *req.TeacherID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.DocumentResponse{}, ErrTeacherNotFound
			}
			return dto.DocumentResponse{}, err
		}
	}

	stored, err := s.store.Save(fileName, data, req.StudentID, req.TeacherID)
	if err != nil {
		return dto.DocumentResponse{}, err
	}

	uploadedBy := actor.ID
	doc := models.Document{
		Title:        req.Title,
		Description:  req.Description,
		DocumentType: docType,
		FilePath:     stored.Path,
		FileName:     stored.Name,
		FileSize:     stored.Size,
		ContentType:  stored.ContentType,
		StudentID:    req.StudentID,
		TeacherID:    req.TeacherID,
		UploadedByID: &uploadedBy,
	}

	if err := s.repo.Create(ctx, &doc); err != nil {
		// The metadata write failed; do not leave an orphaned file behind.
		if removeErr := s.store.Remove(stored.Path); removeErr != nil {
			s.logger.Error().Err(removeErr).Str("path", stored.Path).Msg("failed to clean up stored file")
		}
		return dto.DocumentResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "document.uploaded",
		EntityType: "document",
		EntityID:   &doc.ID,
		Metadata: map[string]interface{}{
			"document_type": string(docType),
			"file_size":     stored.Size,
		},
	})

	return dto.NewDocumentResponse(doc), nil
}

// Get applies owner scoping: students and teachers only see their own
// documents, and an out-of-scope id reads as not found.
func (s *documentService) Get(ctx context.Context, id uint, actor authz.Actor) (dto.DocumentResponse, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentResponse{}, ErrDocumentNotFound
		}
		return dto.DocumentResponse{}, err
	}

	visible, err := s.canSee(ctx, doc, actor)
	if err != nil {
		return dto.DocumentResponse{}, err
	}
	if !visible {
		return dto.DocumentResponse{}, ErrDocumentNotFound
	}

	return dto.NewDocumentResponse(doc), nil
}

func (s *documentService) List(ctx context.Context, filter repository.DocumentFilter, actor authz.Actor) ([]dto.DocumentResponse, error) {
	switch actor.Role {
	case authz.RoleStudent:
		profile, err := s.students.GetByUserID(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []dto.DocumentResponse{}, nil
			}
			return nil, err
		}
		filter = repository.DocumentFilter{StudentID: &profile.ID, DocumentType: filter.DocumentType}
	case authz.RoleTeacher:
		profile, err := s.teachers.GetByUserID(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []dto.DocumentResponse{}, nil
			}
			return nil, err
		}
		filter = repository.DocumentFilter{TeacherID: &profile.ID, DocumentType: filter.DocumentType}
	}

	docs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, dto.NewDocumentResponse(doc))
	}

	return responses, nil
}

func (s *documentService) Verify(ctx context.Context, id uint, verified bool, actor Actor) (dto.DocumentResponse, error) {
	updates := map[string]interface{}{"is_verified": verified}
	if verified {
		now := time.Now()
		updates["verified_by_id"] = actor.ID
		updates["verified_at"] = now
	} else {
		updates["verified_by_id"] = nil
		updates["verified_at"] = nil
	}

	doc, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentResponse{}, ErrDocumentNotFound
		}
		return dto.DocumentResponse{}, err
	}

	return dto.NewDocumentResponse(doc), nil
}

// Delete removes the metadata row and then the stored file.
func (s *documentService) Delete(ctx context.Context, id uint, actor Actor) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	if err := s.store.Remove(doc.FilePath); err != nil {
		s.logger.Error().Err(err).Str("path", doc.FilePath).Msg("failed to remove stored file")
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "document.deleted",
		EntityType: "document",
		EntityID:   &id,
	})

	return nil
}

// pinOwner forces non-staff uploads onto the caller's own profile. A student
// or teacher naming another profile, or the other profile kind, is refused.
func (s *documentService) pinOwner(ctx context.Context, req *dto.DocumentUploadRequest, actor Actor) error {
	switch authz.Role(actor.Role) {
	case authz.RoleStudent:
		if req.TeacherID != nil {
			return ErrDocumentScopeDenied
		}
		profile, err := s.students.GetByUserID(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return err
		}
		if req.StudentID != nil && *req.StudentID != profile.ID {
			return ErrDocumentScopeDenied
		}
		req.StudentID = &profile.ID
	case authz.RoleTeacher:
		if req.StudentID != nil {
			return ErrDocumentScopeDenied
		}
		profile, err := s.teachers.GetByUserID(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeacherNotFound
			}
			return err
		}
		if req.TeacherID != nil && *req.TeacherID != profile.ID {
			return ErrDocumentScopeDenied
		}
		req.TeacherID = &profile.ID
	}

	return nil
}

func (s *documentService) canSee(ctx context.Context, doc models.Document, actor authz.Actor) (bool, error) {
	switch actor.Role {
	case authz.RoleSuperAdmin, authz.RoleAdmin:
		return true, nil
	case authz.RoleStudent:
		if doc.StudentID == nil {
			return doc.StudentID == nil && doc.TeacherID == nil, nil
		}
		profile, err := s.students.GetByUserID(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		return *doc.StudentID == profile.ID, nil
	case authz.RoleTeacher:
		if doc.TeacherID == nil {
			return doc.StudentID == nil && doc.TeacherID == nil, nil
		}
		profile, err := s.teachers.GetByUserID(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		return *doc.TeacherID == profile.ID, nil
	default:
		return false, nil
	}
}
