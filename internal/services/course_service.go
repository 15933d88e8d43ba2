// internal/services/course_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/chainacademy/coursegate/internal/models"
	"github.com/chainacademy/coursegate/internal/utils"
)

type CourseService struct {
	db *gorm.DB
}

type CreateCourseRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty" validate:"omitempty,max=100"`
	Price       float64  `json:"price" validate:"gte=0"`
	CoverURL    string   `json:"cover_url,omitempty" validate:"omitempty,url"`
	Tags        []string `json:"tags,omitempty"`
}

type UpdateCourseRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,max=255"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	CoverURL    *string  `json:"cover_url,omitempty" validate:"omitempty,url"`
}

func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

func (s *CourseService) Create(creatorID uint, req *CreateCourseRequest) (*models.Course, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var creator models.User
	if err := s.db.First(&creator, creatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !creator.IsCreator {
		return nil, errors.New("only creators can publish courses")
	}

	course := &models.Course{
		CreatorID:   creatorID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		CoverURL:    req.CoverURL,
		Tags:        req.Tags,
	}

	if err := s.db.Create(course).Error; err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	return course, nil
}

func (s *CourseService) Update(courseID, callerID uint, req *UpdateCourseRequest) (*models.Course, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	course, err := s.Get(courseID)
	if err != nil {
		return nil, err
	}
	if course.CreatorID != callerID {
		return nil, errors.New("only the course creator can update it")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.CoverURL != nil {
		updates["cover_url"] = *req.CoverURL
	}

	if len(updates) > 0 {
		if err := s.db.Model(course).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update course: %w", err)
		}
	}

	return course, nil
}

// SetPublished flips the listing state. Access control is unaffected;
// unpublished courses are simply not listed.
func (s *CourseService) SetPublished(courseID, callerID uint, published bool) (*models.Course, error) {
	course, err := s.Get(courseID)
	if err != nil {
		return nil, err
	}
	if course.CreatorID != callerID {
		return nil, errors.New("only the course creator can change its publish state")
	}

	if err := s.db.Model(course).Update("is_published", published).Error; err != nil {
		return nil, fmt.Errorf("failed to update publish state: %w", err)
	}
	course.IsPublished = published
	return course, nil
}

func (s *CourseService) Get(courseID uint) (*models.Course, error) {
	var course models.Course
	if err := s.db.Preload("Creator").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &course, nil
}

func (s *CourseService) ListPublished(params utils.PaginationParams) ([]models.Course, int64, error) {
	query := s.db.Model(&models.Course{}).Where("is_published = ?", true).Preload("Creator")

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	allowedSortFields := []string{"created_at", "title", "price"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var courses []models.Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch courses: %w", err)
	}

	return courses, total, nil
}

func (s *CourseService) ListByCreator(creatorID uint) ([]models.Course, error) {
	var courses []models.Course
	if err := s.db.Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}
	return courses, nil
}
