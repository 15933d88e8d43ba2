// internal/handlers/course.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chainacademy/coursegate/internal/i18n"
	"github.com/chainacademy/coursegate/internal/services"
	"github.com/chainacademy/coursegate/internal/utils"
)

type CourseHandler struct {
	courseService *services.CourseService
}

func NewCourseHandler(courseService *services.CourseService) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}

// GET /courses
func (h *CourseHandler) GetCourses(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	courses, total, err := h.courseService.ListPublished(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(courses, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	course, err := h.courseService.Get(courseID)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			utils.NotFoundResponse(c, "course")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"course": course})
}

// GET /courses/mine
func (h *CourseHandler) GetMyCourses(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	courses, err := h.courseService.ListByCreator(userID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"courses": courses})
}

// POST /courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	course, err := h.courseService.Create(userID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCourseCreated),
		"course":  course,
	})
}

// PUT /courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	course, err := h.courseService.Update(courseID, userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			utils.NotFoundResponse(c, "course")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCourseUpdated),
		"course":  course,
	})
}

// PUT /courses/:id/publish
func (h *CourseHandler) SetPublished(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req struct {
		Published bool `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	course, err := h.courseService.SetPublished(courseID, userID, req.Published)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			utils.NotFoundResponse(c, "course")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCoursePublished),
		"course":  course,
	})
}
