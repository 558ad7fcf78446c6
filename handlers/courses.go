package handlers

import (
	"net/http"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/course"
	courses "github.com/coursehub/coursehub-api/internal/course/service"
	"github.com/coursehub/coursehub-api/internal/models"
	"github.com/coursehub/coursehub-api/pkg/middleware"
	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	svc     *courses.Service
	content *courses.Content
}

func NewCourseHandler(svc *courses.Service, content *courses.Content) *CourseHandler {
	return &CourseHandler{svc: svc, content: content}
}

type QuestionRequest struct {
	Question  string `json:"question"`
	CourseID  string `json:"courseId"`
	ContentID string `json:"contentId"`
}

type AnswerRequest struct {
	Answer     string `json:"answer"`
	CourseID   string `json:"courseId"`
	ContentID  string `json:"contentId"`
	QuestionID string `json:"questionId"`
}

type ReviewRequest struct {
	Review string `json:"review"`
	Rating int    `json:"rating"`
}

type ReviewReplyRequest struct {
	Comment  string `json:"comment"`
	CourseID string `json:"courseId"`
	ReviewID string `json:"reviewId"`
}

// Register mounts the catalogue endpoints. Catalogue writes and review
// replies are admin-only; content and discussion need a purchase.
func (h *CourseHandler) Register(rg *gin.RouterGroup, authn *middleware.Authenticator) {
	admin := []gin.HandlerFunc{authn.RequireAuth(), middleware.AuthorizeRoles(models.RoleAdmin)}

	rg.POST("/create-course", chain(h.Create, admin...)...)
	rg.PUT("/edit-course/:id", chain(h.Edit, admin...)...)
	rg.DELETE("/delete-course/:id", chain(h.Delete, admin...)...)
	rg.GET("/get-course/:id", h.Get)
	rg.GET("/get-courses", h.List)

	rg.GET("/get-course-content/:id", authn.RequireAuth(), h.GetContent)
	rg.PUT("/add-question", authn.RequireAuth(), h.AddQuestion)
	rg.PUT("/add-answer", authn.RequireAuth(), h.AddAnswer)
	rg.PUT("/add-review/:id", authn.RequireAuth(), h.AddReview)
	rg.PUT("/add-reply", chain(h.AddReviewReply, admin...)...)
}

func (h *CourseHandler) Create(c *gin.Context) {
	var req course.Course
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	created, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "course": created})
}

func (h *CourseHandler) Edit(c *gin.Context) {
	var req course.Course
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	updated, err := h.svc.Edit(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "course": updated})
}

func (h *CourseHandler) Get(c *gin.Context) {
	got, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "course": got})
}

func (h *CourseHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "courses": list})
}

func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Course deleted successfully"})
}

// actor returns the user behind the request; RequireAuth runs first.
func actor(c *gin.Context) (*models.User, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok || p.User == nil {
		fail(c, apperrors.ErrUnauthenticated)
		return nil, false
	}
	return p.User, true
}

func (h *CourseHandler) GetContent(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	sections, err := h.content.Sections(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "content": sections})
}

func (h *CourseHandler) AddQuestion(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	q, err := h.content.AddQuestion(c.Request.Context(), u, req.CourseID, req.ContentID, req.Question)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "question": q})
}

func (h *CourseHandler) AddAnswer(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	a, err := h.content.AddAnswer(c.Request.Context(), u, req.CourseID, req.ContentID, req.QuestionID, req.Answer)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "answer": a})
}

func (h *CourseHandler) AddReview(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	updated, err := h.content.AddReview(c.Request.Context(), u, c.Param("id"), req.Review, req.Rating)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "course": updated})
}

func (h *CourseHandler) AddReviewReply(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req ReviewReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	updated, err := h.content.AddReviewReply(c.Request.Context(), u, req.CourseID, req.ReviewID, req.Comment)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "course": updated})
}
