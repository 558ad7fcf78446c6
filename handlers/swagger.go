package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>coursehub-api Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Session endpoints authenticate with the accessToken/refreshToken cookies.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "coursehub-api", "version": "v1.0.0" },
  "components": {
    "securitySchemes": {
      "accessCookie": { "type": "apiKey", "in": "cookie", "name": "accessToken" },
      "refreshCookie": { "type": "apiKey", "in": "cookie", "name": "refreshToken" }
    }
  },
  "paths": {
    "/api/v1/registration": {
      "post": {
        "summary": "Start registration and mail an activation code",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "201": { "description": "activation token returned" }, "400": { "description": "user already exists" } }
      }
    },
    "/api/v1/activate-user": {
      "post": {
        "summary": "Complete activation with the mailed code",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"activation_token":{"type":"string"},"activation_code":{"type":"string"}}}}}},
        "responses": { "201": { "description": "account created" }, "400": { "description": "invalid code or token" } }
      }
    },
    "/api/v1/login": {
      "post": {
        "summary": "Login with email and password",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "session cookies set" }, "400": { "description": "invalid email or password" } }
      }
    },
    "/api/v1/logout": { "get": { "summary": "End the session", "security": [{"accessCookie": []}], "responses": { "200": { "description": "logged out" }, "401": { "description": "not logged in" } } } },
    "/api/v1/refresh": { "get": { "summary": "Rotate the session tokens", "security": [{"refreshCookie": []}], "responses": { "200": { "description": "new cookies set" }, "400": { "description": "invalid or expired token" } } } },
    "/api/v1/me": { "get": { "summary": "Current user", "security": [{"accessCookie": []}], "responses": { "200": { "description": "user" }, "401": { "description": "not logged in" } } } },
    "/api/v1/create-course": { "post": { "summary": "Create a course (admin)", "security": [{"accessCookie": []}], "responses": { "201": { "description": "created" }, "403": { "description": "forbidden" } } } },
    "/api/v1/edit-course/{id}": { "put": { "summary": "Edit a course (admin)", "security": [{"accessCookie": []}], "responses": { "200": { "description": "updated" }, "404": { "description": "not found" } } } },
    "/api/v1/delete-course/{id}": { "delete": { "summary": "Delete a course (admin)", "security": [{"accessCookie": []}], "responses": { "200": { "description": "deleted" }, "404": { "description": "not found" } } } },
    "/api/v1/get-course/{id}": { "get": { "summary": "Course preview", "responses": { "200": { "description": "course" }, "404": { "description": "not found" } } } },
    "/api/v1/get-courses": { "get": { "summary": "All course previews", "responses": { "200": { "description": "courses" } } } },
    "/api/v1/get-course-content/{id}": { "get": { "summary": "Full course material for buyers and admins", "security": [{"accessCookie": []}], "responses": { "200": { "description": "sections" }, "404": { "description": "not eligible" } } } },
    "/api/v1/add-question": { "put": { "summary": "Ask a question on a course section", "security": [{"accessCookie": []}], "responses": { "200": { "description": "question" } } } },
    "/api/v1/add-answer": { "put": { "summary": "Answer a question", "security": [{"accessCookie": []}], "responses": { "200": { "description": "answer" } } } },
    "/api/v1/add-review/{id}": { "put": { "summary": "Review a purchased course", "security": [{"accessCookie": []}], "responses": { "200": { "description": "course" }, "400": { "description": "rating out of range" } } } },
    "/api/v1/add-reply": { "put": { "summary": "Reply to a review (admin)", "security": [{"accessCookie": []}], "responses": { "200": { "description": "course" } } } },
    "/api/v1/create-layout": { "post": { "summary": "Create a layout (admin)", "security": [{"accessCookie": []}], "responses": { "200": { "description": "created" }, "400": { "description": "type already exists" } } } },
    "/api/v1/get-layout/{type}": { "get": { "summary": "Layout by type", "responses": { "200": { "description": "layout" }, "404": { "description": "not found" } } } },
    "/api/v1/get-notifications": { "get": { "summary": "Admin notifications, newest first", "security": [{"accessCookie": []}], "responses": { "200": { "description": "notifications" } } } },
    "/api/v1/create-order": { "post": { "summary": "Purchase a course", "security": [{"accessCookie": []}], "responses": { "201": { "description": "order" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
