package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the users service.
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
    <title>users-service - Swagger</title>
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

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "users-service", "version": "v1.0.0" },
  "components": {
    "schemas": {
      "UserInput": { "type": "object", "properties": { "name": {"type":"string"}, "email": {"type":"string"}, "age": {"type":"number"} } },
      "User": { "type": "object", "properties": { "id": {"type":"string"}, "name": {"type":"string"}, "email": {"type":"string"}, "age": {"type":"number"} } },
      "Message": { "type": "object", "properties": { "message": {"type":"string"} } }
    }
  },
  "paths": {
    "/users": {
      "get": {
        "summary": "List all users",
        "responses": { "200": { "description": "array of users, or a message when the store fails" } }
      },
      "post": {
        "summary": "Create a user",
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/UserInput"} } } },
        "responses": { "201": { "description": "created user" }, "400": { "description": "validation, cast or store error" } }
      }
    },
    "/users/{id}": {
      "parameters": [ { "name": "id", "in": "path", "required": true, "schema": {"type":"string"} } ],
      "put": {
        "summary": "Replace the supplied truthy fields of a user",
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/UserInput"} } } },
        "responses": { "200": { "description": "updated user, or a message on error" }, "404": { "description": "user not found" } }
      },
      "delete": {
        "summary": "Delete a user",
        "responses": { "200": { "description": "User deleted, or a message on error" }, "404": { "description": "user not found" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition format" } } } }
  }
}`
