package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ESG Report API",
        "description": "Employees, trainings, ESG dashboards and the GRI sustainability report wizard",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Login and current user"},
        {"name": "Employees", "description": "Employee registry"},
        {"name": "Trainings", "description": "Programs, enrollments and status"},
        {"name": "Benefits", "description": "Employee benefits"},
        {"name": "Metrics", "description": "Environmental, stakeholder and economic records"},
        {"name": "Dashboards", "description": "Aggregated ESG indicators"},
        {"name": "Reports", "description": "Sustainability report wizard"},
        {"name": "Exports", "description": "Asynchronous PDF and DOCX exports"},
        {"name": "Documents", "description": "Employee document uploads"},
        {"name": "GRI", "description": "GRI indicator catalog"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue an access token",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employees/{id}/trainings": {
            "get": {
                "tags": ["Trainings"],
                "summary": "List an employee's trainings with computed status",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Trainings"],
                "summary": "Enroll an employee in a training program",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already enrolled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trainings/export.csv": {
            "get": {
                "tags": ["Trainings"],
                "summary": "Export trainings as CSV",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "responses": {"200": {"description": "CSV file"}}
            }
        },
        "/dashboards/training": {
            "get": {
                "tags": ["Dashboards"],
                "summary": "Training dashboard",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "year", "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/reports": {
            "get": {
                "tags": ["Reports"],
                "summary": "List sustainability reports",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "year", "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Reports"],
                "summary": "Start a report for a year",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Report already exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}/sections/{step}": {
            "put": {
                "tags": ["Reports"],
                "summary": "Save the fields of a wizard step",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "path", "name": "step", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/reports/{id}/wizard/next": {
            "post": {
                "tags": ["Reports"],
                "summary": "Advance the wizard",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already at the last step", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a PDF or DOCX export",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export through a signed token",
                "parameters": [{"in": "path", "name": "token", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File"}, "404": {"description": "Invalid or expired token"}}
            }
        },
        "/employees/{id}/documents": {
            "post": {
                "tags": ["Documents"],
                "summary": "Upload a batch of documents",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "formData", "name": "files", "required": true, "type": "file"},
                    {"in": "formData", "name": "category", "type": "string"}
                ],
                "responses": {
                    "201": {"description": "All files stored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "207": {"description": "Some files rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/gri/indicators": {
            "get": {
                "tags": ["GRI"],
                "summary": "List GRI indicators",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "step", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
