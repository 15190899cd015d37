package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Records API",
        "description": "CRUD API for university student records",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Student record management"},
        {"name": "Health", "description": "Heartbeat"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "API heartbeat",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/HealthEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "description": "Returns the whole collection, newest first.",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ListEnvelope"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/RecordEnvelope"}},
                    "400": {"description": "Validation failed or duplicate email", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "413": {"description": "Body too large", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/students/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Export student roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Attachment", "schema": {"type": "file"}},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RecordEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "description": "Applies only the supplied fields.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RecordEnvelope"}},
                    "400": {"description": "Validation failed or duplicate email", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/MessageEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "StudentRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "major": {"type": "string"},
                "enrollmentDate": {"type": "string", "format": "date"},
                "status": {"type": "string", "enum": ["Active", "Inactive"]},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string", "minLength": 2, "maxLength": 50},
                "lastName": {"type": "string", "minLength": 2, "maxLength": 50},
                "email": {"type": "string"},
                "major": {"type": "string", "minLength": 2, "maxLength": 100},
                "enrollmentDate": {"type": "string", "format": "date"},
                "status": {"type": "string", "enum": ["Active", "Inactive"]}
            },
            "required": ["firstName", "lastName", "email", "major"]
        },
        "UpdateStudentRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string", "minLength": 2, "maxLength": 50},
                "lastName": {"type": "string", "minLength": 2, "maxLength": 50},
                "email": {"type": "string"},
                "major": {"type": "string", "minLength": 2, "maxLength": 100},
                "enrollmentDate": {"type": "string", "format": "date"},
                "status": {"type": "string", "enum": ["Active", "Inactive"]}
            }
        },
        "FieldViolation": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ErrorEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "status": {"type": "string", "enum": ["fail", "error"]},
                "message": {"type": "string"},
                "code": {"type": "string"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/FieldViolation"}},
                "detail": {"type": "string"}
            }
        },
        "RecordEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"$ref": "#/definitions/StudentRecord"}
            }
        },
        "ListEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "count": {"type": "integer"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/StudentRecord"}}
            }
        },
        "MessageEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "HealthEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "timestamp": {"type": "string", "format": "date-time"}
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
