package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "StudySync API",
        "description": "Homework study planner: schedules study blocks around weekly commitments and exports them as calendars.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Homework", "description": "Assignments to plan study time for"},
        {"name": "Commitments", "description": "Recurring weekly busy slots"},
        {"name": "Preferences", "description": "Daily working window, buffer and breaks"},
        {"name": "Schedule", "description": "Schedule generation and calendar download"},
        {"name": "Exports", "description": "Asynchronous ICS/CSV/PDF exports"}
    ],
    "paths": {
        "/homework": {
            "get": {
                "tags": ["Homework"],
                "summary": "List homework",
                "parameters": [
                    {"name": "due_from", "in": "query", "type": "string", "format": "date"},
                    {"name": "due_to", "in": "query", "type": "string", "format": "date"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Homework"],
                "summary": "Create homework",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateHomeworkRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/homework/{id}": {
            "put": {
                "tags": ["Homework"],
                "summary": "Update homework",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateHomeworkRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Homework"],
                "summary": "Delete homework and its scheduled blocks",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/commitments": {
            "get": {
                "tags": ["Commitments"],
                "summary": "List weekly commitments",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Commitments"],
                "summary": "Create a commitment on one or more weekdays",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCommitmentRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid interval", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/commitments/{id}": {
            "delete": {
                "tags": ["Commitments"],
                "summary": "Delete a commitment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/preferences": {
            "get": {
                "tags": ["Preferences"],
                "summary": "Get scheduling preferences",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Preferences"],
                "summary": "Replace scheduling preferences",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdatePreferencesRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Latest generated schedule",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No schedule generated yet"}
                }
            }
        },
        "/schedule/generate": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Generate and store a study schedule",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/schedule/preview": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Plan a schedule without persisting anything",
                "security": [],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PreviewScheduleRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/schedule/export.ics": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Download the schedule as an iCalendar file",
                "produces": ["text/calendar"],
                "parameters": [
                    {"name": "include_commitments", "in": "query", "type": "boolean"},
                    {"name": "only_new", "in": "query", "type": "boolean"}
                ],
                "responses": {"200": {"description": "Calendar file", "schema": {"type": "file"}}}
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a schedule export",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExportRequest"}}],
                "responses": {"202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exports/ledger": {
            "delete": {
                "tags": ["Exports"],
                "summary": "Forget previously delivered calendar events",
                "responses": {"204": {"description": "Reset"}}
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export via signed token",
                "security": [],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File", "schema": {"type": "file"}}, "403": {"description": "Invalid or expired token"}}
            }
        }
    },
    "definitions": {
        "CreateHomeworkRequest": {
            "type": "object",
            "required": ["name", "hours", "deadline", "block_size"],
            "properties": {
                "name": {"type": "string"},
                "hours": {"type": "number"},
                "deadline": {"type": "string", "format": "date"},
                "block_size": {"type": "number"},
                "color": {"type": "string"}
            }
        },
        "CreateCommitmentRequest": {
            "type": "object",
            "required": ["days", "start_time", "end_time"],
            "properties": {
                "days": {"type": "array", "items": {"type": "string"}},
                "start_time": {"type": "string", "example": "09:00"},
                "end_time": {"type": "string", "example": "10:30"},
                "description": {"type": "string"},
                "end_date": {"type": "string", "format": "date"}
            }
        },
        "Break": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"}
            }
        },
        "UpdatePreferencesRequest": {
            "type": "object",
            "required": ["start_time", "end_time"],
            "properties": {
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "buffer_minutes": {"type": "integer"},
                "breaks": {"type": "array", "items": {"$ref": "#/definitions/Break"}}
            }
        },
        "PreviewScheduleRequest": {
            "type": "object",
            "properties": {
                "today": {"type": "string", "format": "date"},
                "homework": {"type": "array", "items": {"$ref": "#/definitions/CreateHomeworkRequest"}},
                "commitments": {"type": "array", "items": {"type": "object"}},
                "preferences": {"$ref": "#/definitions/UpdatePreferencesRequest"}
            }
        },
        "CreateExportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["ics", "csv", "pdf"]},
                "include_commitments": {"type": "boolean"},
                "only_new": {"type": "boolean"}
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
