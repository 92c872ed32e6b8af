package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Roster API",
        "description": "Seating, identity and screenshot service for computer lab 329",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Classroom", "description": "Room snapshot, export and capture switch"},
        {"name": "Placements", "description": "Seat assignment and suggestions"},
        {"name": "Screenshots", "description": "Per-seat screen captures"},
        {"name": "Users", "description": "Student identity search and registration"},
        {"name": "Groups", "description": "Student groups and seating features"},
        {"name": "Auth", "description": "Administrator login"}
    ],
    "paths": {
        "/classrooms/{id}": {
            "get": {
                "tags": ["Classroom"],
                "summary": "Room seating snapshot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string", "description": "YYYY-MM-DD, defaults to today"},
                    {"name": "lesson", "in": "query", "type": "integer", "description": "defaults to the current lesson"},
                    {"name": "singles", "in": "query", "type": "boolean", "description": "single lesson instead of the pair"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown classroom"}
                }
            }
        },
        "/classrooms/{id}/export": {
            "get": {
                "tags": ["Classroom"],
                "summary": "Export the seating chart",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "lesson", "in": "query", "type": "integer"},
                    {"name": "singles", "in": "query", "type": "boolean"}
                ],
                "produces": ["text/csv", "application/pdf"],
                "responses": {
                    "200": {"description": "File attachment"},
                    "400": {"description": "Unknown format"}
                }
            }
        },
        "/classrooms/{id}/screenshots": {
            "get": {
                "tags": ["Classroom"],
                "summary": "Capture switch state",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Classroom"],
                "summary": "Flip the capture switch",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ToggleScreenshotsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or invalid token"}
                }
            }
        },
        "/classrooms/{id}/screenshots/status": {
            "get": {
                "tags": ["Classroom"],
                "summary": "Capture switch as plain text for kiosk agents",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "\"1\" or \"0\""}
                }
            }
        },
        "/classrooms/{id}/workplaces/{seat}/assign": {
            "post": {
                "tags": ["Placements"],
                "summary": "Seat a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "seat", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Seating constraint; meta.available_seats lists alternatives"},
                    "404": {"description": "Unknown student"}
                }
            }
        },
        "/classrooms/{id}/workplaces/{seat}": {
            "delete": {
                "tags": ["Placements"],
                "summary": "Remove a placement",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "seat", "in": "path", "required": true, "type": "integer"},
                    {"name": "placement_id", "in": "query", "type": "string", "description": "defaults to the latest placement at the seat"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Nothing to remove"}
                }
            }
        },
        "/workplaces/{seat}/suggestions": {
            "get": {
                "tags": ["Placements"],
                "summary": "Frequent occupants for the current lesson slot",
                "parameters": [
                    {"name": "seat", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/{id}/workplaces/{seat}/screenshot": {
            "post": {
                "tags": ["Screenshots"],
                "summary": "Ingest a capture",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "seat", "in": "path", "required": true, "type": "integer"},
                    {"name": "screenshot", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Stored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Captures disabled for the room"}
                }
            }
        },
        "/classrooms/{id}/workplaces/{seat}/screenshots": {
            "get": {
                "tags": ["Screenshots"],
                "summary": "List captures for a seat",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "seat", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/{id}/workplaces/{seat}/screenshots/{filename}": {
            "get": {
                "tags": ["Screenshots"],
                "summary": "Serve one capture image",
                "produces": ["image/png"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "seat", "in": "path", "required": true, "type": "integer"},
                    {"name": "filename", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Image bytes"},
                    "400": {"description": "Malformed filename"},
                    "404": {"description": "Capture not found"}
                }
            }
        },
        "/users/search": {
            "get": {
                "tags": ["Users"],
                "summary": "Autocomplete by surname fragment",
                "parameters": [
                    {"name": "q", "in": "query", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/identify": {
            "post": {
                "tags": ["Users"],
                "summary": "Resolve or register a student, optionally seating them",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IdentifyRequest"}}
                ],
                "responses": {
                    "200": {"description": "matched, proposals or created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Seating constraint"},
                    "409": {"description": "Email already registered"},
                    "502": {"description": "Upstream login portal failure"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Administrator login",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "JWT issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Wrong password"}
                }
            }
        },
        "/groups": {
            "get": {
                "tags": ["Groups"],
                "summary": "List groups",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Groups"],
                "summary": "Create group",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateGroupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/groups/{id}": {
            "get": {
                "tags": ["Groups"],
                "summary": "Group with members and features",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Groups"],
                "summary": "Update group",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateGroupRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Groups"],
                "summary": "Delete group",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/groups/{id}/members": {
            "post": {
                "tags": ["Groups"],
                "summary": "Add member",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddMemberRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/groups/{id}/members/{userId}": {
            "delete": {
                "tags": ["Groups"],
                "summary": "Remove member",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "userId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/groups/{id}/features/{key}": {
            "put": {
                "tags": ["Groups"],
                "summary": "Enable or tune a seating feature",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "key", "in": "path", "required": true, "type": "string", "enum": ["non_sequential"]},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetFeatureRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "definitions": {
        "AssignRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "IdentifyRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "confirm": {"type": "boolean"},
                "workplace_id": {"type": "string"},
                "wants_url": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "password": {"type": "string"}
            },
            "required": ["password"]
        },
        "ToggleScreenshotsRequest": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"}
            },
            "required": ["enabled"]
        },
        "CreateGroupRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"}
            },
            "required": ["name"]
        },
        "AddMemberRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"}
            },
            "required": ["user_id"]
        },
        "SetFeatureRequest": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"},
                "min_distance": {"type": "integer"}
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
