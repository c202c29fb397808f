// Package docs holds the OpenAPI description of the HTTP surface. It is
// regenerated from the handler annotations with `swag init -g cmd/server/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "https://codeberg.org/notecanvas/server"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/health.Response"}}
                }
            }
        },
        "/api/v1/ping": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Ping",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/health.PingResponse"}}
                }
            }
        },
        "/api/v1/sessions": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Create a canvas session",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/sessions.SessionResponse"}}
                }
            }
        },
        "/api/v1/sessions/{session_id}": {
            "delete": {
                "tags": ["sessions"],
                "summary": "End a canvas session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "session_id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/sessions/{session_id}/state": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Get the shared agent state",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "session_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/sessions.StateResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Replace the shared agent state",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "session_id", "in": "path", "required": true},
                    {"description": "Whole new state", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/sessions.ReplaceStateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/sessions.StateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/sessions/{session_id}/note.html": {
            "get": {
                "produces": ["text/html"],
                "tags": ["sessions"],
                "summary": "Render the note as an HTML page",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "session_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/sessions/{session_id}/actions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["actions"],
                "summary": "List pending action requests",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "session_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/sessions.ActionsResponse"}}
                }
            }
        },
        "/api/v1/sessions/{session_id}/actions/{action_id}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["actions"],
                "summary": "Answer an action request",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "session_id", "in": "path", "required": true},
                    {"type": "string", "description": "Action request ID", "name": "action_id", "in": "path", "required": true},
                    {"description": "YES or NO", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/sessions.DecisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/sessions.DecisionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/agents/{name}/run": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["agent"],
                "summary": "Run the note agent against a session",
                "parameters": [
                    {"type": "string", "description": "Agent name", "name": "name", "in": "path", "required": true},
                    {"description": "Conversation", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/agent.RunRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/chat": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Forward a chat turn to the agent",
                "parameters": [
                    {"description": "Chat request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/chat.Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/chat.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/ws": {
            "get": {
                "tags": ["websocket"],
                "summary": "Connect a canvas",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "session_id", "in": "query"}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "string"}
            }
        },
        "health.Response": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "service": {"type": "string"},
                "version": {"type": "string"},
                "sessions": {"type": "integer"}
            }
        },
        "health.PingResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "sessions.SessionResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "version": {"type": "integer"},
                "state": {"type": "object"}
            }
        },
        "sessions.StateResponse": {
            "type": "object",
            "properties": {
                "version": {"type": "integer"},
                "state": {"type": "object"}
            }
        },
        "sessions.ReplaceStateRequest": {
            "type": "object",
            "required": ["state"],
            "properties": {
                "state": {"type": "object"},
                "base_version": {"type": "integer"}
            }
        },
        "sessions.ActionsResponse": {
            "type": "object",
            "properties": {
                "actions": {"type": "array", "items": {"type": "object"}}
            }
        },
        "sessions.DecisionRequest": {
            "type": "object",
            "required": ["decision"],
            "properties": {
                "decision": {"type": "string", "enum": ["YES", "NO"]}
            }
        },
        "sessions.DecisionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "decision": {"type": "string"}
            }
        },
        "agent.RunRequest": {
            "type": "object",
            "required": ["session_id", "messages"],
            "properties": {
                "session_id": {"type": "string"},
                "messages": {"type": "array", "items": {"type": "object"}}
            }
        },
        "chat.Request": {
            "type": "object",
            "required": ["messages"],
            "properties": {
                "agent": {"type": "string"},
                "session_id": {"type": "string"},
                "model": {"type": "string"},
                "messages": {"type": "array", "items": {"type": "object"}}
            }
        },
        "chat.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "reply": {"type": "string"},
                "intent": {"type": "string"},
                "provider": {"type": "string"},
                "model": {"type": "string"},
                "version": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "",
	Schemes:          []string{},
	Title:            "Note Canvas API",
	Description:      "Shared-state canvas and agent for generating Xiaohongshu notes",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
