// Package docs holds the OpenAPI description served at /swagger/index.html.
// It is maintained by hand alongside the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Liveness and database reachability",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.healthStatus"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/controllers.healthStatus"}}
                }
            }
        },
        "/api/users/register": {
            "post": {
                "tags": ["users"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"description": "Account", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.RegisterReq"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error or user already exists"}}
            }
        },
        "/api/users/login": {
            "post": {
                "tags": ["users"],
                "summary": "Exchange credentials for a bearer token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.LoginReq"}}],
                "responses": {"200": {"description": "token and user"}, "400": {"description": "Invalid credentials"}, "404": {"description": "User not found"}}
            }
        },
        "/api/users/validate-token": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Return the user the bearer token belongs to",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/users/subscribe": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Store the caller's push subscription",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"description": "Push subscription issued by the browser", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.SubscribeReq"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Remove the caller's push subscription",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/users/vapid-public-key": {
            "get": {
                "tags": ["users"],
                "summary": "Public key browsers need to create a push subscription",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/rooms": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["rooms"],
                "summary": "List every room with its members",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "Page size, unbounded when omitted", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Rows to skip", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Room"}}}}
            }
        },
        "/api/rooms/create": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["rooms"],
                "summary": "Create a room with the caller as its first member",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"description": "Room", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.CreateRoomReq"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/rooms/join/{roomId}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["rooms"],
                "summary": "Join a room",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Room ID", "name": "roomId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "already a member or room full"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/rooms/user/{userId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["rooms"],
                "summary": "List the rooms a user belongs to",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "User ID", "name": "userId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Room"}}}, "404": {"description": "Not Found"}}
            }
        },
        "/api/rooms/send-notification/{roomId}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["rooms"],
                "summary": "Notify every other member of a room",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Room ID", "name": "roomId", "in": "path", "required": true},
                    {"description": "Notification", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.RoomNotificationReq"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/notifications/send/{roomId}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Push a message to every subscribed member of a room",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Room ID", "name": "roomId", "in": "path", "required": true},
                    {"description": "Message", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.NotificationReq"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/notifications/stream": {
            "get": {
                "tags": ["notifications"],
                "summary": "Websocket feed of notifications for the caller's rooms",
                "parameters": [{"type": "string", "description": "Bearer token when headers cannot be set", "name": "access_token", "in": "query"}],
                "responses": {"101": {"description": "Switching Protocols"}, "401": {"description": "Unauthorized"}}
            }
        }
    },
    "definitions": {
        "controllers.healthStatus": {
            "type": "object",
            "properties": {
                "db": {"type": "string"},
                "sockets": {"type": "integer"},
                "status": {"type": "string"}
            }
        },
        "controllers.RegisterReq": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {
                "email": {"type": "string", "example": "alice@example.com"},
                "password": {"type": "string", "example": "secret1"},
                "username": {"type": "string", "example": "alice"}
            }
        },
        "controllers.LoginReq": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "example": "alice@example.com"},
                "password": {"type": "string", "example": "secret1"}
            }
        },
        "controllers.SubscribeReq": {
            "type": "object",
            "properties": {"subscription": {"type": "object"}}
        },
        "controllers.CreateRoomReq": {
            "type": "object",
            "required": ["maxMembers", "name"],
            "properties": {
                "maxMembers": {"type": "integer", "example": 10},
                "name": {"type": "string", "example": "General"}
            }
        },
        "controllers.RoomNotificationReq": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Starting in 5 minutes"},
                "title": {"type": "string", "example": "Standup"}
            }
        },
        "controllers.NotificationReq": {
            "type": "object",
            "required": ["message"],
            "properties": {"message": {"type": "string", "example": "Lunch is here"}}
        },
        "models.Member": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "models.Room": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "createdBy": {"type": "string"},
                "id": {"type": "string"},
                "maxMembers": {"type": "integer"},
                "memberCount": {"type": "integer"},
                "members": {"type": "array", "items": {"$ref": "#/definitions/models.Member"}},
                "name": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Room Push API",
	Description:      "Rooms, membership and push notification fan-out.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
