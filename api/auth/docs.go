// Package auth registers the OpenAPI description of the auth service with
// swag so http-swagger can serve it under /swagger/. Keep it in step with the
// handler annotations in internal/auth/http.
package auth

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/tabsession"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/login": {
            "post": {
                "description": "Checks email and password and returns a signed bearer credential valid for 24 hours.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Session"],
                "summary": "Log in",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/authsdk.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.LoginResponse"}},
                    "400": {"description": "Missing email or password, or password too short", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "429": {"description": "Too many attempts", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/api/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the stored user for the credential's subject, the credential's iat/exp and recent login activity.",
                "produces": ["application/json"],
                "tags": ["Session"],
                "summary": "Get profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.ProfileResponse"}},
                    "401": {"description": "TOKEN_MISSING, TOKEN_INVALID or TOKEN_EXPIRED", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/api/password": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Verifies the current password and stores the new one. The caller's credential stays valid.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Session"],
                "summary": "Change password",
                "parameters": [
                    {
                        "description": "Current and new password",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/authsdk.ChangePasswordRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.MessageResponse"}},
                    "400": {"description": "Missing fields or new password too short", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "401": {"description": "Credential rejected, or current password incorrect", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/livez": {
            "get": {
                "description": "Liveness probe returning status, uptime and version. Always 200 while the process runs.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Readiness probe checking the database and that the credential codec can sign and verify.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version, checks", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}},
                    "503": {"description": "service not ready", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "authsdk.ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "currentPassword": {"type": "string"},
                "newPassword": {"type": "string"}
            }
        },
        "authsdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {"type": "string"},
                "signer": {"type": "string"}
            }
        },
        "authsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "checks": {"$ref": "#/definitions/authsdk.HealthChecks"},
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "authsdk.LoginEvent": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "example": "login"},
                "at": {"type": "integer"}
            }
        },
        "authsdk.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "ada@example.com"},
                "password": {"type": "string", "example": "correct-horse"}
            }
        },
        "authsdk.LoginResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/authsdk.User"}
            }
        },
        "authsdk.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "authsdk.ProfileResponse": {
            "type": "object",
            "properties": {
                "expiry": {"type": "integer"},
                "issuedAt": {"type": "integer"},
                "lastLogins": {"type": "array", "items": {"$ref": "#/definitions/authsdk.LoginEvent"}},
                "user": {"$ref": "#/definitions/authsdk.User"}
            }
        },
        "authsdk.User": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "ada@example.com"},
                "fullName": {"type": "string", "example": "Ada Lovelace"},
                "id": {"type": "integer", "example": 42},
                "role": {"type": "string", "example": "user"},
                "username": {"type": "string", "example": "ada"}
            }
        },
        "httpx.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "TOKEN_EXPIRED"},
                "message": {"type": "string", "example": "Token has expired"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer credential from /api/login. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Tabsession Authentication API",
	Description:      "Password login issuing HS256 bearer credentials, plus the guarded profile and password operations.\n\nGuarded endpoints answer 401 with code TOKEN_MISSING, TOKEN_INVALID or TOKEN_EXPIRED.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
