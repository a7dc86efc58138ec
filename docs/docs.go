// Package docs holds the swagger document served under /swagger.
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
		"/auth/register": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Register a new account",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/auth/login": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Log in and receive a token",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/auth/logout": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Clear the auth cookie",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/auth/verify/{token}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Verify an email address",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "token",
						"name": "token",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/auth/forgot-password": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Request a password reset email",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/auth/reset-password/{token}": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Reset a password",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "token",
						"name": "token",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/auth/profile": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Current user profile",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/auth/users": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Users"
				],
				"summary": "List users (admin)",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/auth/users/{id}": {
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Users"
				],
				"summary": "Delete a user (admin)",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/agent/apply": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Agents"
				],
				"summary": "Submit an agent application",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/agent/my-application": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Agents"
				],
				"summary": "Current agent's application",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/agent/applications/pending": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Agents"
				],
				"summary": "Pending applications (admin)",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/agent/applications/{id}/approve": {
			"patch": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Agents"
				],
				"summary": "Approve an application (admin)",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/agent/applications/{id}/reject": {
			"patch": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Agents"
				],
				"summary": "Reject an application (admin)",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/properties": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Properties"
				],
				"summary": "List properties",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			},
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Properties"
				],
				"summary": "Create a property",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/properties/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Properties"
				],
				"summary": "Get a property",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"patch": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Properties"
				],
				"summary": "Update a property",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Properties"
				],
				"summary": "Delete a property",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/cars": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Cars"
				],
				"summary": "List cars",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				}
			},
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Cars"
				],
				"summary": "Create a car",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/cars/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Cars"
				],
				"summary": "Get a car",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"patch": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Cars"
				],
				"summary": "Update a car",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Cars"
				],
				"summary": "Delete a car",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/chat/room": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Chat"
				],
				"summary": "Create or fetch a chat room",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/chat/message": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Chat"
				],
				"summary": "Send a message",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/chat/room/{roomId}/messages": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Chat"
				],
				"summary": "List room messages",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "roomId",
						"name": "roomId",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/chat/my-chats": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Chat"
				],
				"summary": "Caller's chat rooms",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/chat/admin/chats": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Chat"
				],
				"summary": "All chat rooms (admin)",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/payments/initialize": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Payments"
				],
				"summary": "Initialize a payment",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/payments/verify/{reference}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Payments"
				],
				"summary": "Verify a payment",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "reference",
						"name": "reference",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/payments/transactions": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Payments"
				],
				"summary": "List payments (admin)",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/dashboard/user": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Dashboard"
				],
				"summary": "User dashboard",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/dashboard/agent": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Dashboard"
				],
				"summary": "Agent dashboard",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/dashboard/admin": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Dashboard"
				],
				"summary": "Admin dashboard",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/response.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		}
	},
	"definitions": {
		"response.Response": {
			"type": "object",
			"properties": {
				"data": {},
				"message": {
					"type": "string"
				},
				"status": {
					"type": "boolean"
				}
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "ATW Marketplace API",
	Description:      "Real-estate and car marketplace: accounts, agent onboarding, listings, chat and payments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
