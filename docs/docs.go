// Package docs registers the OpenAPI document served at /swagger/doc.json.
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
        "/": {
            "get": {
                "description": "HTML page mounting the detection table, with a static fallback table",
                "produces": ["text/html"],
                "tags": ["report"],
                "summary": "Report page",
                "responses": {
                    "200": {"description": "report page", "schema": {"type": "string"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/report/config.json": {
            "get": {
                "description": "The renderer configuration used by the report page",
                "produces": ["application/json"],
                "tags": ["report"],
                "summary": "Table configuration",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/report/data.json": {
            "get": {
                "description": "All stored detections in insertion order",
                "produces": ["application/json"],
                "tags": ["report"],
                "summary": "Detection feed",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.DetectionRecord"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/report/export.csv": {
            "get": {
                "description": "Detections as CSV in the storage line layout",
                "produces": ["text/csv"],
                "tags": ["report"],
                "summary": "Export detections",
                "parameters": [
                    {"type": "boolean", "description": "Prepend a header row", "name": "header", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/report/upload": {
            "post": {
                "description": "Exports all detections and stores them as a new Drive file",
                "produces": ["application/json"],
                "tags": ["report"],
                "summary": "Upload report to Drive",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/drive.Result"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/sms": {
            "post": {
                "description": "Twilio webhook. The body carries epochMillis,rfid,temperature[,humidity],weight[,skink...].\nAlways answers with empty TwiML; messages that cannot be stored are only logged.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/xml"],
                "tags": ["sms"],
                "summary": "Receive a station SMS",
                "parameters": [
                    {"type": "string", "description": "Twilio message id", "name": "MessageSid", "in": "formData", "required": true},
                    {"type": "string", "description": "Station phone number", "name": "From", "in": "formData", "required": true},
                    {"type": "string", "description": "Detection payload", "name": "Body", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "empty TwiML response", "schema": {"type": "string"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/v1/detections/count": {
            "get": {
                "produces": ["application/json"],
                "tags": ["detections"],
                "summary": "Count detections",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/resources.countResponse"}}
                }
            }
        },
        "/v1/detections/{id}": {
            "get": {
                "description": "Get a stored detection by its Twilio message id",
                "produces": ["application/json"],
                "tags": ["detections"],
                "summary": "Get a detection",
                "parameters": [
                    {"type": "string", "description": "MessageSid", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.DetectionRecord"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/v1/health": {
            "get": {
                "description": "Reports that the hub is up and which version is running",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/resources.healthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "drive.Result": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "errors.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "details": {},
                "message": {"type": "string"},
                "request_id": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "models.DetectionRecord": {
            "type": "object",
            "properties": {
                "humidity": {"type": "number"},
                "id": {"type": "string"},
                "phoneNumber": {"type": "string"},
                "rfid": {"type": "string"},
                "skinkRfids": {"type": "array", "items": {"type": "string"}},
                "temperature": {"type": "number"},
                "time": {"type": "string"},
                "weight": {"type": "number"}
            }
        },
        "resources.countResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"}
            }
        },
        "resources.healthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "version": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "SBSBS Report Hub API",
	Description:      "Receives basking station detections over SMS and serves the detection report.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
