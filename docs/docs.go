// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/recordings": {
            "post": {
                "tags": ["Recordings"],
                "summary": "Start a recording",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/CreateRecordingRequest"}}],
                "responses": {"201": {"description": "Recording snapshot"}, "400": {"description": "Invalid request"}}
            }
        },
        "/recordings/{id}": {
            "get": {
                "tags": ["Recordings"],
                "summary": "Get recording snapshot",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "Recording snapshot"}, "404": {"description": "Recording not found"}}
            }
        },
        "/recordings/{id}/cost": {
            "get": {
                "tags": ["Recordings"],
                "summary": "Get recording cost",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "Cost report"}}
            }
        },
        "/recordings/{id}/chunks": {
            "post": {
                "tags": ["Recordings"],
                "summary": "Upload an audio chunk",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "formData", "name": "audio", "type": "file", "required": true},
                    {"in": "formData", "name": "duration_ms", "type": "integer"},
                    {"in": "formData", "name": "created_at", "type": "string"}
                ],
                "responses": {"202": {"description": "Chunk accepted"}}
            }
        },
        "/recordings/{id}/events": {
            "get": {
                "tags": ["Recordings"],
                "summary": "Live event stream (websocket)",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"101": {"description": "Switching protocols"}}
            }
        },
        "/recordings/{id}/attendees": {
            "post": {
                "tags": ["Enrichers"],
                "summary": "Register a simulated attendee",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/AddAttendeeRequest"}}
                ],
                "responses": {"201": {"description": "Attendee"}}
            }
        },
        "/recordings/{id}/attendees/{attendee_id}/questions": {
            "post": {
                "tags": ["Enrichers"],
                "summary": "Ask a question about the latest summary",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "path", "name": "attendee_id", "type": "string", "required": true}
                ],
                "responses": {"202": {"description": "Question scheduled"}, "409": {"description": "No summary yet"}}
            }
        },
        "/recordings/{id}/marketers": {
            "post": {
                "tags": ["Enrichers"],
                "summary": "Register a pull quote extractor",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"201": {"description": "Marketer"}}
            }
        },
        "/recordings/{id}/vocabulary-extractors": {
            "post": {
                "tags": ["Enrichers"],
                "summary": "Register a glossary builder",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"201": {"description": "Vocabulary extractor"}}
            }
        },
        "/recordings/{id}/sentiment-estimators": {
            "post": {
                "tags": ["Enrichers"],
                "summary": "Register a sentiment estimator",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"201": {"description": "Sentiment estimator"}}
            }
        }
    },
    "definitions": {
        "CreateRecordingRequest": {
            "type": "object",
            "properties": {
                "audience": {"type": "string"},
                "chunks_per_chapter": {"type": "integer"},
                "chunks_per_illustration": {"type": "integer"},
                "style": {"type": "string"}
            }
        },
        "AddAttendeeRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "voice_name": {"type": "string"},
                "profile": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Talk Assistant API",
	Description:      "Incremental enrichment of live talk recordings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
