// Package docs registra la definición OpenAPI que sirve /swagger/*.
// Regenerar con: swag init -g cmd/api/main.go -o docs
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
    "securityDefinitions": {
        "DebugUser": {"type": "apiKey", "name": "X-Debug-User-ID", "in": "header"},
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"DebugUser": []}, {"Bearer": []}],
    "paths": {
        "/health": {"get": {"tags": ["ops"], "summary": "Liveness", "responses": {"200": {"description": "ok"}}}},
        "/metrics": {"get": {"tags": ["ops"], "summary": "Métricas Prometheus", "responses": {"200": {"description": "text exposition"}}}},
        "/dogs": {
            "get": {"tags": ["dogs"], "summary": "Listar mis perros", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "401": {"description": "unauthorized"}}},
            "post": {"tags": ["dogs"], "summary": "Registrar perro", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "400": {"description": "invalid input"}, "401": {"description": "unauthorized"}}}
        },
        "/dogs/{dogID}": {
            "get": {"tags": ["dogs"], "summary": "Ver perro", "parameters": [{"type": "string", "name": "dogID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "not found"}}},
            "patch": {"tags": ["dogs"], "summary": "Corregir perfil (owner)", "parameters": [{"type": "string", "name": "dogID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "forbidden"}, "404": {"description": "not found"}}}
        },
        "/dogs/{dogID}/parents": {
            "put": {"tags": ["dogs"], "summary": "Definir sire y dam (owner)", "parameters": [{"type": "string", "name": "dogID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "invalid parent"}, "403": {"description": "forbidden"}}}
        },
        "/dogs/{dogID}/pedigree": {
            "get": {"tags": ["pedigree"], "summary": "Árbol de ancestros", "parameters": [{"type": "string", "name": "dogID", "in": "path", "required": true}, {"type": "integer", "name": "generations", "in": "query"}], "responses": {"200": {"description": "OK"}, "400": {"description": "invalid generations"}, "404": {"description": "not found"}, "503": {"description": "store unavailable"}}}
        },
        "/dogs/{dogID}/genotype": {
            "get": {"tags": ["genetics"], "summary": "Ver perfil de ADN", "parameters": [{"type": "string", "name": "dogID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "not found"}}},
            "put": {"tags": ["genetics"], "summary": "Cargar perfil de ADN (owner)", "parameters": [{"type": "string", "name": "dogID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "invalid genotype"}, "403": {"description": "forbidden"}}}
        },
        "/breeding/coi": {
            "post": {"tags": ["breeding"], "summary": "Calcular COI de una cruza", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "invalid input"}, "404": {"description": "sire or dam not found"}, "503": {"description": "retry"}}}
        },
        "/breeding/compatibility": {
            "post": {"tags": ["breeding"], "summary": "Reporte de compatibilidad", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "invalid input"}, "404": {"description": "sire or dam not found"}, "503": {"description": "retry"}}}
        },
        "/breeding/predict": {
            "post": {"tags": ["breeding"], "summary": "Predicción de crías desde genotipos", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "invalid input"}}}
        },
        "/breeding/analyses": {
            "get": {"tags": ["breeding"], "summary": "Historial de análisis", "parameters": [{"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pedigree & Genetics API",
	Description:      "Pedigree, coeficiente de consanguinidad y predicción genética para criadores de perros.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
