// Package docs holds the OpenAPI description served under /swagger.
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
        "/extractions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["extractions"],
                "summary": "List extractions",
                "parameters": [
                    {"type": "integer", "default": 0, "description": "Offset for pagination", "name": "offset", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Limit for pagination (max 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "List of extractions", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            },
            "post": {
                "description": "Render a PDF or image upload, extract suppliers and items, and stage the result for review",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["extractions"],
                "summary": "Upload a quotation report",
                "parameters": [
                    {"description": "Document payload", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.UploadExtractionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Extraction staged", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "422": {"description": "Document could not be extracted", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "429": {"description": "Provider quota exhausted", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "504": {"description": "Provider timed out", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/extractions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["extractions"],
                "summary": "Get extraction by ID",
                "parameters": [
                    {"type": "string", "description": "Extraction ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Extraction details", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Extraction not found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/extractions/{id}/confirm": {
            "post": {
                "description": "Reconcile the staged (or corrected) result into purchase orders, items and products",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["extractions"],
                "summary": "Confirm an extraction",
                "parameters": [
                    {"type": "string", "description": "Extraction ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"description": "Optional corrected result", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/handler.ConfirmExtractionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Reconciliation report", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "409": {"description": "Extraction already reviewed", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/extractions/{id}/decline": {
            "post": {
                "produces": ["application/json"],
                "tags": ["extractions"],
                "summary": "Decline an extraction",
                "parameters": [
                    {"type": "string", "description": "Extraction ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Extraction declined", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "409": {"description": "Extraction already reviewed", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/extractions/{id}/export": {
            "get": {
                "description": "Download the staged result as an xlsx workbook or a CSV file",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "text/csv"],
                "tags": ["extractions"],
                "summary": "Export an extraction",
                "parameters": [
                    {"type": "string", "description": "Extraction ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"type": "string", "default": "xlsx", "description": "xlsx or csv", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Export file", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/extractions/{id}/original": {
            "get": {
                "produces": ["application/json"],
                "tags": ["extractions"],
                "summary": "Get a download link for the archived original",
                "parameters": [
                    {"type": "string", "description": "Extraction ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Presigned URL", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Extraction or original not found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/functions/parse-report": {
            "post": {
                "description": "Extract a quotation report without staging it. Defaults to remote extraction.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["functions"],
                "summary": "Parse a quotation report",
                "parameters": [
                    {"description": "Document payload", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.UploadExtractionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Extraction result, or ParseReportError on failure", "schema": {"$ref": "#/definitions/domain.ExtractionResult"}},
                    "400": {"description": "Body is not JSON", "schema": {"$ref": "#/definitions/handler.ParseReportError"}},
                    "500": {"description": "Extraction provider not configured", "schema": {"$ref": "#/definitions/handler.ParseReportError"}}
                }
            }
        },
        "/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List purchase orders",
                "parameters": [
                    {"enum": ["pending_triage", "awaiting_delivery", "partial_delivery", "full_delivery", "finalized", "declined"], "type": "string", "description": "Filter by status", "name": "status", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Offset for pagination", "name": "offset", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Limit for pagination (max 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "List of orders", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get purchase order by ID",
                "parameters": [
                    {"type": "string", "description": "Order ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Order with items", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Order not found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/orders/{id}/status": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Move a purchase order through its workflow",
                "parameters": [
                    {"type": "string", "description": "Order ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"description": "Target status", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateOrderStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated order", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "409": {"description": "Transition not allowed", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/orders/{id}/receive": {
            "post": {
                "description": "Stores the cumulative quantity received per item and moves the order to partial_delivery while any item is short, or to full_delivery otherwise.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Record received quantities for a purchase order",
                "parameters": [
                    {"type": "string", "description": "Order ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"description": "Received quantities", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ReceiveOrderRequest"}}
                ],
                "responses": {
                    "200": {"description": "Order with updated items", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Invalid request or nothing received", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "404": {"description": "Order or item not found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "409": {"description": "Order is not awaiting delivery", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        }
    },
    "definitions": {
        "domain.LineItem": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "description": {"type": "string"},
                "quantity": {"type": "number"},
                "unit": {"type": "string"},
                "unitPrice": {"type": "number"},
                "totalValue": {"type": "number"}
            }
        },
        "domain.SupplierRecord": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "cnpj": {"type": "string"},
                "email": {"type": "string"},
                "orderNumber": {"type": "string"},
                "deliveryDeadline": {"type": "string"},
                "totalValue": {"type": "number"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/domain.LineItem"}}
            }
        },
        "domain.ExtractionResult": {
            "type": "object",
            "properties": {
                "quotationNumber": {"type": "string"},
                "quotationTitle": {"type": "string"},
                "suppliers": {"type": "array", "items": {"$ref": "#/definitions/domain.SupplierRecord"}}
            }
        },
        "handler.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.PagMeta": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "handler.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "meta": {"$ref": "#/definitions/handler.PagMeta"},
                "success": {"type": "boolean", "example": true}
            }
        },
        "handler.ErrorResponseBody": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handler.APIError"},
                "success": {"type": "boolean", "example": false}
            }
        },
        "handler.ParseReportError": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "EXTRACTION_NO_TEXT"},
                "error": {"type": "string"}
            }
        },
        "handler.UploadExtractionRequest": {
            "type": "object",
            "properties": {
                "fileBase64": {"type": "string", "example": "JVBERi0xLjQK..."},
                "fileName": {"type": "string", "example": "cotacao_4521.pdf"},
                "images": {"type": "array", "items": {"type": "string"}},
                "mode": {"type": "string", "example": "local"},
                "text": {"type": "string"}
            }
        },
        "handler.ConfirmExtractionRequest": {
            "type": "object",
            "properties": {
                "result": {"$ref": "#/definitions/domain.ExtractionResult"}
            }
        },
        "handler.UpdateOrderStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "example": "awaiting_delivery"}
            }
        },
        "handler.ReceiveItemRequest": {
            "type": "object",
            "properties": {
                "item_id": {"type": "string", "example": "7d3f0c6e-2b1a-4c5d-9e8f-0a1b2c3d4e5f"},
                "quantity_received": {"type": "number", "example": 40}
            }
        },
        "handler.ReceiveOrderRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/handler.ReceiveItemRequest"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "SVA Procurement API",
	Description:      "Turns supplier quotation reports into hospital purchase orders.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
