// Package docs holds the swagger description of the predict API.
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
        "/predict": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["prediction"],
                "summary": "Score one transaction",
                "parameters": [
                    {
                        "description": "transaction",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/views.PredictRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/views.PredictResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}}
                }
            }
        },
        "/upload_csv": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["prediction"],
                "summary": "Score every row of a CSV upload",
                "parameters": [
                    {
                        "type": "file",
                        "description": "CSV with the seven feature columns",
                        "name": "file",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/views.BatchResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "pkg.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "string"},
                "missing": {"type": "array", "items": {"type": "string"}},
                "found": {"type": "array", "items": {"type": "string"}}
            }
        },
        "views.PredictRequest": {
            "type": "object",
            "required": ["amount", "device_type", "merchant_category", "network_type", "receiver_bank", "sender_bank", "transaction_type"],
            "properties": {
                "transaction_type": {"type": "string", "example": "P2P"},
                "amount": {"type": "number", "minimum": 0, "example": 150000},
                "merchant_category": {"type": "string", "example": "Gambling"},
                "sender_bank": {"type": "string", "example": "Unknown Bank"},
                "receiver_bank": {"type": "string", "example": "SBI"},
                "device_type": {"type": "string", "example": "Emulator"},
                "network_type": {"type": "string", "example": "VPN"}
            }
        },
        "views.PredictResponse": {
            "type": "object",
            "properties": {
                "prediction": {"type": "string", "enum": ["Fraudulent", "Legitimate"], "example": "Fraudulent"},
                "is_fraud": {"type": "integer", "example": 1},
                "fraud_probability": {"type": "number", "example": 0.8333}
            }
        },
        "views.FraudRow": {
            "type": "object",
            "properties": {
                "transaction id": {"type": "string"},
                "transaction type": {"type": "string"},
                "amount (INR)": {"type": "number"},
                "sender_bank": {"type": "string"},
                "fraud_prob": {"type": "string", "example": "83.33%"}
            }
        },
        "views.BatchResult": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Analysis Complete"},
                "total_processed": {"type": "integer"},
                "fraud_count": {"type": "integer"},
                "frauds": {"type": "array", "items": {"$ref": "#/definitions/views.FraudRow"}}
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
	Title:            "UPI Fraud Detection API",
	Description:      "Scores UPI transactions for fraud, one at a time or as a CSV batch.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
