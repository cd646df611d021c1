// Package docs is the swagger document served under /swagger.
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
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a user",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in with email or username",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/accounts/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "Get or open the caller's account",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/accounts": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "Open the caller's account",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/categories": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["categories"],
                "summary": "Create a category",
                "responses": {"200": {"description": "OK"}}
            },
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["categories"],
                "summary": "List categories",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/categories/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["categories"],
                "summary": "Get a category",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["categories"],
                "summary": "Update a category",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["categories"],
                "summary": "Delete a category",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/categories/{id}/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["categories"],
                "summary": "List transactions in a category",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/budgets": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["budgets"],
                "summary": "Create a budget",
                "responses": {"200": {"description": "OK"}}
            },
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["budgets"],
                "summary": "List budgets",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/budgets/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["budgets"],
                "summary": "Aggregate active budgets",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/budgets/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["budgets"],
                "summary": "Get a budget",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["budgets"],
                "summary": "Update a budget",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["budgets"],
                "summary": "Soft delete a budget",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/budgets/{id}/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["budgets"],
                "summary": "List transactions linked to a budget",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pots": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["pots"],
                "summary": "Create a pot",
                "responses": {"200": {"description": "OK"}}
            },
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["pots"],
                "summary": "List pots",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pots/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["pots"],
                "summary": "Pot totals and the first pots",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pots/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["pots"],
                "summary": "Get a pot",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["pots"],
                "summary": "Update a pot",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["pots"],
                "summary": "Delete a pot and its transactions",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pots/{id}/saved-amount": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["pots"],
                "summary": "Deposit into or withdraw from a pot",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pots/{id}/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["pots"],
                "summary": "List transactions linked to a pot",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/transactions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Create a transaction",
                "responses": {"200": {"description": "OK"}}
            },
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "List and filter transactions",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/transactions/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Income and expense totals",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/transactions/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Export transactions as XLSX",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/transactions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Get a transaction",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Update a transaction",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Delete a transaction",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	Title:            "MyFinance API",
	Description:      "Personal finance ledger: accounts, budgets, pots and transactions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
