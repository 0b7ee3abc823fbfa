// Package docs registers the OpenAPI document served under /swagger/.
// Regenerate from the handler annotations with:
//
//	swag init -g cmd/storefront-api/main.go -o docs
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
        "/cart": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Cart"], "summary": "Get the current cart", "responses": {"200": {"description": "Current cart", "schema": {"$ref": "#/definitions/models.Cart"}}}},
            "delete": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Cart"], "summary": "Empty the cart", "responses": {"200": {"description": "Empty cart", "schema": {"$ref": "#/definitions/models.Cart"}}}}
        },
        "/cart/items": {
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["Cart"], "summary": "Add an item to the cart", "parameters": [{"name": "item", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.AddItemRequest"}}], "responses": {"200": {"description": "Updated cart", "schema": {"$ref": "#/definitions/models.Cart"}}}}
        },
        "/cart/items/{productId}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["Cart"], "summary": "Set the quantity of a cart line", "parameters": [{"type": "string", "format": "uuid", "name": "productId", "in": "path", "required": true}, {"name": "quantity", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.UpdateQuantityRequest"}}], "responses": {"200": {"description": "Updated cart", "schema": {"$ref": "#/definitions/models.Cart"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Cart"], "summary": "Remove a line from the cart", "parameters": [{"type": "string", "format": "uuid", "name": "productId", "in": "path", "required": true}], "responses": {"200": {"description": "Updated cart", "schema": {"$ref": "#/definitions/models.Cart"}}}}
        },
        "/orders": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Orders"], "summary": "List the authenticated user's orders", "parameters": [{"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "pageSize", "in": "query"}], "responses": {"200": {"description": "Orders, newest first"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Orders"], "summary": "Place an order from the cart", "parameters": [{"type": "string", "name": "Idempotency-Key", "in": "header"}, {"name": "order", "in": "body", "schema": {"$ref": "#/definitions/models.CheckoutRequest"}}], "responses": {"200": {"description": "Order already placed for this key", "schema": {"$ref": "#/definitions/models.Order"}}, "201": {"description": "Order placed", "schema": {"$ref": "#/definitions/models.Order"}}}}
        },
        "/orders/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Orders"], "summary": "Get an order by ID", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Order", "schema": {"$ref": "#/definitions/models.Order"}}}}
        },
        "/orders/{id}/cancel": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Orders"], "summary": "Cancel an order", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Cancelled order", "schema": {"$ref": "#/definitions/models.Order"}}}}
        },
        "/orders/{id}/refund": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Orders"], "summary": "Request a refund", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Order awaiting refund", "schema": {"$ref": "#/definitions/models.Order"}}}}
        },
        "/products": {
            "get": {"tags": ["Products"], "summary": "List products", "parameters": [{"type": "string", "name": "category", "in": "query"}, {"type": "string", "name": "search", "in": "query"}, {"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "pageSize", "in": "query"}], "responses": {"200": {"description": "Products"}}}
        },
        "/products/{id}": {
            "get": {"tags": ["Products"], "summary": "Get a product by ID", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Product", "schema": {"$ref": "#/definitions/models.Product"}}}}
        },
        "/users/register": {
            "post": {"tags": ["Users"], "summary": "Register a new user", "parameters": [{"name": "user", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RegisterRequest"}}], "responses": {"201": {"description": "User successfully registered", "schema": {"$ref": "#/definitions/models.User"}}}}
        },
        "/users/login": {
            "post": {"tags": ["Users"], "summary": "User login", "parameters": [{"name": "credentials", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}], "responses": {"200": {"description": "Login successful", "schema": {"$ref": "#/definitions/models.LoginResponse"}}}}
        },
        "/users/profile": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Get the authenticated user's profile", "responses": {"200": {"description": "User profile", "schema": {"$ref": "#/definitions/models.User"}}}}
        },
        "/admin/products": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Create a new product", "parameters": [{"name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateProductRequest"}}], "responses": {"201": {"description": "Product created", "schema": {"$ref": "#/definitions/models.Product"}}}}
        },
        "/admin/products/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Update a product", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}, {"name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.UpdateProductRequest"}}], "responses": {"200": {"description": "Updated product", "schema": {"$ref": "#/definitions/models.Product"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Delete a product", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/admin/orders": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "List all orders (admin)", "parameters": [{"type": "string", "name": "status", "in": "query"}, {"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "pageSize", "in": "query"}], "responses": {"200": {"description": "Orders"}}}
        },
        "/admin/orders/{id}": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Delete an order (admin)", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/admin/orders/{id}/status": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Move an order to a new status (admin)", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}, {"name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.UpdateOrderStatusRequest"}}], "responses": {"200": {"description": "Updated order", "schema": {"$ref": "#/definitions/models.Order"}}}}
        },
        "/admin/users/{id}/status": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Block or unblock a user", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}, {"name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.UpdateUserStatusRequest"}}], "responses": {"200": {"description": "Updated user", "schema": {"$ref": "#/definitions/models.User"}}}}
        }
    },
    "definitions": {
        "models.AddItemRequest": {"type": "object", "required": ["product_id", "quantity"], "properties": {"product_id": {"type": "string"}, "quantity": {"type": "integer", "minimum": 1}}},
        "models.UpdateQuantityRequest": {"type": "object", "required": ["quantity"], "properties": {"quantity": {"type": "integer", "minimum": 1}}},
        "models.CartItem": {"type": "object", "properties": {"product_id": {"type": "string"}, "quantity": {"type": "integer"}, "unit_price": {"type": "number"}}},
        "models.Cart": {"type": "object", "properties": {"id": {"type": "string"}, "user_id": {"type": "string"}, "items": {"type": "array", "items": {"$ref": "#/definitions/models.CartItem"}}, "total": {"type": "number"}, "created_at": {"type": "string"}, "updated_at": {"type": "string"}}},
        "models.Address": {"type": "object", "required": ["street", "city", "state", "postal_code", "country"], "properties": {"street": {"type": "string"}, "city": {"type": "string"}, "state": {"type": "string"}, "postal_code": {"type": "string"}, "country": {"type": "string"}}},
        "models.CheckoutRequest": {"type": "object", "properties": {"shipping_address": {"$ref": "#/definitions/models.Address"}, "payment_method": {"type": "string", "enum": ["cash_on_delivery", "stripe"]}, "payment_intent_id": {"type": "string"}}},
        "models.OrderItem": {"type": "object", "properties": {"id": {"type": "string"}, "order_id": {"type": "string"}, "product_id": {"type": "string"}, "quantity": {"type": "integer"}, "unit_price": {"type": "number"}, "created_at": {"type": "string"}}},
        "models.Order": {"type": "object", "properties": {"id": {"type": "string"}, "customer_id": {"type": "string"}, "status": {"type": "string"}, "total_amount": {"type": "number"}, "payment_method": {"type": "string"}, "payment_status": {"type": "string"}, "payment_intent_id": {"type": "string"}, "shipping_address": {"$ref": "#/definitions/models.Address"}, "items": {"type": "array", "items": {"$ref": "#/definitions/models.OrderItem"}}, "created_at": {"type": "string"}, "updated_at": {"type": "string"}}},
        "models.UpdateOrderStatusRequest": {"type": "object", "required": ["status"], "properties": {"status": {"type": "string", "enum": ["processing", "shipped", "delivered", "cancelled", "refund_requested", "refunded"]}}},
        "models.Product": {"type": "object", "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "description": {"type": "string"}, "category": {"type": "string"}, "price": {"type": "number"}, "stock_quantity": {"type": "integer"}, "image_url": {"type": "string"}, "created_at": {"type": "string"}, "updated_at": {"type": "string"}}},
        "models.CreateProductRequest": {"type": "object", "required": ["name", "category", "price"], "properties": {"name": {"type": "string"}, "description": {"type": "string"}, "category": {"type": "string"}, "price": {"type": "number"}, "stock_quantity": {"type": "integer"}, "image_url": {"type": "string"}}},
        "models.UpdateProductRequest": {"type": "object", "properties": {"name": {"type": "string"}, "description": {"type": "string"}, "category": {"type": "string"}, "price": {"type": "number"}, "stock_quantity": {"type": "integer"}, "image_url": {"type": "string"}}},
        "models.User": {"type": "object", "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string"}, "status": {"type": "string"}, "created_at": {"type": "string"}, "updated_at": {"type": "string"}}},
        "models.RegisterRequest": {"type": "object", "required": ["email", "password", "name"], "properties": {"email": {"type": "string"}, "password": {"type": "string", "minLength": 6}, "name": {"type": "string"}}},
        "models.LoginRequest": {"type": "object", "required": ["email", "password"], "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "models.LoginResponse": {"type": "object", "properties": {"token": {"type": "string"}, "expires_in": {"type": "integer"}, "user": {"$ref": "#/definitions/models.User"}}},
        "models.UpdateUserStatusRequest": {"type": "object", "required": ["status"], "properties": {"status": {"type": "string", "enum": ["active", "blocked"]}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT.",
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Storefront API",
	Description:      "Cart, checkout and order management for a single storefront.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
