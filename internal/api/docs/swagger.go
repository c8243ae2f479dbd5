package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// UserResponse represents a directory user in responses
type UserResponse struct {
	ID        string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Username  string `json:"username" example:"jane"`
	Email     string `json:"email" example:"jane@example.com"`
	Role      string `json:"role" example:"user"`
	CreatedAt string `json:"createdAt" example:"2024-01-01T00:00:00Z"`
}

// CreateUserBody represents the payload for user creation
type CreateUserBody struct {
	Username string `json:"username" example:"jane"`
	Email    string `json:"email" example:"jane@example.com"`
	Role     string `json:"role" example:"user"`
}

// UserListResponse wraps a page of users
type UserListResponse struct {
	Data []UserResponse `json:"data"`
	Meta map[string]int `json:"meta"`
}

// AuthorizationLogResponse represents one recorded decision
type AuthorizationLogResponse struct {
	ID           string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Claimant     string  `json:"claimant" example:"jane"`
	RecognizedAs string  `json:"recognizedAs" example:"jane"`
	Confidence   float64 `json:"confidence" example:"87.5"`
	Outcome      string  `json:"outcome" example:"Authorized"`
	Reason       string  `json:"reason" example:"Authorized"`
	CreatedAt    string  `json:"createdAt" example:"2024-01-01T00:00:00Z"`
}

// AuthorizationLogListResponse wraps a page of decisions
type AuthorizationLogListResponse struct {
	Data []AuthorizationLogResponse `json:"data"`
	Meta map[string]int             `json:"meta"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Shield Face Authorization API",
		Version:     "v1.0.0",
		Description: "Face enrollment, recognition and authorization service. Realtime frame traffic runs over /v1/ws; this API covers the user directory and decision log.",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/users - Create user
		endpoint.New(
			endpoint.POST,
			"/users",
			endpoint.WithTags("Users"),
			endpoint.WithSummary("Create a directory user"),
			endpoint.WithDescription("Registers a new user in the directory. Requires an admin token."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(CreateUserBody{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UserResponse{}, "201", "User created successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_EMAIL", Message: "Email address is not valid"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing token"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "FORBIDDEN", Message: "Admin role required"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "USER_ALREADY_EXISTS", Message: "User already exists"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// GET /v1/users - List users
		endpoint.New(
			endpoint.GET,
			"/users",
			endpoint.WithTags("Users"),
			endpoint.WithSummary("List directory users"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum number of users (default: 50, max: 100)")),
				parameter.IntParam("offset", parameter.Query, parameter.WithDescription("Offset for pagination (default: 0)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UserListResponse{}, "200", "Users retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing token"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "FORBIDDEN", Message: "Admin role required"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// GET /v1/users/:id - Get user
		endpoint.New(
			endpoint.GET,
			"/users/{id}",
			endpoint.WithTags("Users"),
			endpoint.WithSummary("Get a directory user"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("User UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UserResponse{}, "200", "User retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing token"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "FORBIDDEN", Message: "Admin role required"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "USER_NOT_FOUND", Message: "User not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// DELETE /v1/users/:id - Delete user
		endpoint.New(
			endpoint.DELETE,
			"/users/{id}",
			endpoint.WithTags("Users"),
			endpoint.WithSummary("Delete a directory user"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("User UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "User deleted successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing token"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "FORBIDDEN", Message: "Admin role required"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "USER_NOT_FOUND", Message: "User not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),

		// GET /v1/admin/authorization-logs - List decisions
		endpoint.New(
			endpoint.GET,
			"/admin/authorization-logs",
			endpoint.WithTags("Authorization Logs"),
			endpoint.WithSummary("List recorded authorization decisions"),
			endpoint.WithDescription("Returns the decision log, newest first. Requires an admin token."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("claimant", parameter.Query, parameter.WithDescription("Filter by claimed identity")),
				parameter.StrParam("authorized", parameter.Query, parameter.WithDescription("Filter by outcome: true or false")),
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum number of entries (default: 100, max: 500)")),
				parameter.IntParam("offset", parameter.Query, parameter.WithDescription("Offset for pagination (default: 0)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AuthorizationLogListResponse{}, "200", "Decisions retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid filter value"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing token"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "FORBIDDEN", Message: "Admin role required"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"BearerAuth": {}}}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
