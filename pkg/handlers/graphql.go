// Package handlers contains the HTTP surface: the GraphQL endpoint and
// the health/ping endpoints. The GraphQL handler only frames requests
// and responses; all query semantics live in the compiled registry.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/tablefront/tablefront/pkg/gql"
)

// graphQLRequest is the standard POST body of a GraphQL HTTP request.
type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// GraphQLHandler serves POST /graphql against the immutable registry.
type GraphQLHandler struct {
	registry *gql.Registry
	logger   *zap.Logger
}

// NewGraphQLHandler creates a GraphQLHandler over a built registry.
func NewGraphQLHandler(registry *gql.Registry, logger *zap.Logger) *GraphQLHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphQLHandler{
		registry: registry,
		logger:   logger.Named("graphql-handler"),
	}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *GraphQLHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/graphql", h.ServeGraphQL)
}

// ServeGraphQL executes one GraphQL request. Resolver errors come back
// as structured GraphQL errors with a 200 status; only transport-level
// problems produce non-200 responses.
func (h *GraphQLHandler) ServeGraphQL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.registry.Schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})

	if len(result.Errors) > 0 {
		h.logger.Debug("graphql request completed with errors",
			zap.Int("errors", len(result.Errors)),
			zap.String("first_error", result.Errors[0].Message))
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode graphql response", zap.Error(err))
	}
}
