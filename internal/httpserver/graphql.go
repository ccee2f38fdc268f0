package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"
)

type graphqlRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// graphqlHandler executes one GraphQL request. The gin context travels in the request
// context so resolvers can read and set the session cookie.
func graphqlHandler(schema *graphql.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req graphqlRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"message": "invalid request body", "extensions": gin.H{"code": codeValidation}}}})
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"message": "query is required", "extensions": gin.H{"code": codeValidation}}}})
			return
		}
		ctx := withGinContext(c.Request.Context(), c)
		resp := schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
		c.JSON(http.StatusOK, resp)
	}
}
