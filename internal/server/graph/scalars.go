package graph

import (
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// bigIntType carries record positions, which are unix-millisecond values
// and do not fit the 32-bit GraphQL Int.
var bigIntType = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "BigInt",
	Description: "64-bit signed integer",
	Serialize: func(value interface{}) interface{} {
		return coerceInt64(value)
	},
	ParseValue: func(value interface{}) interface{} {
		return coerceInt64(value)
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		if v, ok := valueAST.(*ast.IntValue); ok {
			if i, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
				return i
			}
		}
		return nil
	},
})

func coerceInt64(value interface{}) interface{} {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return nil
}
