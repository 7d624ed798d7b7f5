// Package graph exposes the service layer as a GraphQL schema. Resolvers
// are thin plumbing: argument handling, principal lookup, and DTO mapping;
// all access decisions stay in the services underneath.
package graph

import (
	"context"

	"github.com/graphql-go/graphql"

	"github.com/vevey/vevey/internal/common"
	"github.com/vevey/vevey/internal/server/auth"
	"github.com/vevey/vevey/internal/server/records"
	"github.com/vevey/vevey/internal/server/sessions"
	"github.com/vevey/vevey/internal/server/users"
)

// Services are the collaborators the resolvers delegate to.
type Services struct {
	Sessions *sessions.Service
	Users    *users.Service
	Notes    *records.Notes
	Posts    *records.Posts
}

type Schema struct {
	schema graphql.Schema
	svc    Services
}

func New(svc Services) (*Schema, error) {
	s := &Schema{svc: svc}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    s.queryType(),
		Mutation: s.mutationType(),
	})
	if err != nil {
		return nil, err
	}
	s.schema = schema
	return s, nil
}

// Execute runs one GraphQL request. Errors surface in the result, never as
// a Go error; the taxonomy kind rides along as extensions.code.
func (s *Schema) Execute(ctx context.Context, query string, variables map[string]interface{}, operationName string) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  query,
		VariableValues: variables,
		OperationName:  operationName,
		Context:        withRequestCache(ctx),
	})
}

func (s *Schema) queryType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"ping": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return "ok", nil
				},
			},
			"getMe": &graphql.Field{
				Type:    graphql.NewNonNull(meType),
				Resolve: s.resolveGetMe,
			},
			"userNotes": &graphql.Field{
				Type: graphql.NewNonNull(notePaginationType),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"pos":    &graphql.ArgumentConfig{Type: bigIntType, DefaultValue: records.MaxPos},
					"limit":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: s.resolveUserNotes,
			},
			"note": &graphql.Field{
				Type: noteType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: s.resolveNote,
			},
			"posts": &graphql.Field{
				Type: graphql.NewNonNull(postPaginationType),
				Args: graphql.FieldConfigArgument{
					"authorId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"pos":      &graphql.ArgumentConfig{Type: bigIntType, DefaultValue: records.MaxPos},
					"limit":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: s.resolvePosts,
			},
			"openPosts": &graphql.Field{
				Type: graphql.NewNonNull(postPaginationType),
				Args: graphql.FieldConfigArgument{
					"pos":   &graphql.ArgumentConfig{Type: bigIntType, DefaultValue: records.MaxPos},
					"limit": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: s.resolveOpenPosts,
			},
			"post": &graphql.Field{
				Type: postType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: s.resolvePost,
			},
		},
	})
}

func (s *Schema) mutationType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createToken": &graphql.Field{
				Type: graphql.NewNonNull(tokenType),
				Args: graphql.FieldConfigArgument{
					"grantType":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(grantTypeEnum)},
					"email":        &graphql.ArgumentConfig{Type: graphql.String},
					"pwd":          &graphql.ArgumentConfig{Type: graphql.String},
					"refreshToken": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: s.resolveCreateToken,
			},
			"revokeToken": &graphql.Field{
				Type: graphql.NewNonNull(mutationResponseType),
				Args: graphql.FieldConfigArgument{
					"refreshToken": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: s.resolveRevokeToken,
			},
			"inviteMe": &graphql.Field{
				Type: graphql.NewNonNull(mutationResponseType),
				Args: graphql.FieldConfigArgument{
					"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: s.resolveInviteMe,
			},
			"confirmSignUp": &graphql.Field{
				Type: graphql.NewNonNull(mutationResponseType),
				Args: graphql.FieldConfigArgument{
					"email":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"name":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"code":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"newPwd": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: s.resolveConfirmSignUp,
			},
			"changePassword": &graphql.Field{
				Type: graphql.NewNonNull(mutationResponseType),
				Args: graphql.FieldConfigArgument{
					"oldPwd": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"newPwd": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: s.resolveChangePassword,
			},
			"forgotPassword": &graphql.Field{
				Type: graphql.NewNonNull(mutationResponseType),
				Args: graphql.FieldConfigArgument{
					"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: s.resolveForgotPassword,
			},
			"confirmForgotPassword": &graphql.Field{
				Type: graphql.NewNonNull(mutationResponseType),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"code":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"newPwd": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: s.resolveConfirmForgotPassword,
			},
			"unregister": &graphql.Field{
				Type: graphql.NewNonNull(mutationResponseType),
				Args: graphql.FieldConfigArgument{
					"pwd": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: s.resolveUnregister,
			},
			"createNote": &graphql.Field{
				Type: noteType,
				Args: graphql.FieldConfigArgument{
					"contents": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: s.resolveCreateNote,
			},
			"updateNote": &graphql.Field{
				Type: noteType,
				Args: graphql.FieldConfigArgument{
					"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"contents": &graphql.ArgumentConfig{Type: graphql.String},
					"pos":      &graphql.ArgumentConfig{Type: bigIntType},
				},
				Resolve: s.resolveUpdateNote,
			},
			"deleteNote": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: s.resolveDeleteNote,
			},
			"createPost": &graphql.Field{
				Type: postType,
				Args: graphql.FieldConfigArgument{
					"contents": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"open":     &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: s.resolveCreatePost,
			},
			"updatePost": &graphql.Field{
				Type: postType,
				Args: graphql.FieldConfigArgument{
					"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"contents": &graphql.ArgumentConfig{Type: graphql.String},
					"pos":      &graphql.ArgumentConfig{Type: bigIntType},
					"open":     &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: s.resolveUpdatePost,
			},
			"deletePost": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: s.resolveDeletePost,
			},
		},
	})
}

func stringArg(p graphql.ResolveParams, name string) string {
	v, _ := p.Args[name].(string)
	return v
}

func posArg(p graphql.ResolveParams, name string) *int64 {
	if v, ok := p.Args[name].(int64); ok {
		return &v
	}
	return nil
}

func requirePrincipal(p graphql.ResolveParams) (string, error) {
	principal := auth.PrincipalFrom(p.Context)
	if principal == nil {
		return "", common.ErrUnauthorized
	}
	return principal.ID, nil
}
