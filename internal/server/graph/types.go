package graph

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/vevey/vevey/internal/server/models"
	"github.com/vevey/vevey/internal/server/sessions"
)

// Wire DTOs. The default field resolver matches GraphQL fields against
// json tags, so the persistence structs are mapped here instead of being
// exposed directly.

type tokenDTO struct {
	AccessToken  string `json:"accessToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	RefreshToken string `json:"refreshToken"`
}

type meDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type noteDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Contents  string    `json:"contents"`
	Pos       int64     `json:"pos"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type postDTO struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Contents  string    `json:"contents"`
	Pos       int64     `json:"pos"`
	Open      bool      `json:"open"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type paginationDTO struct {
	Items interface{} `json:"items"`
}

type mutationResponse struct {
	Result bool `json:"result"`
}

var responseOK = mutationResponse{Result: true}

func toTokenDTO(g *sessions.Grant) *tokenDTO {
	return &tokenDTO{
		AccessToken:  g.AccessToken,
		ExpiresIn:    g.ExpiresIn,
		RefreshToken: g.RefreshToken,
	}
}

func toMeDTO(u *models.User) *meDTO {
	return &meDTO{ID: u.ID, Email: u.Email, Name: u.Name}
}

func toNoteDTO(n *models.Note) *noteDTO {
	if n == nil {
		return nil
	}
	return &noteDTO{
		ID:        n.ID,
		UserID:    n.UserID,
		Contents:  n.Contents,
		Pos:       n.Pos,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toNoteDTOs(notes []*models.Note) []*noteDTO {
	out := make([]*noteDTO, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteDTO(n))
	}
	return out
}

func toPostDTO(p *models.Post) *postDTO {
	if p == nil {
		return nil
	}
	return &postDTO{
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		Contents:  p.Contents,
		Pos:       p.Pos,
		Open:      p.Open(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toPostDTOs(posts []*models.Post) []*postDTO {
	out := make([]*postDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostDTO(p))
	}
	return out
}

var tokenType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Token",
	Fields: graphql.Fields{
		"accessToken":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"expiresIn":    &graphql.Field{Type: graphql.NewNonNull(bigIntType)},
		"refreshToken": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var meType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Me",
	Fields: graphql.Fields{
		"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"email": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var noteType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Note",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"userId":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"contents":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"pos":       &graphql.Field{Type: graphql.NewNonNull(bigIntType)},
		"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
	},
})

var postType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Post",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"authorId":  &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"contents":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"pos":       &graphql.Field{Type: graphql.NewNonNull(bigIntType)},
		"open":      &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
	},
})

var notePaginationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "NotePagination",
	Fields: graphql.Fields{
		"items": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(noteType)))},
	},
})

var postPaginationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PostPagination",
	Fields: graphql.Fields{
		"items": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(postType)))},
	},
})

var mutationResponseType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MutationResponse",
	Fields: graphql.Fields{
		"result": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
	},
})

const (
	grantTypeCredential   = "credential"
	grantTypeRefreshToken = "refreshToken"
)

var grantTypeEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "GrantType",
	Values: graphql.EnumValueConfigMap{
		grantTypeCredential:   &graphql.EnumValueConfig{Value: grantTypeCredential},
		grantTypeRefreshToken: &graphql.EnumValueConfig{Value: grantTypeRefreshToken},
	},
})
