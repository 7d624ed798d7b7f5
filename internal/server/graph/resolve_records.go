package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/vevey/vevey/internal/server/auth"
	"github.com/vevey/vevey/internal/server/records"
)

func (s *Schema) resolveUserNotes(p graphql.ResolveParams) (interface{}, error) {
	principal := auth.PrincipalFrom(p.Context)
	limit, _ := p.Args["limit"].(int)

	notes, err := s.svc.Notes.ListByUser(p.Context, principal, stringArg(p, "userId"), posArg(p, "pos"), limit)
	if err != nil {
		return nil, wrapErr(err)
	}
	return paginationDTO{Items: toNoteDTOs(notes)}, nil
}

func (s *Schema) resolveNote(p graphql.ResolveParams) (interface{}, error) {
	principal := auth.PrincipalFrom(p.Context)
	id := stringArg(p, "id")

	cache := cacheFrom(p.Context)
	if note, ok := cache.note(id); ok {
		return toNoteDTO(note), nil
	}

	note, err := s.svc.Notes.Get(p.Context, principal, id)
	if err != nil {
		return nil, wrapErr(err)
	}
	cache.putNote(id, note)
	return toNoteDTO(note), nil
}

func (s *Schema) resolveCreateNote(p graphql.ResolveParams) (interface{}, error) {
	principal := auth.PrincipalFrom(p.Context)

	note, err := s.svc.Notes.Create(p.Context, principal, stringArg(p, "contents"))
	if err != nil {
		return nil, wrapErr(err)
	}
	return toNoteDTO(note), nil
}

func (s *Schema) resolveUpdateNote(p graphql.ResolveParams) (interface{}, error) {
	principal := auth.PrincipalFrom(p.Context)
	patch := records.NotePatch{
		Contents: optStringArg(p, "contents"),
		Pos:      posArg(p, "pos"),
	}

	note, err := s.svc.Notes.Update(p.Context, principal, stringArg(p, "id"), patch)
	if err != nil {
		return nil, wrapErr(err)
	}
	return toNoteDTO(note), nil
}

func (s *Schema) resolveDeleteNote(p graphql.ResolveParams) (interface{}, error) {
	principal := auth.PrincipalFrom(p.Context)

	if err := s.svc.Notes.Delete(p.Context, principal, stringArg(p, "id")); err != nil {
		return nil, wrapErr(err)
	}
	return true, nil
}

func (s *Schema) resolvePosts(p graphql.ResolveParams) (interface{}, error) {
	principal := auth.PrincipalFrom(p.Context)
	limit, _ := p.Args["limit"].(int)

	posts, err := s.svc.Posts.ListByAuthor(p.Context, principal, stringArg(p, "authorId"), posArg(p, "pos"), limit)
	if err != nil {
		return nil, wrapErr(err)
	}
	return paginationDTO{Items: toPostDTOs(posts)}, nil
}

func (s *Schema) resolveOpenPosts(p graphql.ResolveParams) (interface{}, error) {
	limit, _ := p.Args["limit"].(int)

	posts, err := s.svc.Posts.ListOpen(p.Context, posArg(p, "pos"), limit)
	if err != nil {
		return nil, wrapErr(err)
	}
	return paginationDTO{Items: toPostDTOs(posts)}, nil
}

func (s *Schema) resolvePost(p graphql.ResolveParams) (interface{}, error) {
	principal := auth.PrincipalFrom(p.Context)
	id := stringArg(p, "id")

	cache := cacheFrom(p.Context)
	if post, ok := cache.post(id); ok {
		return toPostDTO(post), nil
	}

	post, err := s.svc.Posts.Get(p.Context, principal, id)
	if err != nil {
		return nil, wrapErr(err)
	}
	cache.putPost(id, post)
	return toPostDTO(post), nil
}

func (s *Schema) resolveCreatePost(p graphql.ResolveParams) (interface{}, error) {
	principal := auth.PrincipalFrom(p.Context)
	open, _ := p.Args["open"].(bool)

	post, err := s.svc.Posts.Create(p.Context, principal, stringArg(p, "contents"), open)
	if err != nil {
		return nil, wrapErr(err)
	}
	return toPostDTO(post), nil
}

func (s *Schema) resolveUpdatePost(p graphql.ResolveParams) (interface{}, error) {
	principal := auth.PrincipalFrom(p.Context)
	patch := records.PostPatch{
		Contents: optStringArg(p, "contents"),
		Pos:      posArg(p, "pos"),
		Open:     optBoolArg(p, "open"),
	}

	post, err := s.svc.Posts.Update(p.Context, principal, stringArg(p, "id"), patch)
	if err != nil {
		return nil, wrapErr(err)
	}
	return toPostDTO(post), nil
}

func (s *Schema) resolveDeletePost(p graphql.ResolveParams) (interface{}, error) {
	principal := auth.PrincipalFrom(p.Context)

	if err := s.svc.Posts.Delete(p.Context, principal, stringArg(p, "id")); err != nil {
		return nil, wrapErr(err)
	}
	return true, nil
}

func optStringArg(p graphql.ResolveParams, name string) *string {
	if v, ok := p.Args[name].(string); ok {
		return &v
	}
	return nil
}

func optBoolArg(p graphql.ResolveParams, name string) *bool {
	if v, ok := p.Args[name].(bool); ok {
		return &v
	}
	return nil
}
