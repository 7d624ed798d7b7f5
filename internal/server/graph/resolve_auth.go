package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/vevey/vevey/internal/common"
)

func (s *Schema) resolveGetMe(p graphql.ResolveParams) (interface{}, error) {
	principalID, err := requirePrincipal(p)
	if err != nil {
		return nil, wrapErr(err)
	}
	user, err := s.svc.Users.Get(p.Context, principalID)
	if err != nil {
		return nil, wrapErr(err)
	}
	return toMeDTO(user), nil
}

func (s *Schema) resolveCreateToken(p graphql.ResolveParams) (interface{}, error) {
	switch p.Args["grantType"] {
	case grantTypeCredential:
		email := stringArg(p, "email")
		pwd := stringArg(p, "pwd")
		if email == "" || pwd == "" {
			return nil, wrapErr(common.E(common.KindMissingParameter, "email and pwd are required"))
		}
		grant, err := s.svc.Users.Login(p.Context, email, pwd)
		if err != nil {
			return nil, wrapErr(err)
		}
		return toTokenDTO(grant), nil

	case grantTypeRefreshToken:
		refreshToken := stringArg(p, "refreshToken")
		if refreshToken == "" {
			return nil, wrapErr(common.E(common.KindMissingParameter, "refreshToken is required"))
		}
		grant, err := s.svc.Sessions.Exchange(p.Context, refreshToken)
		if err != nil {
			return nil, wrapErr(err)
		}
		return toTokenDTO(grant), nil

	default:
		return nil, wrapErr(common.E(common.KindInvalidInput, "unknown grant type"))
	}
}

func (s *Schema) resolveRevokeToken(p graphql.ResolveParams) (interface{}, error) {
	principalID, err := requirePrincipal(p)
	if err != nil {
		return nil, wrapErr(err)
	}
	if err := s.svc.Sessions.Revoke(p.Context, principalID, stringArg(p, "refreshToken")); err != nil {
		return nil, wrapErr(err)
	}
	return responseOK, nil
}

// resolveInviteMe suppresses UserExists so the endpoint does not reveal
// which addresses already have accounts.
func (s *Schema) resolveInviteMe(p graphql.ResolveParams) (interface{}, error) {
	err := s.svc.Users.Invite(p.Context, stringArg(p, "email"))
	if err != nil && !common.IsKind(err, common.KindUserExists) {
		return nil, wrapErr(err)
	}
	return responseOK, nil
}

func (s *Schema) resolveConfirmSignUp(p graphql.ResolveParams) (interface{}, error) {
	err := s.svc.Users.ConfirmSignUp(p.Context,
		stringArg(p, "email"), stringArg(p, "name"), stringArg(p, "code"), stringArg(p, "newPwd"))
	if err != nil {
		return nil, wrapErr(err)
	}
	return responseOK, nil
}

func (s *Schema) resolveChangePassword(p graphql.ResolveParams) (interface{}, error) {
	principalID, err := requirePrincipal(p)
	if err != nil {
		return nil, wrapErr(err)
	}
	if err := s.svc.Users.ChangePassword(p.Context, principalID, stringArg(p, "oldPwd"), stringArg(p, "newPwd")); err != nil {
		return nil, wrapErr(err)
	}
	return responseOK, nil
}

func (s *Schema) resolveForgotPassword(p graphql.ResolveParams) (interface{}, error) {
	if err := s.svc.Users.ForgotPassword(p.Context, stringArg(p, "email")); err != nil {
		return nil, wrapErr(err)
	}
	return responseOK, nil
}

func (s *Schema) resolveConfirmForgotPassword(p graphql.ResolveParams) (interface{}, error) {
	err := s.svc.Users.ConfirmForgotPassword(p.Context,
		stringArg(p, "userId"), stringArg(p, "code"), stringArg(p, "newPwd"))
	if err != nil {
		return nil, wrapErr(err)
	}
	return responseOK, nil
}

func (s *Schema) resolveUnregister(p graphql.ResolveParams) (interface{}, error) {
	principalID, err := requirePrincipal(p)
	if err != nil {
		return nil, wrapErr(err)
	}
	if err := s.svc.Users.Unregister(p.Context, principalID, stringArg(p, "pwd")); err != nil {
		return nil, wrapErr(err)
	}
	return responseOK, nil
}
