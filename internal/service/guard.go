package service

import (
	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/model"
)

// Access guard: the two authorization predicates consulted before every
// snippet read and mutation. Stateless — the decision depends only on who is
// asking, who owns the resource, and its visibility.
//
// The rules:
//   - public snippets are readable by anyone, including anonymous callers
//   - private snippets are readable only by their owner; for anyone else the
//     snippet does not exist (NotFound, never Forbidden — a 403 would confirm
//     there is something worth hiding)
//   - mutations require an authenticated caller who owns the snippet

// canView returns nil if callerID may read the snippet.
func canView(callerID string, s *model.Snippet) error {
	if s.IsPublic() {
		return nil
	}
	if callerID != "" && callerID == s.OwnerID {
		return nil
	}
	return apperror.NotFound("snippet", s.ID)
}

// requireOwner returns nil if callerID may mutate the snippet.
// No caller at all is Unauthorized; the wrong caller is Forbidden.
func requireOwner(callerID string, s *model.Snippet) error {
	if callerID == "" {
		return apperror.Unauthorized("authentication required")
	}
	if callerID != s.OwnerID {
		return apperror.Forbidden("only the owner may modify this snippet")
	}
	return nil
}
