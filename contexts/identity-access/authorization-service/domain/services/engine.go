package services

import (
	"fmt"

	"quarry/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "quarry/contexts/identity-access/authorization-service/domain/errors"
	"quarry/internal/shared/hrn"

	cedar "github.com/cedar-policy/cedar-go"
)

// Document is one policy document ready for evaluation, keyed by the id
// reported back in determining-policy lists.
type Document struct {
	ID      string
	Content string
}

// Verdict is the outcome of evaluating one policy set against one request.
// Determining lists the ids of the policies that fired.
type Verdict struct {
	Allowed     bool
	Determining []string
	ForbidFired bool
}

// CompilePolicySet parses every document into one policy set. Statements in
// a multi-statement document are registered as "<id>.<n>".
func CompilePolicySet(documents []Document) (*cedar.PolicySet, error) {
	set := cedar.NewPolicySet()
	for _, document := range documents {
		list, err := cedar.NewPolicyListFromBytes(document.ID, []byte(document.Content))
		if err != nil {
			return nil, fmt.Errorf("%w: policy %s: %v", domainerrors.ErrEvaluationFailed, document.ID, err)
		}
		for index, policy := range list {
			id := document.ID
			if len(list) > 1 {
				id = fmt.Sprintf("%s.%d", document.ID, index)
			}
			set.Add(cedar.PolicyID(id), policy)
		}
	}
	return set, nil
}

// BuildRequest converts an evaluation request to Cedar form. The action's
// namespace follows the resource's service, matching how the schema registry
// qualifies action declarations. A context value of an unsupported type is a
// request error, not something to drop silently.
func BuildRequest(request entities.EvaluationRequest) (cedar.Request, error) {
	record, err := contextRecord(request.Context)
	if err != nil {
		return cedar.Request{}, err
	}
	actionType := cedar.EntityType(hrn.PascalCase(request.Resource.Service) + "::Action")
	return cedar.Request{
		Principal: request.Principal.EntityUID(),
		Action:    cedar.NewEntityUID(actionType, cedar.String(request.Action)),
		Resource:  request.Resource.EntityUID(),
		Context:   record,
	}, nil
}

func contextRecord(values map[string]any) (cedar.Record, error) {
	if len(values) == 0 {
		return cedar.Record{}, nil
	}
	pairs := cedar.RecordMap{}
	for key, value := range values {
		switch typed := value.(type) {
		case string:
			pairs[cedar.String(key)] = cedar.String(typed)
		case bool:
			pairs[cedar.String(key)] = cedar.Boolean(typed)
		case int:
			pairs[cedar.String(key)] = cedar.Long(typed)
		case int64:
			pairs[cedar.String(key)] = cedar.Long(typed)
		case float64:
			// JSON numbers arrive as float64; whole values stay usable as longs.
			pairs[cedar.String(key)] = cedar.Long(int64(typed))
		default:
			return cedar.Record{}, fmt.Errorf("%w: key %q carries %T", domainerrors.ErrInvalidContext, key, value)
		}
	}
	return cedar.NewRecord(pairs), nil
}

// Evaluate runs the request against the set. ForbidFired distinguishes a
// deny caused by a matching forbid from a deny caused by nothing matching.
func Evaluate(set *cedar.PolicySet, request cedar.Request) Verdict {
	decision, diagnostic := set.IsAuthorized(cedar.EntityMap{}, request)

	determining := make([]string, 0, len(diagnostic.Reasons))
	for _, reason := range diagnostic.Reasons {
		determining = append(determining, string(reason.PolicyID))
	}

	allowed := decision == cedar.Allow
	return Verdict{
		Allowed:     allowed,
		Determining: determining,
		ForbidFired: !allowed && len(determining) > 0,
	}
}
