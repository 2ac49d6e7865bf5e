// Package authorization is the decision engine. It answers "may this
// principal perform this action on this resource" by combining two policy
// layers: organization control policies resolved for the involved accounts,
// which can only forbid, and the principal's own attached policies, which
// grant. A matching organization forbid is terminal; a principal with no
// attached policies is denied by default.
package authorization
