package hrn

import "testing"

func TestParseRoundTrip(t *testing.T) {
	raw := "hrn:quarry:iam::default:User/alice"
	parsed, ok := Parse(raw)
	if !ok {
		t.Fatalf("expected %q to parse", raw)
	}
	if parsed.Service != "iam" || parsed.AccountID != "default" {
		t.Fatalf("unexpected segments: %+v", parsed)
	}
	if parsed.ResourceType != "User" || parsed.ResourceID != "alice" {
		t.Fatalf("unexpected resource tail: %+v", parsed)
	}
	if parsed.String() != raw {
		t.Fatalf("round trip mismatch: %q", parsed.String())
	}
}

func TestParseNormalizesService(t *testing.T) {
	parsed, ok := Parse("hrn:quarry:IAM::default:User/alice")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if parsed.Service != "iam" {
		t.Fatalf("expected lowercase service, got %q", parsed.Service)
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"hrn:quarry:iam::default:User",
		"hrn:quarry:iam::default:/alice",
		"arn:quarry:iam::default:User/alice",
		"hrn:quarry:iam:default:User/alice",
	}
	for _, raw := range cases {
		if _, ok := Parse(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestEntityTypeName(t *testing.T) {
	h := New("quarry", "organizations", "default", "OrganizationalUnit", "ou-1")
	if got := h.EntityTypeName(); got != "Organizations::OrganizationalUnit" {
		t.Fatalf("unexpected entity type name: %q", got)
	}

	namespaced := New("quarry", "iam", "default", "Iam::User", "alice")
	if got := namespaced.EntityTypeName(); got != "Iam::User" {
		t.Fatalf("expected pre-namespaced type to pass through, got %q", got)
	}
}

func TestPascalCase(t *testing.T) {
	if got := PascalCase("my-service"); got != "MyService" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := PascalCase("supply_chain"); got != "SupplyChain" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestEntityUID(t *testing.T) {
	h := New("quarry", "iam", "default", "User", "alice")
	uid := h.EntityUID()
	if string(uid.Type) != "Iam::User" || string(uid.ID) != "alice" {
		t.Fatalf("unexpected uid: %v", uid)
	}
}
