package enums

import "testing"

func TestParseBloodGroupNormalizesCase(t *testing.T) {
	cases := map[string]BloodGroup{
		"O+":    BloodGroupOPos,
		" ab- ": BloodGroupABNeg,
		"a+":    BloodGroupAPos,
	}
	for raw, want := range cases {
		got, err := ParseBloodGroup(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s got %s", raw, want, got)
		}
	}
	if _, err := ParseBloodGroup("C+"); err == nil {
		t.Fatal("expected error for unknown group")
	}
	if len(BloodGroups()) != 8 {
		t.Fatalf("expected eight canonical groups")
	}
}

func TestParseUrgencyDefaultsToNormal(t *testing.T) {
	got, err := ParseUrgency("")
	if err != nil || got != UrgencyNormal {
		t.Fatalf("expected normal default, got %q err=%v", got, err)
	}
	got, err = ParseUrgency("Critical")
	if err != nil || got != UrgencyCritical {
		t.Fatalf("expected critical, got %q err=%v", got, err)
	}
	if _, err := ParseUrgency("whenever"); err == nil {
		t.Fatal("expected invalid urgency error")
	}
}

func TestApprovalStatusTerminal(t *testing.T) {
	if ApprovalStatusPending.IsTerminal() {
		t.Fatal("pending must not be terminal")
	}
	if !ApprovalStatusApproved.IsTerminal() || !ApprovalStatusRejected.IsTerminal() {
		t.Fatal("approved and rejected are terminal")
	}
}

func TestParseAccountRole(t *testing.T) {
	if role, err := ParseAccountRole("ADMIN"); err != nil || role != AccountRoleAdmin {
		t.Fatalf("expected admin, got %q err=%v", role, err)
	}
	if _, err := ParseAccountRole("agent"); err == nil {
		t.Fatal("expected invalid role error")
	}
}
