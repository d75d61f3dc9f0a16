package access

import "testing"

func TestRoleRoundTrip(t *testing.T) {
	for _, r := range []Role{NoRole, Member, Admin, Owner} {
		if got := ParseRole(r.String()); got != r {
			t.Errorf("ParseRole(%q) => %d, want %d", r.String(), got, r)
		}
	}
}

func TestParseInvalidRole(t *testing.T) {
	if got := ParseRole("superuser"); got >= 0 {
		t.Errorf("ParseRole(superuser) => %d, want negative", got)
	}
}

func TestRoleOrdering(t *testing.T) {
	if !(NoRole < Member && Member < Admin && Admin < Owner) {
		t.Error("role ordering must be none < member < admin < owner")
	}
}

func TestUnmarshalText(t *testing.T) {
	var r Role
	if err := r.UnmarshalText([]byte("admin")); err != nil {
		t.Fatal(err)
	}
	if r != Admin {
		t.Errorf("UnmarshalText(admin) => %d, want %d", r, Admin)
	}
	if err := r.UnmarshalText([]byte("root")); err == nil {
		t.Error("UnmarshalText(root) => nil error, want ErrInvalidRole")
	}
}
