package models

import "testing"

func TestPasswordSetAndMatches(t *testing.T) {
	var p Password
	if err := p.Set("correct horse battery staple"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if p.Hash == "" || p.Hash == "correct horse battery staple" {
		t.Fatal("expected a bcrypt hash, got something else")
	}

	match, err := p.Matches("correct horse battery staple")
	if err != nil {
		t.Fatalf("Matches failed: %v", err)
	}
	if !match {
		t.Error("correct password did not match")
	}

	match, err = p.Matches("wrong password")
	if err != nil {
		t.Fatalf("Matches failed: %v", err)
	}
	if match {
		t.Error("wrong password matched")
	}
}

func TestUserIsAdmin(t *testing.T) {
	u := User{Role: RoleAdmin}
	if !u.IsAdmin() {
		t.Error("admin role not recognised")
	}
	u.Role = RoleCustomer
	if u.IsAdmin() {
		t.Error("customer treated as admin")
	}
}
