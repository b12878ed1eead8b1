package cli

import (
	"testing"
)

func Test_Verify_ReportsOK_When_IndexConsistent(t *testing.T) {
	t.Parallel()

	r := seedVault(t)

	stdout := r.MustRun("verify")

	if stdout != "ok: 5 tasks verified" {
		t.Fatalf("verify output = %q, want %q", stdout, "ok: 5 tasks verified")
	}
}

func Test_Verify_ReportsOK_When_IndexEmpty(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stdout := r.MustRun("verify")

	if stdout != "ok: 0 tasks verified" {
		t.Fatalf("verify output = %q, want %q", stdout, "ok: 0 tasks verified")
	}
}
