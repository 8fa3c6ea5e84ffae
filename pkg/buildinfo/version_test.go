package buildinfo

import "testing"

func TestString(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	if got := String(); got != "dev (none, unknown)" {
		t.Errorf("String() = %q for an unstamped build", got)
	}

	Version, Commit, Date = "v0.3.0", "abc1234", "2026-01-02"
	if got := String(); got != "v0.3.0 (abc1234, 2026-01-02)" {
		t.Errorf("String() = %q", got)
	}
	if got := Template(); got != "{{.Name}} v0.3.0 (abc1234, 2026-01-02)\n" {
		t.Errorf("Template() = %q", got)
	}
}
