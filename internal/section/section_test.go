package section

import "testing"

func TestParse_Valid(t *testing.T) {
	for _, code := range []string{"PU", "PPU", "PBM", "PK", "LBI", "LBE", "PM"} {
		s, err := Parse(code)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", code, err)
		}
		if string(s) != code {
			t.Errorf("Parse(%q) = %q", code, s)
		}
	}
}

func TestParse_Unknown(t *testing.T) {
	if _, err := Parse("XX"); err == nil {
		t.Error("expected error for unknown code")
	}
	if _, err := Parse(""); err == nil {
		t.Error("expected error for empty code")
	}
}

func TestCategory(t *testing.T) {
	tps := []Section{PU, PPU, PBM, PK}
	for _, s := range tps {
		if s.Category() != CategoryTPS {
			t.Errorf("%s.Category() = %s, want TPS", s, s.Category())
		}
	}
	literasi := []Section{LBI, LBE, PM}
	for _, s := range literasi {
		if s.Category() != CategoryLiterasi {
			t.Errorf("%s.Category() = %s, want Literasi", s, s.Category())
		}
	}
}

func TestName_Known(t *testing.T) {
	if PK.Name() != "Pengetahuan Kuantitatif" {
		t.Errorf("PK.Name() = %q", PK.Name())
	}
}

func TestName_UnknownFallsBackToCode(t *testing.T) {
	if Section("ZZ").Name() != "ZZ" {
		t.Errorf("unknown section name = %q, want code itself", Section("ZZ").Name())
	}
}
