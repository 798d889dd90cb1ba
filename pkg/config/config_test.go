package config

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestValidateRejectsIncGreaterThanStart(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compress.MkSpellMem = "100,200,500"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected inc > start to be rejected")
	}
}

func TestValidateRejectsNonPositive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compress.MkSpellMem = "100,0,500"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected a non-positive field to be rejected")
	}
}

func TestParseSpellLang(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Langs.SpellLang = "en_us, fr, /abs/path/custom.spl, cjk"
	specs := cfg.ParseSpellLang()
	if len(specs) != 4 {
		t.Fatalf("expected 4 specs, got %d: %+v", len(specs), specs)
	}
	if specs[0].Name != "en" || specs[0].Region != "us" {
		t.Fatalf("expected en/us, got %+v", specs[0])
	}
	if specs[1].Name != "fr" || specs[1].Region != "" {
		t.Fatalf("expected bare fr, got %+v", specs[1])
	}
	if specs[2].Path != "/abs/path/custom.spl" {
		t.Fatalf("expected a path spec, got %+v", specs[2])
	}
	if !specs[3].CJK {
		t.Fatalf("expected a cjk spec, got %+v", specs[3])
	}
}

func TestParseSpellSuggest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Suggest.SpellSuggest = "best,fast,double,15,expr:MySuggest(),file:/tmp/sug.txt,bogus"
	toks := cfg.ParseSpellSuggest()
	if len(toks) != 6 {
		t.Fatalf("expected 6 recognized tokens (bogus skipped), got %d: %+v", len(toks), toks)
	}
	if !toks[0].Best || !toks[1].Fast || !toks[2].Double {
		t.Fatalf("expected best/fast/double flags set, got %+v", toks[:3])
	}
	if toks[3].Count != 15 {
		t.Fatalf("expected count 15, got %+v", toks[3])
	}
	if toks[4].Expr != "MySuggest()" {
		t.Fatalf("expected expr passthrough, got %+v", toks[4])
	}
	if toks[5].File != "/tmp/sug.txt" {
		t.Fatalf("expected file passthrough, got %+v", toks[5])
	}
}
