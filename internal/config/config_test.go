package config

import "testing"

func TestParseCollectionRules(t *testing.T) {
	rules := parseCollectionRules("homework=homework, exam=exams ,bad,=x,y=")
	if len(rules) != 2 {
		t.Fatalf("len = %d, want 2 (malformed pairs dropped)", len(rules))
	}
	if rules[0].Keyword != "homework" || rules[0].Path != "homework" {
		t.Errorf("rules[0] = %+v", rules[0])
	}
	if rules[1].Keyword != "exam" || rules[1].Path != "exams" {
		t.Errorf("rules[1] = %+v", rules[1])
	}

	if parseCollectionRules("") != nil {
		t.Error("empty env should produce no rules")
	}
}

func TestCollectionTableAppliesEnvRules(t *testing.T) {
	cfg := &Config{CollectionRules: parseCollectionRules("subject=custom_subjects")}

	path, err := cfg.CollectionTable().Resolve("add_subject")
	if err != nil {
		t.Fatal(err)
	}
	if path != "custom_subjects" {
		t.Errorf("env rule should win over default, got %q", path)
	}
}
