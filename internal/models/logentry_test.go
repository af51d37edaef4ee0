package models

import "testing"

func TestClassifyTag(t *testing.T) {
	tests := []struct {
		tag  string
		kind ActionKind
		ok   bool
	}{
		{"add_subject", KindCreate, true},
		{"add_event", KindCreate, true},
		{"update_settings", KindUpdate, true},
		{"update_fixed_timetable", KindUpdate, true},
		{"upsert_general_announcement", KindUpsert, true},
		{"delete_event", KindDelete, true},
		{"delete_subject", KindDelete, true},
		{"batch_update_fixed_timetable", KindBatchUpdate, true},
		{"reset_timetable_week", KindReset, true},

		// Engine-emitted tags are classified but never reversible.
		{"rollback_action", KindRollback, true},
		{"rollback_action_failed", KindRollback, true},

		// Open-ended effects.
		{"apply_template_future", KindIrreversible, true},
		{"reset_future_dates", KindIrreversible, true},

		// Outside the taxonomy.
		{"login", "", false},
		{"", "", false},
		{"added_subject", "", false},
		{"Add_subject", "", false}, // case-sensitive
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			kind, ok := ClassifyTag(tt.tag)
			if kind != tt.kind || ok != tt.ok {
				t.Errorf("ClassifyTag(%q) = (%q, %v), want (%q, %v)", tt.tag, kind, ok, tt.kind, tt.ok)
			}
		})
	}
}

func TestLogEntryTargetID(t *testing.T) {
	tests := []struct {
		name    string
		details Details
		want    string
	}{
		{"explicit", Details{TargetID: "s1", After: map[string]any{"id": "other"}}, "s1"},
		{"from before", Details{Before: map[string]any{"id": "s2"}}, "s2"},
		{"from after", Details{After: map[string]any{"id": "s3"}}, "s3"},
		{"before wins over after", Details{Before: map[string]any{"id": "b"}, After: map[string]any{"id": "a"}}, "b"},
		{"non-string id ignored", Details{Before: map[string]any{"id": 42}}, ""},
		{"missing", Details{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := LogEntry{Details: tt.details}
			if got := e.TargetID(); got != tt.want {
				t.Errorf("TargetID() = %q, want %q", got, tt.want)
			}
		})
	}
}
