package core

import "testing"

func TestResponseID(t *testing.T) {
	tests := []struct {
		pos         Position
		interaction int
		want        string
	}{
		{Position{0, 0}, 0, "0_0_0"},
		{Position{2, 5}, 1, "2_5_1"},
		{Position{10, 0}, 3, "10_0_3"},
	}

	for _, tt := range tests {
		if got := ResponseID(tt.pos, tt.interaction); got != tt.want {
			t.Errorf("ResponseID(%v, %d) = %q, want %q", tt.pos, tt.interaction, got, tt.want)
		}
	}
}

func TestNewResponseSubmitted(t *testing.T) {
	tests := []struct {
		name  string
		state InteractionState
		want  bool
	}{
		{"correct and filled", InteractionState{IsCorrect: true, Value: "42"}, true},
		{"correct but empty", InteractionState{IsCorrect: true, IsEmpty: true}, false},
		{"incorrect", InteractionState{Value: "41"}, false},
		{"untouched", EmptyState(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResponse(Position{}, 0, tt.state)
			if r.IsSubmitted != tt.want {
				t.Errorf("IsSubmitted = %v, want %v", r.IsSubmitted, tt.want)
			}
			if r.ID != "0_0_0" {
				t.Errorf("ID = %q, want 0_0_0", r.ID)
			}
		})
	}
}

func TestStateRecordRoundTrip(t *testing.T) {
	st := InteractionState{IsCorrect: true, Value: "7", Value3: "x"}
	got := StateFromRecord(st.Record())
	if got != st {
		t.Errorf("StateFromRecord(Record()) = %+v, want %+v", got, st)
	}

	if _, ok := st.Record()["value2"]; ok {
		t.Error("blank value2 should be omitted from the record")
	}

	if StateFromRecord(nil) != EmptyState() {
		t.Error("nil record should rebuild the empty state")
	}
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same string", "a", "a", true},
		{"different string", "a", "b", false},
		{"bool", true, true, true},
		{"int vs float", 1, 1.0, true},
		{"int vs fraction", 7, 7.5, false},
		{"uint vs int", uint8(3), int64(3), true},
		{"number vs string", 1, "1", false},
		{"both nil", nil, nil, true},
		{"one nil", nil, 0, false},
		{"slices never equal", []int{1}, []int{1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValuesEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("ValuesEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestInputFrame(t *testing.T) {
	f := NewInputFrame()
	if !f.Empty() {
		t.Error("new frame should be empty")
	}

	f.Set(ActionConfirm)
	f.Type('4', '2')
	if !f.Has(ActionConfirm) {
		t.Error("frame should have Confirm")
	}
	if string(f.Text) != "42" {
		t.Errorf("Text = %q, want 42", string(f.Text))
	}

	f.Clear()
	if !f.Empty() {
		t.Error("cleared frame should be empty")
	}
	if ActionBack.String() != "Back" {
		t.Errorf("ActionBack.String() = %q", ActionBack.String())
	}
}
