package designgen

import (
	"encoding/json"
	"testing"
)

func TestState_Variants(t *testing.T) {
	ref := ImageRef("data:image/png;base64,AA==")

	tests := []struct {
		name        string
		state       State
		wantPhase   Phase
		wantLoading bool
		wantImage   ImageRef
		wantErr     string
	}{
		{"idle", Idle(), PhaseIdle, false, "", ""},
		{"generating", Generating(), PhaseGenerating, true, "", ""},
		{"succeeded", Succeeded(ref), PhaseSucceeded, false, ref, ""},
		{"failed", Failed("boom"), PhaseFailed, false, "", "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.state.Phase() != tt.wantPhase {
				t.Errorf("Phase() = %v, want %v", tt.state.Phase(), tt.wantPhase)
			}
			if tt.state.IsLoading() != tt.wantLoading {
				t.Errorf("IsLoading() = %v", tt.state.IsLoading())
			}
			if tt.state.ImageRef() != tt.wantImage {
				t.Errorf("ImageRef() = %q", tt.state.ImageRef())
			}
			if tt.state.ErrorMessage() != tt.wantErr {
				t.Errorf("ErrorMessage() = %q", tt.state.ErrorMessage())
			}
		})
	}

	if (State{}) != Idle() {
		t.Error("zero State should be Idle")
	}
}

func TestPhase_Text(t *testing.T) {
	for _, p := range []Phase{PhaseIdle, PhaseGenerating, PhaseSucceeded, PhaseFailed} {
		text, err := p.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error: %v", p, err)
		}
		var got Phase
		if err := got.UnmarshalText(text); err != nil || got != p {
			t.Errorf("UnmarshalText(%q) = %v, %v", text, got, err)
		}
	}

	var p Phase
	if err := p.UnmarshalText([]byte("loading")); err == nil {
		t.Error("expected error for unknown phase")
	}
	if Phase(9).String() != "Phase(9)" {
		t.Errorf("unexpected String for unknown phase: %s", Phase(9))
	}
}

func TestView_Predicates(t *testing.T) {
	ref := ImageRef("data:image/png;base64,AA==")

	tests := []struct {
		name            string
		view            View
		wantGenerate    bool
		wantExport      bool
		wantPlaceholder bool
		wantShowImage   bool
	}{
		{"idle", View{Prompt: "cat"}, true, false, true, false},
		{"idle empty prompt", View{}, false, false, true, false},
		{"loading", View{Prompt: "cat", IsLoading: true}, false, false, false, false},
		{"succeeded", View{Prompt: "cat", ImageRef: ref}, true, true, false, true},
		{"failed", View{Prompt: "cat", ErrorMessage: "boom"}, true, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.view.CanGenerate(); got != tt.wantGenerate {
				t.Errorf("CanGenerate() = %v", got)
			}
			if got := tt.view.CanExport(); got != tt.wantExport {
				t.Errorf("CanExport() = %v", got)
			}
			if got := tt.view.Display().ShowPlaceholder(); got != tt.wantPlaceholder {
				t.Errorf("ShowPlaceholder() = %v", got)
			}
			if got := tt.view.Display().ShowImage(); got != tt.wantShowImage {
				t.Errorf("ShowImage() = %v", got)
			}
		})
	}
}

func TestView_JSON(t *testing.T) {
	view := View{GenerationID: "g1", Phase: PhaseFailed, Prompt: "cat", ErrorMessage: "boom"}

	data, err := json.Marshal(view)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"generation_id":"g1","phase":"failed","prompt":"cat","is_loading":false,"error_message":"boom"}`
	if string(data) != want {
		t.Errorf("json = %s\nwant  %s", data, want)
	}
}
