package models

import (
	"encoding/json"
	"math"
	"testing"
)

func TestFloatEncodesNonFiniteValues(t *testing.T) {
	t.Parallel()
	values := Floats([]float64{0.5, math.Inf(1), math.Inf(-1), math.NaN(), 1e-300})
	data, err := json.Marshal(values)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `[0.5,"+Inf","-Inf","NaN",1e-300]`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}

	var back []Float
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back[0] != 0.5 || !math.IsInf(float64(back[1]), 1) || !math.IsInf(float64(back[2]), -1) || !math.IsNaN(float64(back[3])) {
		t.Errorf("decoded %v", back)
	}
}

func TestFloatRejectsUnknownString(t *testing.T) {
	t.Parallel()
	var f Float
	if err := json.Unmarshal([]byte(`"lots"`), &f); err == nil {
		t.Fatal("expected an error")
	}
}

func TestCellOmitsAbsoluteWhenRelative(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(Cell{Method: "up", Order: 3, Value: 1, Reference: 1, Error: 0})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"method":"up","order":3,"value":1,"reference":1,"error":0}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}
