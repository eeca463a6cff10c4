package profile

import "testing"

func TestSmoothConstantSeriesIsFixedPoint(t *testing.T) {
	data := make([]float64, 200)
	for i := range data {
		data[i] = 4.25
	}

	for _, hw := range []int{1, 5, 50} {
		out := Smooth(data, hw)
		if len(out) != len(data) {
			t.Fatalf("halfWindow %d: length %d, want %d", hw, len(out), len(data))
		}
		for i, v := range out {
			if v != 4.25 {
				t.Fatalf("halfWindow %d: out[%d] = %v, want 4.25", hw, i, v)
			}
		}
	}
}

func TestSmoothDegenerateWindow(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	out := Smooth(data, 10)
	for i, v := range out {
		if v != 2.5 {
			t.Errorf("out[%d] = %v, want series mean 2.5", i, v)
		}
	}
}

func TestSmoothInteriorPoint(t *testing.T) {
	data := []float64{0, 0, 0, 10, 0, 0, 0, 0, 0, 0}

	// Interior windows span [i-hw, i+hw), so with hw=2 the spike at index 3
	// contributes through output 5 but not output 6.
	out := Smooth(data, 2)
	if got := out[4]; got != 2.5 {
		t.Errorf("out[4] = %v, want 2.5", got)
	}
	if got := out[6]; got != 0 {
		t.Errorf("out[6] = %v, want 0", got)
	}
}

func TestSmoothEmpty(t *testing.T) {
	if out := Smooth(nil, 5); out != nil {
		t.Errorf("Smooth(nil) = %v, want nil", out)
	}
}

func TestSmoothPreservesInput(t *testing.T) {
	data := []float64{5, 1, 9, 2, 7, 3, 8, 4}
	orig := append([]float64(nil), data...)
	Smooth(data, 1)
	for i := range data {
		if data[i] != orig[i] {
			t.Fatalf("input mutated at %d: %v != %v", i, data[i], orig[i])
		}
	}
}
