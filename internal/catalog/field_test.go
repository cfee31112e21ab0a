package catalog

import (
	"encoding/json"
	"testing"
)

func TestField_MarshalKnown(t *testing.T) {
	data, err := json.Marshal(Known("certified"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"certified"` {
		t.Errorf("got %s", data)
	}
}

func TestField_MarshalUnknown(t *testing.T) {
	cases := []struct {
		name string
		v    any
	}{
		{"string", Unknown[string]()},
		{"number", Unknown[float64]()},
		{"bool", Unknown[bool]()},
		{"list", Unknown[[]string]()},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.v)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if string(data) != `"unknown"` {
			t.Errorf("%s: got %s, want \"unknown\"", tc.name, data)
		}
	}
}

func TestField_MarshalKnownList(t *testing.T) {
	data, err := json.Marshal(Known([]string{"a", "b"}))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["a","b"]` {
		t.Errorf("got %s", data)
	}
}

func TestField_UnmarshalRoundTrip(t *testing.T) {
	var f Field[float64]
	if err := json.Unmarshal([]byte(`12.5`), &f); err != nil {
		t.Fatal(err)
	}
	if v, ok := f.Value(); !ok || v != 12.5 {
		t.Errorf("got (%v, %v)", v, ok)
	}

	if err := json.Unmarshal([]byte(`"unknown"`), &f); err != nil {
		t.Fatal(err)
	}
	if f.IsKnown() {
		t.Error("expected unknown after unmarshalling the sentinel")
	}
}

func TestField_StructMarshal(t *testing.T) {
	table := Table{
		Name:     Known("metrics"),
		RowCount: Known(1200.0),
	}
	data, err := json.Marshal(table)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"table_name":"metrics","table_type":"unknown","row_count":1200,"popularity":"unknown"}`
	if string(data) != want {
		t.Errorf("got %s\nwant %s", data, want)
	}
}
