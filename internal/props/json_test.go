package props

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestBagJSONRoundTrip(t *testing.T) {
	// Names in sorted order, since decoding sorts them.
	b := NewBag().
		Set("active", BoolValue(true)).
		Set("count", IntValue(3)).
		Set("labels", StringMapValue(map[string]string{"team": "finance"})).
		Set("name", StringValue("Revenue")).
		Set("nested", MapValue(NewBag().Set("level", IntValue(2)).Set("tags", StringListValue([]string{"x"})))).
		Set("size", LongValue(1<<40)).
		Set("tags", StringListValue([]string{"a", "b"}))
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var got Bag
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal(%s) failed: %v", data, err)
	}
	if !got.Equal(b) {
		t.Errorf("round trip of %s = %v, want %v", data, &got, b)
	}
}

func TestBagUnmarshalJSONDatesBecomeStrings(t *testing.T) {
	ts := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	data, err := json.Marshal(NewBag().Set("created", DateValue(ts)))
	if err != nil {
		t.Fatal(err)
	}
	var got Bag
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	want := NewBag().Set("created", StringValue("2024-03-04T05:06:07Z"))
	if !got.Equal(want) {
		t.Errorf("Unmarshal(%s) = %v, want %v", data, &got, want)
	}
}

func TestBagUnmarshalJSONReplacesContent(t *testing.T) {
	b := NewBag().Set("old", StringValue("x"))
	if err := json.Unmarshal([]byte(`{"new": 1}`), b); err != nil {
		t.Fatal(err)
	}
	if !b.Equal(NewBag().Set("new", IntValue(1))) {
		t.Errorf("Unmarshal into non-empty bag = %v", b)
	}
}

func TestBagUnmarshalJSONErrors(t *testing.T) {
	for _, in := range []string{
		`{"ratio": 0.5}`,
		`{"missing": null}`,
		`{"mixed": ["a", 1]}`,
		`{"deep": {"ratio": 1.5}}`,
		`[1, 2]`,
	} {
		var b Bag
		if err := json.Unmarshal([]byte(in), &b); err == nil {
			t.Errorf("Unmarshal(%s) succeeded: %v", in, &b)
		}
	}
}

func TestIntValueOutsideInt32IsLong(t *testing.T) {
	big := math.MaxInt32 + 1
	v := IntValue(big)
	if v.Kind() != KindLong {
		t.Errorf("IntValue(%d).Kind() = %v, want %v", big, v.Kind(), KindLong)
	}
	if got := v.Interface(); got != int64(big) {
		t.Errorf("IntValue(%d).Interface() = %v (%T)", big, got, got)
	}
	if got := IntValue(math.MinInt32).Interface(); got != int32(math.MinInt32) {
		t.Errorf("IntValue(MinInt32).Interface() = %v (%T)", got, got)
	}
}

func TestValueOfDecodedJSON(t *testing.T) {
	var x map[string]any
	if err := json.Unmarshal([]byte(`{"n": 3, "big": 8589934592, "tags": ["a", "b"], "f": 2.5, "mixed": ["a", true]}`), &x); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		key    string
		want   Value
		wantOK bool
	}{
		{"n", IntValue(3), true},
		{"big", LongValue(1 << 33), true},
		{"tags", StringListValue([]string{"a", "b"}), true},
		{"f", Value{}, false},
		{"mixed", Value{}, false},
	}
	for _, tc := range tests {
		got, ok := ValueOf(x[tc.key])
		if ok != tc.wantOK || (ok && !got.Equal(tc.want)) {
			t.Errorf("ValueOf(%v) = %v, %v, want %v, %v", x[tc.key], got, ok, tc.want, tc.wantOK)
		}
	}
}
