package domain

import (
	"encoding/json"
	"testing"
)

func TestCandidateRecord_UnmarshalLooseTypes(t *testing.T) {
	raw := `{
		"_id": 42,
		"name": "Ravi",
		"designation": "Plumber",
		"avalablity_status": "true",
		"ratePerHour": "350.5",
		"mobile_number": 9876543210,
		"location": {"latitude": "12.98", "longitude": 77.6},
		"address": {"addressLine": "12 MG Road", "city": "Bengaluru", "pincode": 560001}
	}`

	var r CandidateRecord
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.ID != "42" {
		t.Errorf("expected id 42, got %q", r.ID)
	}
	if !r.Availability.Set || !r.Availability.Value {
		t.Errorf("expected availability true, got %+v", r.Availability)
	}
	if r.RatePerHour.Value != 350.5 {
		t.Errorf("expected rate 350.5, got %v", r.RatePerHour)
	}
	if r.MobileNumber != "9876543210" {
		t.Errorf("expected numeric phone as text, got %q", r.MobileNumber)
	}
	p, ok := r.Coordinates()
	if !ok || p != (GeoPoint{Lat: 12.98, Lng: 77.6}) {
		t.Errorf("unexpected coordinates %v %v", p, ok)
	}
	if got := r.Address.ToAddress().String(); got != "12 MG Road, Bengaluru, 560001" {
		t.Errorf("unexpected address %q", got)
	}
}

func TestCandidateRecord_MissingAndNullFields(t *testing.T) {
	raw := `{"name": null, "avalablity_status": null, "location": {"latitude": 12.9}, "address": {"city": {"nested": true}}}`

	var r CandidateRecord
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Name != "" {
		t.Errorf("expected empty name, got %q", r.Name)
	}
	if r.Availability.Set {
		t.Error("null availability must be unset")
	}
	if _, ok := r.Coordinates(); ok {
		t.Error("coordinates need both latitude and longitude")
	}
	if !r.Address.ToAddress().IsZero() {
		t.Errorf("object-valued city should be ignored, got %+v", r.Address.ToAddress())
	}
}

func TestFlag_Unmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Flag
	}{
		{`true`, FlagOf(true)},
		{`false`, FlagOf(false)},
		{`"false"`, FlagOf(false)},
		{`1`, FlagOf(true)},
		{`0`, FlagOf(false)},
		{`"maybe"`, Flag{}},
		{`null`, Flag{}},
	}
	for _, tt := range tests {
		var f Flag
		if err := json.Unmarshal([]byte(tt.in), &f); err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if f != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.in, f, tt.want)
		}
	}
}

func TestNumber_UnmarshalRejectsGarbage(t *testing.T) {
	var n Number
	if err := json.Unmarshal([]byte(`"abc"`), &n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Set {
		t.Errorf("non-numeric string must leave number unset, got %+v", n)
	}
}

func TestRecordAddress_NilToAddress(t *testing.T) {
	var a *RecordAddress
	if !a.ToAddress().IsZero() {
		t.Error("nil block should convert to an empty address")
	}
}

func TestCandidateRecord_JSONRoundTripKeepsPresence(t *testing.T) {
	in := CandidateRecord{
		ID:           "w1",
		Name:         "Ravi",
		Availability: FlagOf(false),
		Location:     &RecordLocation{Latitude: NumberOf(0), Longitude: NumberOf(77.6)},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out CandidateRecord
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Availability != FlagOf(false) {
		t.Errorf("availability lost: %+v", out.Availability)
	}
	if out.RatePerHour.Set {
		t.Error("absent rate must stay unset")
	}
	if p, ok := out.Coordinates(); !ok || p.Lat != 0 || p.Lng != 77.6 {
		t.Errorf("coordinates lost: %v %v", p, ok)
	}
}
