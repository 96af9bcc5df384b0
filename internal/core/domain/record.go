package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// CandidateRecord is the loosely-structured shape returned by candidate sources.
// Every field is optional; scalar fields tolerate both JSON strings and numbers.
type CandidateRecord struct {
	ID               Text            `json:"_id"`
	Name             Text            `json:"name"`
	Designation      Text            `json:"designation"`
	Availability     Flag            `json:"avalablity_status"`
	Location         *RecordLocation `json:"location"`
	Address          *RecordAddress  `json:"address"`
	WorkplaceAddress *RecordAddress  `json:"workplaceAddress"`
	BusinessAddress  *RecordAddress  `json:"buisnessAddress"`
	BusinessName     Text            `json:"buisnessName"`
	RatePerHour      Number          `json:"ratePerHour"`
	MobileNumber     Text            `json:"mobile_number"`
	Email            Text            `json:"email"`
	Experience       Number          `json:"experience"`
	ProfileImage     Text            `json:"profileImage"`
	OverallRating    Number          `json:"overall_rating"`
}

// RecordLocation holds stored coordinates, when the upstream has them.
type RecordLocation struct {
	Latitude  Number `json:"latitude"`
	Longitude Number `json:"longitude"`
}

// RecordAddress is the upstream postal address block.
type RecordAddress struct {
	AddressLine Text `json:"addressLine"`
	City        Text `json:"city"`
	State       Text `json:"state"`
	Pincode     Text `json:"pincode"`
}

// Coordinates returns the stored point if both latitude and longitude are present.
func (r *CandidateRecord) Coordinates() (GeoPoint, bool) {
	if r.Location == nil || !r.Location.Latitude.Set || !r.Location.Longitude.Set {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: r.Location.Latitude.Value, Lng: r.Location.Longitude.Value}, true
}

// ToAddress converts the block, keeping empty parts empty.
func (a *RecordAddress) ToAddress() Address {
	if a == nil {
		return Address{}
	}
	return Address{
		Line:    strings.TrimSpace(string(a.AddressLine)),
		City:    strings.TrimSpace(string(a.City)),
		State:   strings.TrimSpace(string(a.State)),
		Pincode: strings.TrimSpace(string(a.Pincode)),
	}
}

// Text is a string that also accepts JSON numbers and booleans.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text(s)
		return nil
	}
	// Objects and arrays are not text; leave the zero value.
	if len(b) > 0 && (b[0] == '{' || b[0] == '[') {
		return nil
	}
	*t = Text(b)
	return nil
}

// Number is a float that also accepts numeric strings. Set reports presence.
type Number struct {
	Value float64
	Set   bool
}

// NumberOf returns a present Number.
func NumberOf(v float64) Number { return Number{Value: v, Set: true} }

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = NumberOf(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = NumberOf(f)
		}
	}
	return nil
}

// Flag is a boolean that also accepts "true"/"false" strings and 0/1.
type Flag struct {
	Value bool
	Set   bool
}

// FlagOf returns a present Flag.
func FlagOf(v bool) Flag { return Flag{Value: v, Set: true} }

func (f Flag) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		*f = FlagOf(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			*f = FlagOf(v)
		}
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = FlagOf(n != 0)
	}
	return nil
}
