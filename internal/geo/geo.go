package geo

import "strings"

// Tuple is a best-effort customer location. Every field is optional;
// consumers must check HasCoordinates before using Latitude/Longitude.
type Tuple struct {
	AreaCode string `json:"area_code,omitempty"`
	State    string `json:"state,omitempty"`

	Latitude       float64 `json:"latitude,omitempty"`
	Longitude      float64 `json:"longitude,omitempty"`
	HasCoordinates bool    `json:"has_coordinates,omitempty"`
}

// ZipGeocoder resolves a zip code to coordinates. The default implementation
// resolves nothing; accurate zip geocoding is an extension point, wired in
// the same way a real geocoding client would be.
type ZipGeocoder interface {
	Lookup(zip string) (lat, lon float64, ok bool)
}

// NoopZipGeocoder is the default ZipGeocoder: it never resolves.
type NoopZipGeocoder struct{}

func (NoopZipGeocoder) Lookup(string) (float64, float64, bool) { return 0, 0, false }

// Resolver maps a phone number and optional explicit state/zip to a Tuple
// through a chain of progressively cheaper fallbacks. Pure and deterministic.
type Resolver struct {
	zip ZipGeocoder
}

func NewResolver(zip ZipGeocoder) *Resolver {
	if zip == nil {
		zip = NoopZipGeocoder{}
	}
	return &Resolver{zip: zip}
}

// Resolve never fails; absent inputs simply leave fields unset.
//
// Chain:
//  1. area code from the phone number prefix
//  2. explicit state, else area-code table
//  3. explicit zip via the pluggable geocoder
//  4. state-center coordinates
func (r *Resolver) Resolve(phone, explicitState, explicitZip string) Tuple {
	out := Tuple{}

	out.AreaCode = extractAreaCode(phone)

	if s := normalizeState(explicitState); s != "" {
		out.State = s
	} else if out.AreaCode != "" {
		out.State = areaCodeState[out.AreaCode]
	}

	if explicitZip != "" {
		if lat, lon, ok := r.zip.Lookup(strings.TrimSpace(explicitZip)); ok {
			out.Latitude, out.Longitude = lat, lon
			out.HasCoordinates = true
		}
	}

	if !out.HasCoordinates && out.State != "" {
		if c, ok := stateCenter[out.State]; ok {
			out.Latitude, out.Longitude = c.lat, c.lon
			out.HasCoordinates = true
		}
	}

	return out
}

// extractAreaCode pulls the NANP area code out of a dialable number.
// Accepts formatted input; a leading country code 1 is stripped.
func extractAreaCode(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	if len(d) < 10 {
		return ""
	}
	return d[:3]
}

func normalizeState(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return ""
	}
	for i := 0; i < 2; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return ""
		}
	}
	return s
}
