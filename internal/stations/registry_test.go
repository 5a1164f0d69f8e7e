package stations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mobil-koeln/moko-board/internal/testutil"
)

func TestDefault_LookupName(t *testing.T) {
	r := Default()

	tests := []struct {
		stopID string
		want   string
	}{
		{"900007105", "Wolliner Str. (Berlin)"},
		{"900007110", "U-Bernauer Str."},
		{"900110006", "U-Eberswalder Str."},
		{"900000100003", UnknownStopName},
		{"", UnknownStopName},
	}

	for _, tt := range tests {
		t.Run(tt.stopID, func(t *testing.T) {
			testutil.AssertEqual(t, r.LookupName(tt.stopID), tt.want)
		})
	}
}

func TestDefault_IsTypeAllowed(t *testing.T) {
	r := Default()

	tests := []struct {
		name          string
		stopID        string
		transportType string
		want          bool
	}{
		{"mixed stop allows bus", "900007105", "bus", true},
		{"mixed stop allows tram", "900007105", "tram", true},
		{"mixed stop allows subway", "900007105", "subway", true},
		{"bernauer allows subway", "900007110", "subway", true},
		{"bernauer rejects tram", "900007110", "tram", false},
		{"bernauer rejects bus", "900007110", "bus", false},
		{"eberswalder allows subway", "900110006", "subway", true},
		{"eberswalder rejects tram", "900110006", "tram", false},
		{"unknown stop allows anything", "900000100003", "ferry", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, r.IsTypeAllowed(tt.stopID, tt.transportType), tt.want)
		})
	}
}

func TestDefault_StopOrder(t *testing.T) {
	r := Default()
	ids := r.StopIDs()

	testutil.AssertLen(t, ids, 3)
	testutil.AssertEqual(t, ids[0], "900007105")
	testutil.AssertEqual(t, ids[1], "900007110")
	testutil.AssertEqual(t, ids[2], "900110006")

	// Mutating the copy must not affect the registry
	ids[0] = "changed"
	testutil.AssertEqual(t, r.StopIDs()[0], "900007105")
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]StationRule{{StopID: " "}})
	testutil.AssertError(t, err)

	_, err = New([]StationRule{{StopID: "1"}, {StopID: "1"}})
	testutil.AssertError(t, err)

	r, err := New([]StationRule{{StopID: "42"}})
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, r.LookupName("42"), UnknownStopName)
	testutil.AssertFalse(t, r.IsRestricted("42"))
}

func TestNew_NormalizesAllowedTypes(t *testing.T) {
	r, err := New([]StationRule{{StopID: "1", DisplayName: "Test", AllowedTypes: []string{" Subway ", "TRAM"}}})
	testutil.AssertNil(t, err)

	testutil.AssertTrue(t, r.IsRestricted("1"))
	testutil.AssertTrue(t, r.IsTypeAllowed("1", "subway"))
	testutil.AssertTrue(t, r.IsTypeAllowed("1", "tram"))
	testutil.AssertFalse(t, r.IsTypeAllowed("1", "bus"))
}

func TestParse(t *testing.T) {
	data := []byte(`
stations:
  - id: "900100001"
    name: "S+U Friedrichstr."
  - id: "900120005"
    name: "S Ostbahnhof"
    types: [suburban, bus]
`)

	r, err := Parse(data)
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, r.Len(), 2)
	testutil.AssertEqual(t, r.LookupName("900100001"), "S+U Friedrichstr.")
	testutil.AssertTrue(t, r.IsTypeAllowed("900120005", "suburban"))
	testutil.AssertFalse(t, r.IsTypeAllowed("900120005", "tram"))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`stations: []`))
	testutil.AssertError(t, err)

	_, err = Parse([]byte(`stations: [`))
	testutil.AssertError(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stations.yaml")
	content := "stations:\n  - id: \"900007110\"\n    name: \"U-Bernauer Str.\"\n    types: [subway]\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	r, err := Load(path)
	testutil.AssertNil(t, err)
	testutil.AssertFalse(t, r.IsTypeAllowed("900007110", "tram"))

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	testutil.AssertError(t, err)
}
