package clients

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"zonecheck/zone"
)

// The zone around (lon 34..35, lat 12..13); "12.5,34.2" falls inside it.
func testZone() *zone.Set {
	return zone.NewSet([]zone.Polygon{
		zone.NewPolygon(orb.Ring{{34, 12}, {35, 12}, {35, 13}, {34, 13}}),
	})
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clientes.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal("Unexpected error:", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeInput(t, "\ufeffCodigo;Nombre;Punto gps\n1;Ana;12.5,34.2\n2;Bruno;abc\n3;Carla;\n")

	table, err := Load(path, "Punto gps")
	if err != nil {
		t.Fatal("Unexpected error:", err)
	}

	if len(table.Header) != 3 || table.Header[0] != "Codigo" {
		t.Error("Byte-order mark not stripped from header:", table.Header)
	}
	if len(table.Records) != 3 {
		t.Fatalf("Unexpected number of records: want 3, have %d", len(table.Records))
	}

	if table.Records[0].Point == nil {
		t.Fatal("First record should have geometry")
	}
	if *table.Records[0].Point != (orb.Point{34.2, 12.5}) {
		t.Error("Unexpected point:", *table.Records[0].Point)
	}
	if table.Records[1].Point != nil {
		t.Error("Malformed coordinate should yield nil geometry")
	}
	if table.Records[2].Point != nil {
		t.Error("Empty coordinate should yield nil geometry")
	}
}

func TestLoadWithoutBOM(t *testing.T) {
	path := writeInput(t, "Codigo;Punto gps\n1;12.5,34.2\n")

	table, err := Load(path, "Punto gps")
	if err != nil {
		t.Fatal("Unexpected error:", err)
	}
	if len(table.Records) != 1 || table.Records[0].Point == nil {
		t.Error("Input without byte-order mark should load the same way")
	}
}

func TestLoadMissingColumn(t *testing.T) {
	path := writeInput(t, "Codigo;Direccion\n1;Calle Falsa 123\n")

	if _, err := Load(path, "Punto gps"); err == nil {
		t.Error("Expected error for missing coordinate column, got none")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does/not/exist.csv", "Punto gps"); err == nil {
		t.Error("Expected error for missing file, got none")
	}
}

func TestAnnotate(t *testing.T) {
	path := writeInput(t, "\ufeffCodigo;Punto gps\n1;12.5,34.2\n2;-12.5,34.2\n3;abc\n")

	table, err := Load(path, "Punto gps")
	if err != nil {
		t.Fatal("Unexpected error:", err)
	}

	summary := table.Annotate(testZone())
	if summary.Total != 3 || summary.WithGeometry != 2 {
		t.Error("Unexpected summary:", summary)
	}
	if summary.Inside != 1 || summary.Outside != 2 {
		t.Error("Unexpected membership counts:", summary)
	}

	if table.Header[len(table.Header)-1] != ResultColumn {
		t.Error("Result column not appended to header:", table.Header)
	}
	want := []string{"true", "false", "false"}
	for i, rec := range table.Records {
		if rec.Fields[len(rec.Fields)-1] != want[i] {
			t.Errorf("Record %d: want %s, have %s", i, want[i], rec.Fields[len(rec.Fields)-1])
		}
	}
}

func TestRoundTrip(t *testing.T) {
	path := writeInput(t, "\ufeffCodigo;Nombre;Punto gps\n1;Ana;12.5,34.2\n2;Bruno;abc\n3;Carla;90,180\n")

	table, err := Load(path, "Punto gps")
	if err != nil {
		t.Fatal("Unexpected error:", err)
	}
	table.Annotate(testZone())

	out := filepath.Join(t.TempDir(), "out.csv")
	if err := Write(out, table); err != nil {
		t.Fatal("Unexpected error:", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal("Unexpected error:", err)
	}
	if !strings.HasPrefix(string(raw), "\ufeff") {
		t.Error("Output should start with a byte-order mark")
	}

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(raw), "\ufeff")))
	r.Comma = ';'
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal("Unexpected error:", err)
	}

	if len(rows) != 4 {
		t.Fatalf("Unexpected number of output rows: want 4, have %d", len(rows))
	}
	if len(rows[0]) != 4 {
		t.Errorf("Exactly one column should be appended: %v", rows[0])
	}
	for i, id := range []string{"1", "2", "3"} {
		if rows[i+1][0] != id {
			t.Errorf("Row order not preserved: row %d starts with %s", i+1, rows[i+1][0])
		}
	}
	if rows[1][3] != "true" || rows[2][3] != "false" {
		t.Error("Unexpected membership flags in output:", rows[1], rows[2])
	}
}

func TestRoundTripQuotedFields(t *testing.T) {
	// The delimiter inside a quoted field must survive the round trip intact.
	path := writeInput(t, "\ufeffCodigo;Direccion;Punto gps\n1;\"Calle; Falsa, 123\";12.5,34.2\n2;\"Av. \"\"Siempreviva\"\"\";abc\n")

	table, err := Load(path, "Punto gps")
	if err != nil {
		t.Fatal("Unexpected error:", err)
	}
	if len(table.Records) != 2 {
		t.Fatalf("Unexpected number of records: want 2, have %d", len(table.Records))
	}
	if table.Records[0].Fields[1] != "Calle; Falsa, 123" {
		t.Error("Quoted field mangled on load:", table.Records[0].Fields[1])
	}

	table.Annotate(testZone())

	out := filepath.Join(t.TempDir(), "out.csv")
	if err := Write(out, table); err != nil {
		t.Fatal("Unexpected error:", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal("Unexpected error:", err)
	}
	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(raw), "\ufeff")))
	r.Comma = ';'
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal("Unexpected error:", err)
	}

	if len(rows) != 3 {
		t.Fatalf("Unexpected number of output rows: want 3, have %d", len(rows))
	}
	if rows[1][1] != "Calle; Falsa, 123" {
		t.Error("Quoted field mangled on round trip:", rows[1][1])
	}
	if rows[2][1] != `Av. "Siempreviva"` {
		t.Error("Escaped quotes mangled on round trip:", rows[2][1])
	}
	if rows[1][3] != "true" || rows[2][3] != "false" {
		t.Error("Unexpected membership flags in output:", rows[1], rows[2])
	}
}
