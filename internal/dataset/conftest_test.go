package dataset

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"VDC": "Bhaktapur", "WARDNO": 3, "PARCELNO": "0042"},
      "geometry": {"type": "Polygon", "coordinates": [[[85.0,27.0],[85.001,27.0],[85.001,27.001],[85.0,27.001],[85.0,27.0]]]}
    },
    {
      "type": "Feature",
      "properties": {"vdc": "Bhaktapur", "wardno": "3", "parcelno": "43"},
      "geometry": {"type": "MultiPolygon", "coordinates": [
        [[[85.002,27.0],[85.003,27.0],[85.003,27.001],[85.002,27.001],[85.002,27.0]]],
        [[[85.004,27.0],[85.005,27.0],[85.005,27.001],[85.004,27.001],[85.004,27.0]]]
      ]}
    },
    {
      "type": "Feature",
      "properties": {"VDC": "Bhaktapur", "WARDNO": 3},
      "geometry": {"type": "Polygon", "coordinates": [[[85.0,27.0],[85.001,27.0],[85.001,27.001],[85.0,27.0]]]}
    },
    {
      "type": "Feature",
      "properties": {"VDC": "Bhaktapur", "WARDNO": 3, "PARCELNO": 44},
      "geometry": {"type": "Point", "coordinates": [85.0,27.0]}
    }
  ]
}`

const sampleKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>parcels</name>
    <Folder>
      <Placemark>
        <name>42</name>
        <ExtendedData>
          <SchemaData schemaUrl="#parcels">
            <SimpleData name="VDC">Bhaktapur</SimpleData>
            <SimpleData name="WARDNO">3</SimpleData>
            <SimpleData name="PARCELNO">0042</SimpleData>
          </SchemaData>
        </ExtendedData>
        <Polygon>
          <outerBoundaryIs><LinearRing><coordinates>
            85.0,27.0,0 85.001,27.0,0 85.001,27.001,0 85.0,27.001,0 85.0,27.0,0
          </coordinates></LinearRing></outerBoundaryIs>
        </Polygon>
      </Placemark>
    </Folder>
    <Folder>
    <Placemark>
      <ExtendedData>
        <Data name="vdc"><value>Bhaktapur</value></Data>
        <Data name="wardno"><value>3</value></Data>
        <Data name="parcelno"><value>43</value></Data>
      </ExtendedData>
      <MultiGeometry>
        <Polygon><outerBoundaryIs><LinearRing><coordinates>
          85.002,27.0 85.003,27.0 85.003,27.001 85.002,27.001 85.002,27.0
        </coordinates></LinearRing></outerBoundaryIs></Polygon>
        <Polygon><outerBoundaryIs><LinearRing><coordinates>
          85.004,27.0 85.005,27.0 85.005,27.001 85.004,27.001 85.004,27.0
        </coordinates></LinearRing></outerBoundaryIs></Polygon>
      </MultiGeometry>
    </Placemark>
    </Folder>
    <Placemark>
      <name>marker</name>
      <Point><coordinates>85.0,27.0</coordinates></Point>
    </Placemark>
  </Document>
</kml>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func writeKMZ(t *testing.T, name string, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(out)
	for n, body := range files {
		w, err := zw.Create(n)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}
