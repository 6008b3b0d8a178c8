package dataset

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type kmlRoot struct {
	XMLName    xml.Name       `xml:"kml"`
	Document   *kmlContainer  `xml:"Document"`
	Folder     *kmlContainer  `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlContainer struct {
	Documents  []kmlContainer `xml:"Document"`
	Folders    []kmlContainer `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name          string            `xml:"name"`
	Description   string            `xml:"description"`
	ExtendedData  *kmlExtendedData  `xml:"ExtendedData"`
	Polygon       *kmlPolygon       `xml:"Polygon"`
	MultiGeometry *kmlMultiGeometry `xml:"MultiGeometry"`
}

type kmlExtendedData struct {
	Data       []kmlData       `xml:"Data"`
	SchemaData []kmlSchemaData `xml:"SchemaData"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type kmlSchemaData struct {
	SimpleData []kmlSimpleData `xml:"SimpleData"`
}

type kmlSimpleData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type kmlPolygon struct {
	Outer kmlBoundary   `xml:"outerBoundaryIs"`
	Inner []kmlBoundary `xml:"innerBoundaryIs"`
}

type kmlBoundary struct {
	LinearRing struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"LinearRing"`
}

type kmlMultiGeometry struct {
	Polygons      []kmlPolygon       `xml:"Polygon"`
	MultiGeometry []kmlMultiGeometry `xml:"MultiGeometry"`
}

// ReadKML reads polygon placemarks from a KML file.
func ReadKML(path string) ([]*geojson.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read kml: %w", err)
	}
	return decodeKML(data)
}

// ReadKMZ reads the KML document inside a KMZ archive, preferring doc.kml.
func ReadKMZ(path string) ([]*geojson.Feature, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open kmz: %w", err)
	}
	defer r.Close()

	var kmlFile *zip.File
	for _, f := range r.File {
		name := strings.ToLower(f.Name)
		if name == "doc.kml" {
			kmlFile = f
			break
		}
		if strings.HasSuffix(name, ".kml") && kmlFile == nil {
			kmlFile = f
		}
	}
	if kmlFile == nil {
		return nil, fmt.Errorf("no kml file found in kmz archive")
	}

	rc, err := kmlFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s in kmz: %w", kmlFile.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s in kmz: %w", kmlFile.Name, err)
	}
	return decodeKML(data)
}

func decodeKML(data []byte) ([]*geojson.Feature, error) {
	var root kmlRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse kml: %w", err)
	}

	placemarks := append([]kmlPlacemark(nil), root.Placemarks...)
	if root.Document != nil {
		placemarks = append(placemarks, collectPlacemarks(*root.Document)...)
	}
	if root.Folder != nil {
		placemarks = append(placemarks, collectPlacemarks(*root.Folder)...)
	}

	features := make([]*geojson.Feature, 0, len(placemarks))
	for _, pm := range placemarks {
		f := geojson.NewFeature(placemarkGeometry(pm))
		for k, v := range placemarkProperties(pm) {
			f.Properties[k] = v
		}
		features = append(features, f)
	}
	return features, nil
}

func collectPlacemarks(c kmlContainer) []kmlPlacemark {
	out := append([]kmlPlacemark(nil), c.Placemarks...)
	for _, d := range c.Documents {
		out = append(out, collectPlacemarks(d)...)
	}
	for _, f := range c.Folders {
		out = append(out, collectPlacemarks(f)...)
	}
	return out
}

func placemarkProperties(pm kmlPlacemark) map[string]any {
	props := make(map[string]any)
	if pm.Name != "" {
		props["name"] = strings.TrimSpace(pm.Name)
	}
	if pm.Description != "" {
		props["description"] = strings.TrimSpace(pm.Description)
	}
	if pm.ExtendedData == nil {
		return props
	}
	for _, d := range pm.ExtendedData.Data {
		if d.Name != "" {
			props[d.Name] = strings.TrimSpace(d.Value)
		}
	}
	for _, sd := range pm.ExtendedData.SchemaData {
		for _, s := range sd.SimpleData {
			if s.Name != "" {
				props[s.Name] = strings.TrimSpace(s.Value)
			}
		}
	}
	return props
}

// placemarkGeometry returns a Polygon for a single polygon, a MultiPolygon when several are
// present, and nil when the placemark has no polygon at all.
func placemarkGeometry(pm kmlPlacemark) orb.Geometry {
	var polys []kmlPolygon
	if pm.Polygon != nil {
		polys = append(polys, *pm.Polygon)
	}
	if pm.MultiGeometry != nil {
		polys = append(polys, flattenMultiGeometry(*pm.MultiGeometry)...)
	}

	var mp orb.MultiPolygon
	for _, kp := range polys {
		outer := parseKMLRing(kp.Outer.LinearRing.Coordinates)
		if len(outer) == 0 {
			continue
		}
		poly := orb.Polygon{outer}
		for _, in := range kp.Inner {
			if r := parseKMLRing(in.LinearRing.Coordinates); len(r) > 0 {
				poly = append(poly, r)
			}
		}
		mp = append(mp, poly)
	}

	switch len(mp) {
	case 0:
		return nil
	case 1:
		return mp[0]
	default:
		return mp
	}
}

func flattenMultiGeometry(mg kmlMultiGeometry) []kmlPolygon {
	out := append([]kmlPolygon(nil), mg.Polygons...)
	for _, nested := range mg.MultiGeometry {
		out = append(out, flattenMultiGeometry(nested)...)
	}
	return out
}

// parseKMLRing parses "lon,lat[,alt]" tuples separated by whitespace.
func parseKMLRing(s string) orb.Ring {
	var ring orb.Ring
	for _, tuple := range strings.Fields(s) {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		ring = append(ring, orb.Point{lon, lat})
	}
	return ring
}
