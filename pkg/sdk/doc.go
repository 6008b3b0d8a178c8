// Package parcelmap embeds the parcel map engine in a Go program: load a cadastral
// dataset (GeoJSON, KML, KMZ or Shapefile), look parcels up by VDC/Ward/Parcel number
// or by location, label their edges, measure lines and split parcels.
//
//	pm, _ := parcelmap.Open(ctx,
//	    parcelmap.WithSource("data/bhaktapur.geojson"),
//	    parcelmap.WithSource("data/thimi.kmz"),
//	)
//	defer pm.Close()
//
//	res, err := pm.Search(ctx, parcelmap.Query{VDC: "Bhaktapur", Ward: "3", Parcel: "42"})
//	if errors.Is(err, parcelmap.ErrParcelNotFound) {
//	    // nothing matched
//	}
//	labels, _ := pm.Labels(ctx, res.Parcels[0].Key, parcelmap.DefaultLabelOptions())
//
// Labels can be cached in Redis or Valkey with WithRedisCache.
package parcelmap
