package export

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ryoqn/trackdata-serverless/internal/models"
)

const (
	kmlNamespace  = "http://www.opengis.net/kml/2.2"
	trackStyleID  = "trackstyle"
	lineAltitude  = 2
	pointAltitude = 0
)

type kmlRoot struct {
	XMLName  xml.Name    `xml:"kml"`
	Xmlns    string      `xml:"xmlns,attr"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Style      kmlStyle       `xml:"Style"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlStyle struct {
	ID        string       `xml:"id,attr"`
	LineStyle kmlLineStyle `xml:"LineStyle"`
}

type kmlLineStyle struct {
	Color string `xml:"color"`
	Width int    `xml:"width"`
}

type kmlPlacemark struct {
	Name         string           `xml:"name,omitempty"`
	StyleURL     string           `xml:"styleUrl,omitempty"`
	LineString   *kmlLineString   `xml:"LineString,omitempty"`
	ExtendedData *kmlExtendedData `xml:"ExtendedData,omitempty"`
	Point        *kmlPoint        `xml:"Point,omitempty"`
}

type kmlLineString struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

type kmlExtendedData struct {
	Data []kmlData `xml:"Data"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

// ToKML renders a Document holding one styled LineString through every
// point in input order plus one Placemark per point. KML coordinate tuples
// are always longitude,latitude,altitude. Velocity stays in m/s here,
// unlike the CSV export. An empty input yields a valid document with an
// empty line and no point placemarks.
func ToKML(points []models.StoredGpsPoint) (string, error) {
	lineCoords := make([]string, 0, len(points))
	for _, p := range points {
		lineCoords = append(lineCoords, coordinate(p.Longitude, p.Latitude, lineAltitude))
	}

	placemarks := []kmlPlacemark{
		{
			Name:       "tracker_line",
			StyleURL:   "#" + trackStyleID,
			LineString: &kmlLineString{Coordinates: strings.Join(lineCoords, "\n")},
		},
	}

	for _, p := range points {
		placemarks = append(placemarks, kmlPlacemark{
			Name: samplingTimeLocal(p.SamplingTime),
			ExtendedData: &kmlExtendedData{Data: []kmlData{
				{Name: "uplink_id", Value: p.UplinkID},
				{Name: "router_id", Value: p.RouterID},
				{Name: "device_id", Value: p.DeviceID},
				{Name: "rsrp", Value: fmt.Sprintf("%d", p.Rsrp)},
				{Name: "rsrq", Value: fmt.Sprintf("%d", p.Rsrq)},
				{Name: "sampling_time", Value: samplingTimeLocal(p.SamplingTime)},
				{Name: "latitude", Value: formatNumber(p.Latitude)},
				{Name: "longitude", Value: formatNumber(p.Longitude)},
				{Name: "hdop", Value: formatNumber(p.Hdop)},
				{Name: "velocity", Value: formatFixed(p.Velocity, 2)},
				{Name: "direction", Value: formatNumber(p.Direction)},
			}},
			Point: &kmlPoint{Coordinates: coordinate(p.Longitude, p.Latitude, pointAltitude)},
		})
	}

	root := kmlRoot{
		Xmlns: kmlNamespace,
		Document: kmlDocument{
			Style: kmlStyle{
				ID:        trackStyleID,
				LineStyle: kmlLineStyle{Color: "7f00ff00", Width: 4},
			},
			Placemarks: placemarks,
		},
	}

	out, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return "", &RenderError{Format: "kml", Err: err}
	}
	return xml.Header + string(out), nil
}

func coordinate(lon, lat float64, alt int) string {
	return fmt.Sprintf("%s,%s,%d", formatNumber(lon), formatNumber(lat), alt)
}
