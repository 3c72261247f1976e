package httpapi

import (
	"bytes"
	"html/template"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

var mapTemplate = template.Must(template.New("mapa").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Mapa Temperatura MODIS</title>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
  <style>
    html, body, #map { height: 100%; margin: 0; padding: 0; }
  </style>
</head>
<body>
  <div id="map"></div>
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <script>
    var map = L.map('map').setView([{{.Lat}}, {{.Lon}}], {{.Zoom}});
    L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
      maxZoom: 18,
      attribution: '&copy; OpenStreetMap contributors'
    }).addTo(map);

    var radio = {{.Radius}};
    var marker;

    map.on('click', function (e) {
      var lat = e.latlng.lat.toFixed(5);
      var lon = e.latlng.lng.toFixed(5);
      if (marker) {
        map.removeLayer(marker);
      }
      marker = L.marker([lat, lon]).addTo(map);

      fetch('/temperatura?lat=' + lat + '&lon=' + lon + '&radio=' + radio)
        .then(function (response) { return response.json(); })
        .then(function (data) {
          var content;
          if (data.mensaje) {
            content = '<b>Mensaje:</b> ' + data.mensaje;
          } else {
            content = '<b>Temperatura mínima:</b> ' + data.temperatura_minima + ' °C<br>' +
              '<b>Temperatura máxima:</b> ' + data.temperatura_maxima + ' °C<br>' +
              '<b>Temperatura promedio:</b> ' + data.temperatura_promedio + ' °C<br>' +
              '<b>Confianza:</b> ' + data.confianza + '<br>' +
              '<b>Puntos usados:</b> ' + data.num_puntos_usados;
          }
          marker.bindPopup(content).openPopup();
        })
        .catch(function () {
          marker.bindPopup('<b>Error:</b> No se pudo obtener datos.').openPopup();
        });
    });
  </script>
</body>
</html>
`))

type mapView struct {
	Lat    float64
	Lon    float64
	Zoom   int
	Radius int
}

// mapHandler serves a Leaflet page that queries /temperatura on click.
func mapHandler(center temperature.GeoPoint, zoom, radius int) fiber.Handler {
	view := mapView{Lat: center.Lat, Lon: center.Lon, Zoom: zoom, Radius: radius}
	return func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := mapTemplate.Execute(&buf, view); err != nil {
			log.Printf("ERROR: render map page: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render map")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(buf.Bytes())
	}
}
