package httpapi

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

const (
	wpsProcessID      = "temperatura_modis"
	wpsProcessVersion = "1.0"
	wpsVersion        = "1.0.0"

	nsWPS   = "http://www.opengis.net/wps/1.0.0"
	nsOWS   = "http://www.opengis.net/ows/1.1"
	nsXLink = "http://www.w3.org/1999/xlink"
)

// wpsRequest is an Execute request after KVP or XML decoding.
type wpsRequest struct {
	Service    string
	Request    string
	Identifier string
	Inputs     map[string]string
}

// wpsException is rendered as an ows:ExceptionReport.
type wpsException struct {
	Code    string
	Locator string
	Text    string
}

func (e *wpsException) Error() string { return e.Code + ": " + e.Text }

// wpsHandler serves the temperatura_modis process over WPS 1.0.0 Execute.
// Fetch failures are reported inside a normal ExecuteResponse.
func wpsHandler(service *temperature.Service, defaultRadius int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, exc := parseWPSRequest(c)
		if exc == nil {
			exc = req.check()
		}
		if exc != nil {
			return writeWPSException(c, exc)
		}

		q, exc := req.pointQuery(defaultRadius)
		if exc != nil {
			return writeWPSException(c, exc)
		}

		var (
			outcome temperature.Outcome
			message string
		)
		e, err := service.EstimateAt(c.UserContext(), q.point(), q.Radius)
		if err != nil {
			message = fmt.Sprintf("Error al procesar: %v", err)
			outcome = temperature.Outcome{Kind: temperature.OutcomeNoData}
		} else {
			outcome = e.Outcome
			message = outcome.Message()
		}

		return writeXML(c, newExecuteResponse(outcome, message, time.Now().UTC()))
	}
}

func parseWPSRequest(c *fiber.Ctx) (wpsRequest, *wpsException) {
	if c.Method() == fiber.MethodPost && len(bytes.TrimSpace(c.Body())) > 0 {
		return parseWPSXML(c.Body())
	}

	kvp := map[string]string{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		kvp[strings.ToLower(string(k))] = string(v)
	})

	req := wpsRequest{
		Service:    kvp["service"],
		Request:    kvp["request"],
		Identifier: kvp["identifier"],
		Inputs:     parseDataInputs(kvp["datainputs"]),
	}
	return req, nil
}

// parseDataInputs splits "lat=-29.5;lon=-62.1;radio=50000". Attributes after
// '@' are dropped.
func parseDataInputs(raw string) map[string]string {
	inputs := map[string]string{}
	for _, part := range strings.Split(raw, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		value, _, _ = strings.Cut(value, "@")
		inputs[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return inputs
}

type xmlExecute struct {
	XMLName    xml.Name `xml:"Execute"`
	Service    string   `xml:"service,attr"`
	Identifier string   `xml:"Identifier"`
	Inputs     []struct {
		Identifier  string `xml:"Identifier"`
		LiteralData string `xml:"Data>LiteralData"`
	} `xml:"DataInputs>Input"`
}

func parseWPSXML(body []byte) (wpsRequest, *wpsException) {
	var doc xmlExecute
	if err := xml.Unmarshal(body, &doc); err != nil {
		return wpsRequest{}, &wpsException{Code: "NoApplicableCode", Text: "malformed Execute document: " + err.Error()}
	}
	req := wpsRequest{
		Service:    doc.Service,
		Request:    "Execute",
		Identifier: strings.TrimSpace(doc.Identifier),
		Inputs:     map[string]string{},
	}
	for _, in := range doc.Inputs {
		req.Inputs[strings.ToLower(strings.TrimSpace(in.Identifier))] = strings.TrimSpace(in.LiteralData)
	}
	return req, nil
}

func (r wpsRequest) check() *wpsException {
	if r.Service == "" {
		return &wpsException{Code: "MissingParameterValue", Locator: "service", Text: "service parameter is required"}
	}
	if !strings.EqualFold(r.Service, "WPS") {
		return &wpsException{Code: "InvalidParameterValue", Locator: "service", Text: "service must be WPS"}
	}
	if r.Request == "" {
		return &wpsException{Code: "MissingParameterValue", Locator: "request", Text: "request parameter is required"}
	}
	if !strings.EqualFold(r.Request, "Execute") {
		return &wpsException{Code: "OperationNotSupported", Locator: r.Request, Text: "only Execute is supported"}
	}
	if r.Identifier == "" {
		return &wpsException{Code: "MissingParameterValue", Locator: "identifier", Text: "identifier parameter is required"}
	}
	if r.Identifier != wpsProcessID {
		return &wpsException{Code: "InvalidParameterValue", Locator: "identifier", Text: "unknown process " + r.Identifier}
	}
	return nil
}

func (r wpsRequest) pointQuery(defaultRadius int) (pointQuery, *wpsException) {
	q := pointQuery{Radius: defaultRadius}

	for _, name := range []string{"lat", "lon"} {
		raw, ok := r.Inputs[name]
		if !ok || raw == "" {
			return q, &wpsException{Code: "MissingParameterValue", Locator: name, Text: name + " input is required"}
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, &wpsException{Code: "InvalidParameterValue", Locator: name, Text: name + " must be a float"}
		}
		if name == "lat" {
			q.Lat = &v
		} else {
			q.Lon = &v
		}
	}
	if raw := r.Inputs["radio"]; raw != "" {
		radius, err := strconv.Atoi(raw)
		if err != nil {
			return q, &wpsException{Code: "InvalidParameterValue", Locator: "radio", Text: "radio must be an integer"}
		}
		q.Radius = radius
	}

	if err := validate.Struct(q); err != nil {
		return q, &wpsException{Code: "InvalidParameterValue", Text: err.Error()}
	}
	return q, nil
}

type owsExceptionReport struct {
	XMLName   xml.Name `xml:"ows:ExceptionReport"`
	XMLNSOWS  string   `xml:"xmlns:ows,attr"`
	Version   string   `xml:"version,attr"`
	Exception struct {
		Code    string `xml:"exceptionCode,attr"`
		Locator string `xml:"locator,attr,omitempty"`
		Text    string `xml:"ows:ExceptionText"`
	} `xml:"ows:Exception"`
}

func writeWPSException(c *fiber.Ctx, exc *wpsException) error {
	report := owsExceptionReport{XMLNSOWS: nsOWS, Version: wpsVersion}
	report.Exception.Code = exc.Code
	report.Exception.Locator = exc.Locator
	report.Exception.Text = exc.Text

	status := fiber.StatusBadRequest
	if exc.Code == "NoApplicableCode" {
		status = fiber.StatusInternalServerError
	}
	return writeXML(c.Status(status), report)
}

type wpsLiteralData struct {
	DataType string `xml:"dataType,attr"`
	Value    string `xml:",chardata"`
}

type wpsOutput struct {
	Identifier string         `xml:"ows:Identifier"`
	Title      string         `xml:"ows:Title"`
	Literal    wpsLiteralData `xml:"wps:Data>wps:LiteralData"`
}

type wpsExecuteResponse struct {
	XMLName    xml.Name `xml:"wps:ExecuteResponse"`
	XMLNSWPS   string   `xml:"xmlns:wps,attr"`
	XMLNSOWS   string   `xml:"xmlns:ows,attr"`
	XMLNSXLink string   `xml:"xmlns:xlink,attr"`
	Service    string   `xml:"service,attr"`
	Version    string   `xml:"version,attr"`
	Lang       string   `xml:"xml:lang,attr"`
	Process    struct {
		Version    string `xml:"wps:processVersion,attr"`
		Identifier string `xml:"ows:Identifier"`
		Title      string `xml:"ows:Title"`
	} `xml:"wps:Process"`
	Status struct {
		CreationTime string `xml:"creationTime,attr"`
		Succeeded    string `xml:"wps:ProcessSucceeded"`
	} `xml:"wps:Status"`
	Outputs []wpsOutput `xml:"wps:ProcessOutputs>wps:Output"`
}

func newExecuteResponse(o temperature.Outcome, message string, now time.Time) wpsExecuteResponse {
	resp := wpsExecuteResponse{
		XMLNSWPS:   nsWPS,
		XMLNSOWS:   nsOWS,
		XMLNSXLink: nsXLink,
		Service:    "WPS",
		Version:    wpsVersion,
		Lang:       "en-US",
	}
	resp.Process.Version = wpsProcessVersion
	resp.Process.Identifier = wpsProcessID
	resp.Process.Title = "Estimación de temperatura MODIS"
	resp.Status.CreationTime = now.Format(time.RFC3339)
	resp.Status.Succeeded = "Process " + wpsProcessID + " finished"

	temp := func(v float64) string {
		if !o.OK() {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	resp.Outputs = []wpsOutput{
		{Identifier: "temperatura_minima", Title: "Temperatura mínima (°C)", Literal: wpsLiteralData{DataType: "float", Value: temp(o.MinC)}},
		{Identifier: "temperatura_maxima", Title: "Temperatura máxima (°C)", Literal: wpsLiteralData{DataType: "float", Value: temp(o.MaxC)}},
		{Identifier: "temperatura_promedio", Title: "Temperatura promedio (°C)", Literal: wpsLiteralData{DataType: "float", Value: temp(o.AvgC)}},
		{Identifier: "confianza", Title: "Confianza de la interpolación", Literal: wpsLiteralData{DataType: "float", Value: strconv.FormatFloat(o.Confidence, 'f', -1, 64)}},
		{Identifier: "num_puntos_usados", Title: "Número de puntos usados", Literal: wpsLiteralData{DataType: "integer", Value: strconv.Itoa(o.SampleCount)}},
		{Identifier: "mensaje", Title: "Mensaje de estado o error", Literal: wpsLiteralData{DataType: "string", Value: message}},
	}
	return resp
}

func writeXML(c *fiber.Ctx, v any) error {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to encode WPS response")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(append([]byte(xml.Header), out...))
}
