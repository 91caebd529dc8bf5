// Package domain models the AEMET per-locality forecast document and the
// report that is relayed by email.
//
// # Data Source
//
// AEMET (Agencia Estatal de Meteorología) publishes a daily XML forecast per
// municipality, e.g. https://www.aemet.es/xml/municipios/localidad_28079.xml.
// The document is served as ISO-8859-15; the aemet adapter decodes it before
// it reaches [ParseForecast], so this package only ever sees UTF-8 text.
//
// # Document Conventions
//
// Layout (localidades.xsd):
//
//	<root id="28079" version="1.0">
//	  <origen> productor, web, enlace, language, copyright, nota_legal </origen>
//	  <elaborado>2024-04-26T08:00:00</elaborado>
//	  <nombre>Madrid</nombre>
//	  <provincia>Madrid</provincia>
//	  <prediccion>
//	    <dia fecha="2024-04-26"> ... </dia>
//	  </prediccion>
//	</root>
//
// Periodized measurements repeat once per time band and carry the band in a
// "periodo" attribute ("00-24", "00-12", "12-24", "00-06", ...):
//
//	<prob_precipitacion periodo="00-12">15</prob_precipitacion>
//	<estado_cielo periodo="12-24" descripcion="Nuboso">14</estado_cielo>
//	<viento periodo="00-24"><direccion>NE</direccion><velocidad>10</velocidad></viento>
//
// Empty elements are common: bands that do not apply on a given day are
// emitted with no text (e.g. <cota_nieve_prov periodo="00-06"></cota_nieve_prov>).
// An element with no periodo applies to the whole day.
//
// Point series (temperatura, sens_termica, humedad_relativa) carry a daily
// range plus hourly readings:
//
//	<temperatura><maxima>12</maxima><minima>5</minima><dato hora="6">6</dato></temperatura>
//
// Ranges and hours are small signed integers (-128..127). Values outside
// that range are rejected rather than clamped.
//
// # Report
//
// [RenderReport] turns a [Forecast] into the plain-text body of the email.
// Section order and placeholder strings ("all day", "0", "-") are fixed; a
// section appears only when at least one of its entries has something to show.
package domain
