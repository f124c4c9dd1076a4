// Package domain models aviation weather reports (METAR observations and TAF
// forecasts) and the wind input derived from them.
//
// # Report Content
//
// Reports arrive as JSON documents produced by an upstream METAR/TAF decoder
// and are stored verbatim in [MetarReport.Content] / [TafReport.Content]. The
// shape is decoder-defined; only a handful of fields are read here:
//
//	METAR:
//	  time.dt                  observation time, ISO-8601 ("2022-05-30T12:00:00Z")
//	  meta.timestamp           ingestion time with milliseconds ("2022-05-30T12:03:14.512Z")
//	  wind_direction.value     degrees true, number or null
//	  wind_speed.value         number or null
//
//	TAF:
//	  start_time.dt / end_time.dt   overall validity window
//	  meta.timestamp                ingestion time
//	  forecast[]                    ordered forecast segments, each with its own
//	                                start_time.dt, end_time.dt, wind_direction.value,
//	                                wind_speed.value
//
// Wind values are wrapped as {"value": ...}. A missing wrapper, a null value, or
// anything that does not convert to a finite number reads as "no data" rather
// than an error. See [ExtractWindValue].
//
// # Validity Rules
//
// A METAR is usable for a reference instant when it was ingested no later than
// that instant and was observed within [DefaultMetarMaxAge] before it. A TAF is
// usable when it was ingested no later than the instant and its overall window
// contains it. All window bounds are inclusive. Among usable reports the one
// ingested last wins.
//
// Inside a TAF, the first forecast segment (in stored order) whose window covers
// the instant supplies the value. When no segment covers it, the last non-empty
// value seen while scanning is used instead. See [WindFromTafSegments].
package domain
