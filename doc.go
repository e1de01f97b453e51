// Package coursegrid reconstructs a structured catalog of course sections
// from a positionally-encoded text extraction of a tabular class-schedule
// PDF.
//
// The document has no grid markup; structure is implied entirely by
// horizontal alignment and vertical adjacency. The pipeline is:
//
//	words -> BuildLines -> CalibrateColumns -> Parser.Parse -> []Section
//
// BuildLines groups positioned words into ordered text lines,
// CalibrateColumns derives the six semantic column boundaries from the
// first header block, and Parser walks the lines as a state machine,
// recovering the document's recurring layout irregularities (merged
// keywords, wrapped titles, omitted professor lines) heuristically instead
// of rejecting them. BuildViewGrid projects the recovered day/time slots
// onto calendar-grid coordinates for display.
//
// Word extraction from the PDF itself lives in the extract subpackage;
// persistence, rating lookups and the query API are satellites under
// store, ratings and api.
package coursegrid
