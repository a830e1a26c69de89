// Package avtime resolves the partial timestamps found in aviation weather
// reports into full calendar timestamps.
//
// # Fragments
//
// Raw report codes carry only part of a timestamp. A METAR issue time
// "270100Z" gives day, hour and minute; a TAF validity "2706/2812" gives day
// and hour twice; a trend "TL1230" gives hour and minute. A [Partial] records
// which of year, month, day, hour and minute are known and, when the code
// carried a zone designator, a fixed UTC offset.
//
// The text notation follows truncated ISO 8601:
//
//	2020-02-27T01:00Z   fully specified
//	--27T01:00Z         day 27, 01:00 UTC
//	--27T06Z            day 27, hour 06 UTC
//	T12:30              12:30, no zone
//	---05               day 5 only
//
// # Resolution
//
// [Resolve] turns a fragment into a timestamp by choosing one of its calendar
// occurrences relative to an anchor, usually the report's issue time or the
// time the document was received:
//
//	anchor 2020-02-27T01:00Z
//	  --28T07Z  nearest  -> 2020-02-28T07:00Z
//	  --01T00Z  nearest  -> 2020-03-01T00:00Z   (3 days ahead beats 26 days back)
//	  --05T24Z  nearest  -> 2020-03-06T00:00Z   (24:00 rolls into the next day)
//
// Ties between the occurrence before and after the anchor go to the earlier
// one. Candidates are searched up to [SearchWindow] years either side.
//
// # Instants and periods
//
// An [Instant] is unresolved or resolved; a resolved instant always agrees
// with its fragment. A [Period] resolves its start nearest to the anchor and
// its end forward from the start, so end never precedes start.
package avtime
