// Package taskline parses and rewrites markdown checkbox task lines.
//
// A task line is a list item with a checkbox, optional inline properties
// and an optional trailing id comment:
//
//	- [ ] ship the beta @due(2025-09-01) !high #release @project(launch) <!-- tid: 9f3b2c1a -->
//
// Recognized inline properties:
//   - due date: @due(VALUE), @due: VALUE or @due VALUE. ISO dates pass
//     through; today/tomorrow/yesterday and weekday names resolve against
//     the parser's clock; anything else is kept raw.
//   - priority: !p1..!p5 or !high/!medium/!low, normalized to three bands.
//   - tags: #tag. A #project/<name> tag doubles as a project marker.
//   - project: @project(VALUE), @project: VALUE or @project VALUE.
//
// Parsing never modifies lines. The rewrite helpers ([ToggleStatus],
// [AddID], [SetDue], [SetPriority]) return edited copies and keep the id
// comment at the end of the line, where editors expect it.
package taskline
