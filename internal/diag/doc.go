// Package diag defines the diagnostic model used by the moveck CLI.
//
// # Purpose
//
//   - Turn findings of the move-path builder (illegal moves recorded at move
//     sites) and failures of the surrounding pipeline (body files that do not
//     parse or validate, internal analyzer errors) into uniform records.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//   - Render diagnostics for humans (Pretty, colored with fatih/color), for
//     golden tests (FormatShort) and for tools (BuildJSON).
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity: Info, Warning or Error (severity.go).
//   - Code: compact numeric identifier (codes.go) with a stable string form
//     such as MOV1001.
//   - Message: short human oriented text.
//   - Primary: the Position of the issue. A position names the body file and,
//     when known, a line of that file or a body and program point inside it.
//   - Notes: optional secondary positions and messages.
//
// Notes should add new context ("moved from here", "type is &T") rather than
// repeat the message.
//
// # Emitting diagnostics
//
// Producers use a Reporter. ReportBuilder (NewReportBuilder, ReportError,
// ReportWarning) chains WithNote before Emit. BagReporter collects into a
// Bag; a bag with a limit counts what it refuses. DedupReporter filters
// repeats before they reach the next reporter.
package diag
