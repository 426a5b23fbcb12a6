// Package analysis parses master psychological-analysis files into
// structured records.
//
// A master file is a sequence of ANALYSIS ENTRY blocks separated by
// 80-column '=' lines. Each block carries a QA id, the original question and
// answer, and the four SOAP sections. Parsing is a per-entry line-scanning
// state machine; a malformed entry is skipped with a diagnostic and never
// aborts the batch.
//
// Framework annotations (emotions, cognitive distortions, attachment styles,
// schemas, defense mechanisms, Erikson stages, Big Five) are extracted from
// the objective and assessment sections, either from the producer's labelled
// text or from a structured JSON payload.
package analysis
