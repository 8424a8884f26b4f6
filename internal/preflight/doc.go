// Package preflight provides readiness checks for the directories and
// external tools a stitching run depends on.
//
// These checks run in two contexts:
//   - The run and watch commands call Run before starting a pipeline, so a
//     missing binary or unwritable work directory fails fast instead of
//     partway through an encode.
//   - The CLI "meridian deps" command renders the same checks as a table.
//
// Optional tools report as passed with a note when absent; a run without
// exiftool still completes, it just ships without spherical tags.
package preflight
