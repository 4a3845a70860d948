// Package naming derives every path the pipeline writes: one JPEG
// intermediate per RAW frame under processed/, and the flat and graded video
// artifacts next to the input folder's frames.
//
// Intermediate names come from the source base name so a rerun finds the
// same files. Two sources whose stems collide (A001.dng and A001.DNG) are
// told apart with " - dupN" suffixes assigned in discovery order.
package naming
