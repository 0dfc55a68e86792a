// Package ui implements the live terminal view of a sweep run.
//
// The model consumes [tasks.ProgressUpdate] events from the engine and
// renders a spinner, a progress bar, and the final tallies. Login and
// scanning happen before the program starts; the UI only covers the
// mutation phases.
package ui
