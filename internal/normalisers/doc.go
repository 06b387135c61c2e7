// Package normalisers provides implementations of the Normaliser interface
// for the supported document formats, and the Registry that dispatches a
// raw document to the right one by file extension or MIME type.
//
// Normalisers are registered with the Registry at startup.
package normalisers
